package receipt

import (
	"bytes"
	"fmt"
	"strconv"

	"campus-linker/internal/admission"
	"campus-linker/internal/fee"

	"github.com/jung-kurt/gofpdf"
)

// Generate renders the fixed-layout payment confirmation for a completed fee.
func Generate(payment *fee.Fee, adm *admission.Admission) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Campus Linker", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Fee Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	paymentDate := ""
	if payment.PaymentDate != nil {
		paymentDate = payment.PaymentDate.Format("02 Jan 2006 15:04")
	}

	rows := [][2]string{
		{"Receipt No", fmt.Sprintf("FEE-%06d", payment.ID)},
		{"Admission No", strconv.Itoa(adm.ID)},
		{"Student Name", payment.StudentName},
		{"Course", payment.Course},
		{"Payment Method", payment.PaymentMethod},
		{"Payment Date", paymentDate},
		{"Payment Status", payment.Status},
	}
	for _, row := range rows {
		pdf.CellFormat(60, 9, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(120, 9, row[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(60, 10, "Amount Paid", "1", 0, "L", false, 0, "")
	pdf.CellFormat(120, 10, fmt.Sprintf("Rs. %.2f", payment.Amount), "1", 1, "L", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "This is a system generated receipt and does not require a signature.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering receipt: %w", err)
	}
	return buf.Bytes(), nil
}
