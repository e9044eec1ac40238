package upload_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"campus-linker/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *upload.LocalStorage {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	storage, err := upload.NewLocalStorage(t.TempDir(), logger)
	require.NoError(t, err)
	return storage
}

func TestSave(t *testing.T) {
	t.Run("stores allowed file under fresh name", func(t *testing.T) {
		storage := newStorage(t)

		path, err := storage.Save("marks.pdf", strings.NewReader("content"))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, "_marks.pdf"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content", string(data))
	})

	t.Run("same name twice gets distinct paths", func(t *testing.T) {
		storage := newStorage(t)

		first, err := storage.Save("photo.png", strings.NewReader("a"))
		require.NoError(t, err)
		second, err := storage.Save("photo.png", strings.NewReader("b"))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		storage := newStorage(t)

		_, err := storage.Save("payload.exe", strings.NewReader("x"))
		assert.ErrorIs(t, err, upload.ErrUnsupportedFileType)
	})

	t.Run("extension check is case insensitive", func(t *testing.T) {
		storage := newStorage(t)

		path, err := storage.Save("PHOTO.PNG", strings.NewReader("x"))
		require.NoError(t, err)
		assert.Equal(t, ".PNG", filepath.Ext(path))
	})
}
