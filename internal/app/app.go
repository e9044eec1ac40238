package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"campus-linker/internal/activity"
	"campus-linker/internal/admission"
	"campus-linker/internal/auth"
	"campus-linker/internal/config"
	"campus-linker/internal/course"
	"campus-linker/internal/dashboard"
	"campus-linker/internal/db"
	"campus-linker/internal/events"
	"campus-linker/internal/exam"
	"campus-linker/internal/fee"
	"campus-linker/internal/health"
	"campus-linker/internal/logger"
	"campus-linker/internal/metrics"
	"campus-linker/internal/middleware"
	"campus-linker/internal/receipt"
	"campus-linker/internal/seed"
	"campus-linker/internal/upload"

	"github.com/go-chi/chi/v5"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	publisher events.Publisher
}

func New() *App {
	slogLogger := logger.NewWithServiceContext("campus-linker", Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	m, err := metrics.New("campus-linker")
	if err != nil {
		slogLogger.Warn("failed to initialize metrics", "error", err)
		m = metrics.NewMock()
	}

	database := db.New(cfg.Database)
	if err := m.RegisterDB(database.DB); err != nil {
		slogLogger.Warn("failed to register database metrics", "error", err)
	}

	ctx := context.Background()
	err = db.RunMigrations(ctx, database,
		(*auth.Account)(nil),
		(*auth.RefreshToken)(nil),
		(*course.Course)(nil),
		(*course.CourseFee)(nil),
		(*admission.Admission)(nil),
		(*admission.Student)(nil),
		(*fee.Fee)(nil),
		(*exam.Exam)(nil),
		(*exam.Result)(nil),
		(*activity.Activity)(nil),
	)
	if err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	err = db.RunIndexes(ctx, database,
		db.Index{
			Name:    "fees_one_completed_per_admission",
			Model:   (*fee.Fee)(nil),
			Columns: []string{"admission_id"},
			Unique:  true,
			Where:   "status = 'Completed'",
		},
		db.Index{
			Name:    "results_one_per_student_exam",
			Model:   (*exam.Result)(nil),
			Columns: []string{"student_id", "exam_id"},
			Unique:  true,
		},
	)
	if err != nil {
		log.Fatal("failed to create indexes:", err)
	}

	if err := seed.Seed(ctx, database, slogLogger); err != nil {
		log.Fatal("failed to seed database:", err)
	}

	app.publisher = newPublisher(cfg.Events, slogLogger)

	storage, err := upload.NewLocalStorage(cfg.Uploads.Dir, slogLogger)
	if err != nil {
		log.Fatal("failed to initialize upload storage:", err)
	}

	// Apply CORS middleware globally
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Auth setup
	authRepo := auth.NewRepository(database, m)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(authService, slogLogger, m)
	authHandler.RegisterRoutes(app.router)

	// Course reference data (public reads)
	courseRepo := course.NewRepository(database, m)
	courseService := course.NewService(courseRepo, slogLogger)
	courseHandler := course.NewHandler(courseService, slogLogger)
	courseHandler.RegisterRoutes(app.router)

	// Workflow services
	admissionRepo := admission.NewRepository(database, m)
	admissionService := admission.NewService(admissionRepo, app.publisher, slogLogger)
	admissionHandler := admission.NewHandler(admissionService, storage, slogLogger, m)

	feeRepo := fee.NewRepository(database, m)
	feeService := fee.NewService(feeRepo, admissionRepo, courseService, app.publisher, slogLogger)
	feeHandler := fee.NewHandler(feeService, slogLogger, m)

	examRepo := exam.NewRepository(database, m)
	examService := exam.NewService(examRepo, admissionRepo, courseRepo, app.publisher, slogLogger)
	examHandler := exam.NewHandler(examService, slogLogger, m)

	activityRepo := activity.NewRepository(database, m)
	activityService := activity.NewService(activityRepo, admissionRepo)
	activityHandler := activity.NewHandler(activityService, slogLogger)

	receiptHandler := receipt.NewHandler(feeService, slogLogger, m)

	dashboardRepo := dashboard.NewRepository(database, m)
	dashboardHandler := dashboard.NewHandler(dashboardRepo, slogLogger)

	// Protected routes
	app.router.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(slogLogger))

		authHandler.RegisterProtectedRoutes(r)
		admissionHandler.RegisterRoutes(r)
		feeHandler.RegisterRoutes(r)
		examHandler.RegisterRoutes(r)
		activityHandler.RegisterRoutes(r)
		receiptHandler.RegisterRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin, slogLogger))

			courseHandler.RegisterAdminRoutes(r)
			examHandler.RegisterAdminRoutes(r)
			dashboardHandler.RegisterAdminRoutes(r)
		})
	})

	slogLogger.Info("application initialized successfully")

	return app
}

// newPublisher picks the event sink from config. A broker that cannot be
// reached at boot degrades to a logged no-op instead of blocking startup.
func newPublisher(cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
	switch cfg.Driver {
	case "nats":
		publisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS publisher, events disabled", "error", err)
			return events.Nop{}
		}
		return publisher
	case "kafka":
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Warn("failed to initialize kafka publisher, events disabled", "error", err)
			return events.Nop{}
		}
		return publisher
	default:
		logger.Info("event publishing disabled", "driver", cfg.Driver)
		return events.Nop{}
	}
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", "error", err)
	}
	return a.server.Shutdown(ctx)
}
