package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/analytics"
	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/employee"
	"hrportal/internal/domain/otp"
	"hrportal/internal/domain/personnel"
	"hrportal/internal/domain/reports"
	"hrportal/internal/platform/config"
	"hrportal/internal/platform/db"
	"hrportal/internal/platform/docstore"
	"hrportal/internal/platform/email"
	"hrportal/internal/platform/metrics"
	analyticshandler "hrportal/internal/transport/http/handlers/analytics"
	audithandler "hrportal/internal/transport/http/handlers/audit"
	authhandler "hrportal/internal/transport/http/handlers/auth"
	employeehandler "hrportal/internal/transport/http/handlers/employee"
	personnelhandler "hrportal/internal/transport/http/handlers/personnel"
	reportshandler "hrportal/internal/transport/http/handlers/reports"
	"hrportal/internal/transport/http/middleware"
)

const otpSweepInterval = time.Minute

type AuthService interface {
	authhandler.AuthService
	middleware.Authenticator
}

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the router is assembled from.
type Dependencies struct {
	Config    config.Config
	Auth      AuthService
	OTP       authhandler.OTPService
	Employees employeehandler.Service
	Personnel personnel.StoreAPI
	Analytics analyticshandler.DashboardService
	Reports   reportshandler.Exporter
	Audit     audithandler.Reader
	Metrics   *metrics.Collector
	Ready     map[string]Pinger
}

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Docs   *docstore.Store
	Router http.Handler

	otpStore io.Closer
}

// New connects both stores, prepares them and assembles the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, DB: pool}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	docs, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Docs = docs
	if err := docs.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("ensure document indexes failed")
	}

	store, err := newOTPStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.otpStore = store

	sender := email.NewOTPSender(email.New(cfg), email.Address{Name: cfg.EmailFromName, Email: cfg.EmailFrom})
	codes := otp.NewService(store, sender,
		otp.WithTTL(cfg.OTPTTL),
		otp.WithLength(cfg.OTPLength),
		otp.WithResendInterval(cfg.OTPResendInterval),
	)

	auditLog := audit.New(pool)
	dashboards := analytics.NewService(analytics.NewRelational(pool), analytics.NewDocuments(docs))

	deps := Dependencies{
		Config:    cfg,
		Auth:      auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.SessionTTL),
		OTP:       codes,
		Employees: employee.NewService(employee.NewStore(pool), auditLog),
		Personnel: personnel.NewStore(docs),
		Analytics: dashboards,
		Reports:   reports.NewService(dashboards, newRenderer(cfg)),
		Audit:     auditLog,
		Ready:     map[string]Pinger{"postgres": pool, "mongo": docs},
	}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	}
	app.Router = NewRouter(deps)
	return app, nil
}

// Close releases the stores. It is safe to call on a partially built App.
func (a *App) Close() {
	if a.otpStore != nil {
		if err := a.otpStore.Close(); err != nil {
			log.WithError(err).Warn("otp store close failed")
		}
	}
	if a.Docs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Docs.Close(ctx); err != nil {
			log.WithError(err).Warn("document store close failed")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

type otpStore interface {
	otp.Store
	io.Closer
}

func newOTPStore(ctx context.Context, cfg config.Config) (otpStore, error) {
	if cfg.OTPStore == config.OTPStoreRedis {
		store, err := otp.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("otp redis store: %w", err)
		}
		return store, nil
	}
	store := otp.NewMemoryStore()
	store.StartSweeper(ctx, otpSweepInterval)
	return store, nil
}

func newRenderer(cfg config.Config) reports.Renderer {
	if cfg.ReportRenderer == config.RendererGoFPDF {
		return reports.NewGoFPDFRenderer()
	}
	return reports.NewWKHTMLRenderer(cfg.WKHTMLToPDFPath)
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(middleware.Auth(deps.Auth))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, dep := range deps.Ready {
			if err := dep.Ping(ctx); err != nil {
				log.WithError(err).WithField("dependency", name).Warn("readiness check failed")
				http.Error(w, name+" not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(deps.Auth, deps.OTP).RegisterRoutes(r)
		employeehandler.NewHandler(deps.Employees).RegisterRoutes(r)
		personnelhandler.NewHandler(deps.Personnel).RegisterRoutes(r)
		analyticshandler.NewHandler(deps.Analytics).RegisterRoutes(r)
		reportshandler.NewHandler(deps.Reports).RegisterRoutes(r)
		audithandler.NewHandler(deps.Audit).RegisterRoutes(r)
	})

	return router
}
