package main

import (
	"github.com/spf13/pflag"

	"hrportal/internal/platform/config"
)

func bindPostgresFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres connection string")
}

func bindMongoFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "MongoDB connection string")
	fs.StringVar(&cfg.MongoDatabase, "mongo-database", cfg.MongoDatabase, "MongoDB database name")
}

func bindServeFlags(fs *pflag.FlagSet, cfg *config.Config) {
	bindPostgresFlags(fs, cfg)
	bindMongoFlags(fs, cfg)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.OTPStore, "otp-store", cfg.OTPStore, "One-time code store (memory,redis)")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis otp store")
	fs.StringVar(&cfg.ReportRenderer, "report-renderer", cfg.ReportRenderer, "PDF renderer (wkhtmltopdf,gofpdf)")
	fs.StringVar(&cfg.WKHTMLToPDFPath, "wkhtmltopdf-path", cfg.WKHTMLToPDFPath, "Path to the wkhtmltopdf binary")
	fs.StringVar(&cfg.EmailProvider, "email-provider", cfg.EmailProvider, "Email provider (none,smtp,brevo)")
	fs.BoolVar(&cfg.RunMigrations, "run-migrations", cfg.RunMigrations, "Apply migrations on startup")
	fs.BoolVar(&cfg.RunSeed, "run-seed", cfg.RunSeed, "Create the bootstrap editor account on startup")
	fs.BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "Serve prometheus metrics on /metrics")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
}
