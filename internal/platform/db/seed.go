package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/config"
)

// Seed creates the bootstrap editor account when credentials are configured and it does not exist yet.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	return ensureEditorAccount(ctx, pool, cfg.SeedEditorUsername, cfg.SeedEditorEmail, cfg.SeedEditorPassword)
}

func ensureEditorAccount(ctx context.Context, pool *pgxpool.Pool, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		log.Debug("seed editor credentials not configured, skipping")
		return nil
	}

	var id int64
	err := pool.QueryRow(ctx, "SELECT id FROM accounts WHERE username = $1 OR email = $2", username, email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO accounts (username, email, password_hash, role)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, username, email, hash, auth.RoleEditor).Scan(&id)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"accountId": id, "username": username}).Info("seeded editor account")
	return nil
}
