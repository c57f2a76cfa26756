package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateAccount(ctx context.Context, account Account) (int64, error)
	AccountByLogin(ctx context.Context, login string) (Account, error)
	AccountByEmailOrPhone(ctx context.Context, value string) (Account, error)
	AccountByID(ctx context.Context, id int64) (Account, error)
	UpdateProfile(ctx context.Context, id int64, p Profile) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	TouchLastLogin(ctx context.Context, id int64) error
	CreateSession(ctx context.Context, accountID int64, tokenHash string, expiresAt time.Time) error
	SessionActive(ctx context.Context, accountID int64, tokenHash string) (bool, error)
	RevokeSession(ctx context.Context, accountID int64, tokenHash string) error
	RevokeAllSessions(ctx context.Context, accountID int64) error
	CreatePasswordReset(ctx context.Context, accountID int64, tokenHash string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash string) (int64, error)
}
