package otp

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("code not found or expired")
	ErrExpired  = errors.New("code expired")
	ErrInvalid  = errors.New("code invalid")
	ErrTooSoon  = errors.New("a code was issued recently, try again later")
)

const (
	DefaultTTL            = 5 * time.Minute
	DefaultLength         = 6
	DefaultResendInterval = 30 * time.Second

	// ExpiredRetention is how long a store keeps an entry past its expiry, so a late
	// check reports ErrExpired rather than ErrNotFound.
	ExpiredRetention = 24 * time.Hour
)

// Entry is one outstanding code for an identifier.
type Entry struct {
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Store holds outstanding codes keyed by identifier.
//
// Put replaces any existing entry unless that entry is unexpired and was issued
// less than minInterval before entry.IssuedAt, in which case it returns ErrTooSoon.
// Stores may forget entries once they are ExpiredRetention past expiry.
// Consume is a compare-and-delete: it returns ErrNotFound, ErrExpired (after
// deleting the entry), ErrInvalid (leaving the entry), or nil after deleting it.
type Store interface {
	Put(ctx context.Context, key string, entry Entry, minInterval time.Duration) (replaced bool, err error)
	Delete(ctx context.Context, key string) error
	Consume(ctx context.Context, key, code string, now time.Time) error
}

// Sender delivers an issued code to its recipient.
type Sender interface {
	SendCode(ctx context.Context, to, code string, ttl time.Duration) error
}
