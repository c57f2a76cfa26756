package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type Service struct {
	Store          Store
	Sender         Sender
	TTL            time.Duration
	Length         int
	ResendInterval time.Duration

	generate Generator
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithGenerator(gen Generator) Option {
	return func(s *Service) {
		if gen != nil {
			s.generate = gen
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.TTL = ttl
		}
	}
}

func WithLength(length int) Option {
	return func(s *Service) {
		if length > 0 {
			s.Length = length
		}
	}
}

// WithResendInterval sets how long an unexpired code blocks a new issuance. Zero disables the guard.
func WithResendInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval >= 0 {
			s.ResendInterval = interval
		}
	}
}

func NewService(store Store, sender Sender, opts ...Option) *Service {
	s := &Service{
		Store:          store,
		Sender:         sender,
		TTL:            DefaultTTL,
		Length:         DefaultLength,
		ResendInterval: DefaultResendInterval,
		generate:       HOTPGenerator,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// Issue creates a code for identifier, stores it, and hands it to the sender.
func (s *Service) Issue(ctx context.Context, identifier string) (time.Time, error) {
	key := normalizeKey(identifier)
	if key == "" {
		return time.Time{}, fmt.Errorf("identifier is required")
	}

	code, err := s.generate(s.Length)
	if err != nil {
		return time.Time{}, err
	}
	now := s.now()
	entry := Entry{Code: code, IssuedAt: now, ExpiresAt: now.Add(s.TTL)}

	replaced, err := s.Store.Put(ctx, key, entry, s.ResendInterval)
	if err != nil {
		if errors.Is(err, ErrTooSoon) {
			observe("too_soon")
		}
		return time.Time{}, err
	}
	if replaced {
		log.WithField("identifier", key).Info("replaced outstanding one-time code")
	}

	if err := s.Sender.SendCode(ctx, identifier, code, s.TTL); err != nil {
		if delErr := s.Store.Delete(ctx, key); delErr != nil {
			log.WithError(delErr).WithField("identifier", key).Warn("discard undelivered code failed")
		}
		observe("delivery_failed")
		return time.Time{}, fmt.Errorf("deliver code: %w", err)
	}
	observe("issued")
	return entry.ExpiresAt, nil
}

// Verify consumes the code for identifier. A successful verification cannot be repeated.
func (s *Service) Verify(ctx context.Context, identifier, code string) error {
	key := normalizeKey(identifier)
	code = strings.TrimSpace(code)
	if key == "" {
		return ErrNotFound
	}
	err := s.Store.Consume(ctx, key, code, s.now())
	switch {
	case err == nil:
		observe("verified")
	case errors.Is(err, ErrNotFound):
		observe("not_found")
	case errors.Is(err, ErrExpired):
		observe("expired")
	case errors.Is(err, ErrInvalid):
		observe("invalid")
	}
	return err
}
