package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultResetTTL = 15 * time.Minute

type Service struct {
	Store      StoreAPI
	Secret     string
	SessionTTL time.Duration
	ResetTTL   time.Duration

	now func() time.Time
}

func NewService(store StoreAPI, secret string, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &Service{
		Store:      store,
		Secret:     secret,
		SessionTTL: sessionTTL,
		ResetTTL:   DefaultResetTTL,
		now:        time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (Account, error) {
	if in.Password != in.ConfirmPassword {
		return Account{}, ErrPasswordMismatch
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	account := Account{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         NormalizeRole(in.Role),
		Profile:      in.Profile,
	}
	id, err := s.Store.CreateAccount(ctx, account)
	if err != nil {
		return Account{}, err
	}
	account.ID = id
	log.WithFields(log.Fields{"accountId": id, "role": account.Role}).Info("account created")
	return account, nil
}

// Signin checks the credentials, records a server-side session and returns a signed token for it.
func (s *Service) Signin(ctx context.Context, login, password string) (Session, error) {
	account, err := s.Store.AccountByLogin(ctx, login)
	if errors.Is(err, ErrAccountNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := CheckPassword(account.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	sessionID, err := GenerateOpaqueToken()
	if err != nil {
		return Session{}, fmt.Errorf("generate session: %w", err)
	}
	expires := s.now().Add(s.SessionTTL)
	if err := s.Store.CreateSession(ctx, account.ID, HashToken(sessionID), expires); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	token, err := GenerateToken(s.Secret, Claims{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      NormalizeRole(account.Role),
		SessionID: sessionID,
	}, s.SessionTTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.Store.TouchLastLogin(ctx, account.ID); err != nil {
		log.WithError(err).WithField("accountId", account.ID).Warn("update last_login failed")
	}
	return Session{Token: token, Account: account, Expires: expires}, nil
}

// Authenticate resolves a bearer token into the caller, requiring the backing session to be live.
func (s *Service) Authenticate(ctx context.Context, token string) (UserContext, error) {
	claims, err := ParseToken(s.Secret, token)
	if err != nil {
		return UserContext{}, ErrSessionExpired
	}
	active, err := s.Store.SessionActive(ctx, claims.AccountID, HashToken(claims.SessionID))
	if err != nil {
		return UserContext{}, err
	}
	if !active {
		return UserContext{}, ErrSessionExpired
	}
	return UserContext{
		AccountID: claims.AccountID,
		Username:  claims.Username,
		Role:      NormalizeRole(claims.Role),
		SessionID: claims.SessionID,
	}, nil
}

func (s *Service) Logout(ctx context.Context, user UserContext) error {
	if user.SessionID == "" {
		return nil
	}
	return s.Store.RevokeSession(ctx, user.AccountID, HashToken(user.SessionID))
}

func (s *Service) Profile(ctx context.Context, accountID int64) (Account, error) {
	return s.Store.AccountByID(ctx, accountID)
}

func (s *Service) UpdateProfile(ctx context.Context, accountID int64, p Profile) (Account, error) {
	if err := s.Store.UpdateProfile(ctx, accountID, p); err != nil {
		return Account{}, err
	}
	return s.Store.AccountByID(ctx, accountID)
}

// LookupForReset finds the account a forgot-password request refers to.
func (s *Service) LookupForReset(ctx context.Context, emailOrPhone string) (Account, error) {
	return s.Store.AccountByEmailOrPhone(ctx, emailOrPhone)
}

// IssueResetToken is called once the account holder has proven control of the email address.
func (s *Service) IssueResetToken(ctx context.Context, accountID int64) (string, time.Time, error) {
	token, err := GenerateOpaqueToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expires := s.now().Add(s.ResetTTL)
	if err := s.Store.CreatePasswordReset(ctx, accountID, HashToken(token), expires); err != nil {
		return "", time.Time{}, fmt.Errorf("store reset token: %w", err)
	}
	return token, expires, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	accountID, err := s.Store.ConsumePasswordReset(ctx, HashToken(token))
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.UpdatePassword(ctx, accountID, hash); err != nil {
		return err
	}
	if err := s.Store.RevokeAllSessions(ctx, accountID); err != nil {
		log.WithError(err).WithField("accountId", accountID).Warn("revoke sessions after reset failed")
	}
	log.WithField("accountId", accountID).Info("password reset")
	return nil
}
