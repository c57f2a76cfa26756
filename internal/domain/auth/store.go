package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, username, email, password_hash, role,
       COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(job_title, ''),
       COALESCE(work_phone, ''), COALESCE(company_name, ''), COALESCE(country, ''),
       COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(zip_code, ''),
       last_login, created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateAccount(ctx context.Context, account Account) (int64, error) {
	var id int64
	p := account.Profile
	err := s.DB.QueryRow(ctx, `
    INSERT INTO accounts (username, email, password_hash, role, first_name, last_name, job_title,
                          work_phone, company_name, country, address, city, state, zip_code)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    RETURNING id
  `, account.Username, account.Email, account.PasswordHash, NormalizeRole(account.Role),
		nullIfEmpty(p.FirstName), nullIfEmpty(p.LastName), nullIfEmpty(p.JobTitle), nullIfEmpty(p.WorkPhone),
		nullIfEmpty(p.CompanyName), nullIfEmpty(p.Country), nullIfEmpty(p.Address), nullIfEmpty(p.City),
		nullIfEmpty(p.State), nullIfEmpty(p.ZipCode)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAccountExists
		}
		return 0, err
	}
	return id, nil
}

// AccountByLogin matches either the username or the email address.
func (s *Store) AccountByLogin(ctx context.Context, login string) (Account, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+accountColumns+`
    FROM accounts
    WHERE username = $1 OR lower(email) = lower($1)
    ORDER BY (username = $1) DESC
    LIMIT 1
  `, strings.TrimSpace(login))
	return scanAccount(row)
}

func (s *Store) AccountByEmailOrPhone(ctx context.Context, value string) (Account, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+accountColumns+`
    FROM accounts
    WHERE lower(email) = lower($1) OR work_phone = $1
    LIMIT 1
  `, strings.TrimSpace(value))
	return scanAccount(row)
}

func (s *Store) AccountByID(ctx context.Context, id int64) (Account, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	return scanAccount(row)
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, p Profile) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE accounts
    SET first_name = $2, last_name = $3, job_title = $4, work_phone = $5, company_name = $6,
        country = $7, address = $8, city = $9, state = $10, zip_code = $11, updated_at = now()
    WHERE id = $1
  `, id, nullIfEmpty(p.FirstName), nullIfEmpty(p.LastName), nullIfEmpty(p.JobTitle), nullIfEmpty(p.WorkPhone),
		nullIfEmpty(p.CompanyName), nullIfEmpty(p.Country), nullIfEmpty(p.Address), nullIfEmpty(p.City),
		nullIfEmpty(p.State), nullIfEmpty(p.ZipCode))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1", id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.DB.Exec(ctx, "UPDATE accounts SET last_login = now() WHERE id = $1", id)
	return err
}

func (s *Store) CreateSession(ctx context.Context, accountID int64, tokenHash string, expiresAt time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (account_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, accountID, tokenHash, expiresAt)
	return err
}

func (s *Store) SessionActive(ctx context.Context, accountID int64, tokenHash string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE account_id = $1 AND token_hash = $2 AND expires_at > now() AND revoked_at IS NULL
  `, accountID, tokenHash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) RevokeSession(ctx context.Context, accountID int64, tokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE account_id = $1 AND token_hash = $2 AND revoked_at IS NULL
  `, accountID, tokenHash)
	return err
}

func (s *Store) RevokeAllSessions(ctx context.Context, accountID int64) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE account_id = $1 AND revoked_at IS NULL", accountID)
	return err
}

func (s *Store) CreatePasswordReset(ctx context.Context, accountID int64, tokenHash string, expiresAt time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO password_resets (account_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, accountID, tokenHash, expiresAt)
	return err
}

// ConsumePasswordReset marks the token used and returns its account in one statement.
func (s *Store) ConsumePasswordReset(ctx context.Context, tokenHash string) (int64, error) {
	var accountID int64
	err := s.DB.QueryRow(ctx, `
    UPDATE password_resets
    SET used_at = now()
    WHERE token_hash = $1 AND used_at IS NULL AND expires_at > now()
    RETURNING account_id
  `, tokenHash).Scan(&accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrInvalidResetToken
	}
	if err != nil {
		return 0, err
	}
	return accountID, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role,
		&a.Profile.FirstName, &a.Profile.LastName, &a.Profile.JobTitle,
		&a.Profile.WorkPhone, &a.Profile.CompanyName, &a.Profile.Country,
		&a.Profile.Address, &a.Profile.City, &a.Profile.State, &a.Profile.ZipCode,
		&a.LastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	a.Role = NormalizeRole(a.Role)
	return a, nil
}

func nullIfEmpty(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return value
}
