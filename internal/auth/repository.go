package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-linker/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrAccountNotFound = errors.New("account not found")

type Repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: m,
	}
}

// CreateAccount inserts a new account and returns it with its generated id
func (r *Repository) CreateAccount(ctx context.Context, account *Account) (*Account, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(account).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "accounts", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *Repository) GetAccountByID(ctx context.Context, id int) (*Account, error) {
	start := time.Now()
	account := new(Account)
	err := r.db.NewSelect().Model(account).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "accounts", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	start := time.Now()
	account := new(Account)
	err := r.db.NewSelect().Model(account).Where("username = ?", username).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "accounts", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// UsernameOrEmailExists checks registration uniqueness before insert
func (r *Repository) UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Account)(nil)).
		Where("username = ?", username).
		WhereOr("email = ?", email).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "accounts", time.Since(start), err)

	return exists, err
}

// CreateRefreshToken stores a new refresh token
func (r *Repository) CreateRefreshToken(ctx context.Context, accountID int, token string, expiresAt time.Time) error {
	start := time.Now()
	refreshToken := &RefreshToken{
		AccountID: accountID,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	_, err := r.db.NewInsert().Model(refreshToken).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "refresh_tokens", time.Since(start), err)

	return err
}

// GetRefreshToken retrieves a refresh token by token string
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	start := time.Now()
	refreshToken := &RefreshToken{}
	err := r.db.NewSelect().
		Model(refreshToken).
		Where("token = ?", token).
		Where("expires_at > ?", time.Now()).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "refresh_tokens", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	return refreshToken, nil
}

// DeleteRefreshToken removes a refresh token (for logout)
func (r *Repository) DeleteRefreshToken(ctx context.Context, token string) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("token = ?", token).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}

// DeleteExpiredTokens removes all expired refresh tokens (cleanup)
func (r *Repository) DeleteExpiredTokens(ctx context.Context) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)

	return err
}

// DeleteAllAccountTokens removes all refresh tokens for an account
func (r *Repository) DeleteAllAccountTokens(ctx context.Context, accountID int) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("account_id = ?", accountID).
		Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "refresh_tokens", time.Since(start), err)
	return err
}
