package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SebastianTibata/redbot/internal/domain"
)

// AccountRepository resolves account IDs to credential bundles.
// The executor never writes accounts; they are owned by the account service.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository wraps a pgxpool with the AccountRepository interface.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, platform, handle, token, created_at
		FROM accounts
		WHERE id = $1
	`, id)

	var a domain.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Platform, &a.Handle, &a.Token, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.AccountNotFoundError{AccountID: id}
		}
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	return &a, nil
}

func (r *accountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, platform, handle, token, created_at
		FROM accounts
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Platform, &a.Handle, &a.Token, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}
