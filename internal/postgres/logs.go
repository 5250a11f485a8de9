package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SebastianTibata/redbot/internal/domain"
)

// LogRepository persists one append-only row per task attempt.
type LogRepository interface {
	RecordExecution(ctx context.Context, log *domain.ExecutionLog) error
	ListByUser(ctx context.Context, userID string, accountID string, limit int) ([]*domain.ExecutionLog, error)
}

type logRepository struct {
	pool *pgxpool.Pool
}

// NewLogRepository wraps a pgxpool with the LogRepository interface.
func NewLogRepository(pool *pgxpool.Pool) LogRepository {
	return &logRepository{pool: pool}
}

func (r *logRepository) RecordExecution(ctx context.Context, log *domain.ExecutionLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO execution_logs
			(id, user_id, account_id, task_id, task_type, status, detail, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		log.ID, log.UserID, log.AccountID, log.TaskID,
		log.TaskType, string(log.Status), log.Detail, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record execution for task %s: %w", log.TaskID, err)
	}
	return nil
}

// ListByUser returns logs newest-first. accountID narrows the result when
// non-empty; a non-positive limit falls back to 50.
func (r *logRepository) ListByUser(ctx context.Context, userID string, accountID string, limit int) ([]*domain.ExecutionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, account_id, task_id, task_type, status, detail, created_at
		FROM execution_logs
		WHERE user_id = $1
	`
	args := []any{userID}
	if accountID != "" {
		query += ` AND account_id = $2`
		args = append(args, accountID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list execution logs for user %s: %w", userID, err)
	}
	defer rows.Close()

	var logs []*domain.ExecutionLog
	for rows.Next() {
		var l domain.ExecutionLog
		var statusStr string
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.AccountID, &l.TaskID,
			&l.TaskType, &statusStr, &l.Detail, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan execution log: %w", err)
		}
		l.Status = domain.Status(statusStr)
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
