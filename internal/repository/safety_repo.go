package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"kidpal/internal/domain"
)

type SafetyFlagRepository interface {
	Create(ctx context.Context, flag domain.SafetyFlag) error
	ListByKid(ctx context.Context, kidID string, limit int) ([]domain.SafetyFlag, error)
}

type PgSafetyFlagRepository struct {
	pool *pgxpool.Pool
}

func NewPgSafetyFlagRepository(pool *pgxpool.Pool) *PgSafetyFlagRepository {
	return &PgSafetyFlagRepository{pool: pool}
}

func (r *PgSafetyFlagRepository) Create(ctx context.Context, flag domain.SafetyFlag) error {
	const query = `
		INSERT INTO safety_flags (id, kid_id, message_excerpt, flags, severity, action, parent_notified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		flag.ID,
		flag.KidID,
		flag.MessageExcerpt,
		flag.Flags,
		string(flag.Severity),
		string(flag.Action),
		flag.ParentNotified,
		flag.CreatedAt,
	)
	return err
}

func (r *PgSafetyFlagRepository) ListByKid(ctx context.Context, kidID string, limit int) ([]domain.SafetyFlag, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, kid_id, message_excerpt, flags, severity, action, parent_notified, created_at
		FROM safety_flags
		WHERE kid_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, kidID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []domain.SafetyFlag
	for rows.Next() {
		var f domain.SafetyFlag
		var severity, action string
		if err := rows.Scan(
			&f.ID,
			&f.KidID,
			&f.MessageExcerpt,
			&f.Flags,
			&severity,
			&action,
			&f.ParentNotified,
			&f.CreatedAt,
		); err != nil {
			return nil, err
		}
		f.Severity = domain.Severity(severity)
		f.Action = domain.SafetyAction(action)
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return flags, nil
}
