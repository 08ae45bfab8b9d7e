package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"kidpal/internal/domain"
)

// LevelUpEventRepository define el contrato de persistencia para eventos
// de subida de nivel. La tabla lleva UNIQUE (kid_id, old_level, new_level)
// como respaldo contra creaciones duplicadas por carrera del caller.
type LevelUpEventRepository interface {
	Create(ctx context.Context, event domain.LevelUpEvent) error
	GetByID(ctx context.Context, id string) (domain.LevelUpEvent, error)
	ListUnacknowledged(ctx context.Context, kidID string) ([]domain.LevelUpEvent, error)
	Acknowledge(ctx context.Context, id string, at time.Time) (bool, error)
}

type PgLevelUpEventRepository struct {
	pool *pgxpool.Pool
}

func NewPgLevelUpEventRepository(pool *pgxpool.Pool) *PgLevelUpEventRepository {
	return &PgLevelUpEventRepository{pool: pool}
}

func (r *PgLevelUpEventRepository) Create(ctx context.Context, event domain.LevelUpEvent) error {
	const query = `
		INSERT INTO level_up_events (id, kid_id, old_level, new_level, total_at_time, points_earned, rewards, celebration_text, acknowledged, acknowledged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.KidID,
		event.OldLevel,
		event.NewLevel,
		event.TotalAtTime,
		event.PointsEarned,
		event.Rewards,
		event.CelebrationText,
		event.Acknowledged,
		event.AcknowledgedAt,
		event.CreatedAt,
	)
	return err
}

func (r *PgLevelUpEventRepository) GetByID(ctx context.Context, id string) (domain.LevelUpEvent, error) {
	const query = `
		SELECT id, kid_id, old_level, new_level, total_at_time, points_earned, rewards, celebration_text, acknowledged, acknowledged_at, created_at
		FROM level_up_events
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanLevelUpEvent(row)
}

// ListUnacknowledged devuelve los eventos pendientes del mas viejo al mas
// nuevo, para que la celebracion muestre siempre el primero pendiente.
func (r *PgLevelUpEventRepository) ListUnacknowledged(ctx context.Context, kidID string) ([]domain.LevelUpEvent, error) {
	const query = `
		SELECT id, kid_id, old_level, new_level, total_at_time, points_earned, rewards, celebration_text, acknowledged, acknowledged_at, created_at
		FROM level_up_events
		WHERE kid_id = $1 AND acknowledged = FALSE
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, kidID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.LevelUpEvent
	for rows.Next() {
		e, err := scanLevelUpEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Acknowledge marca el evento una sola vez; el guard "acknowledged = FALSE"
// hace que el segundo intento no toque acknowledged_at. Devuelve si esta
// llamada fue la que lo marco.
func (r *PgLevelUpEventRepository) Acknowledge(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `
		UPDATE level_up_events
		SET acknowledged = TRUE, acknowledged_at = $2
		WHERE id = $1 AND acknowledged = FALSE
	`
	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type pgxRow interface {
	Scan(...interface{}) error
}

func scanLevelUpEvent(row pgxRow) (domain.LevelUpEvent, error) {
	var e domain.LevelUpEvent
	var ackAt sql.NullTime
	if err := row.Scan(
		&e.ID,
		&e.KidID,
		&e.OldLevel,
		&e.NewLevel,
		&e.TotalAtTime,
		&e.PointsEarned,
		&e.Rewards,
		&e.CelebrationText,
		&e.Acknowledged,
		&ackAt,
		&e.CreatedAt,
	); err != nil {
		return domain.LevelUpEvent{}, err
	}
	if ackAt.Valid {
		t := ackAt.Time
		e.AcknowledgedAt = &t
	}
	return e, nil
}
