package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"kidpal/internal/domain"
)

type MemoryRepository interface {
	Create(ctx context.Context, memory domain.KidMemory) error
	Search(ctx context.Context, kidID uuid.UUID, queryEmbedding pgvector.Vector, k int) ([]domain.KidMemory, error)
	ListByKid(ctx context.Context, kidID uuid.UUID) ([]domain.KidMemory, error)
}

type PgMemoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgMemoryRepository(pool *pgxpool.Pool) *PgMemoryRepository {
	return &PgMemoryRepository{pool: pool}
}

func (r *PgMemoryRepository) Create(ctx context.Context, memory domain.KidMemory) error {
	importance := memory.Importance
	if importance <= 0 {
		importance = 5
	}
	category := memory.Category
	if category == "" {
		category = "GENERAL"
	}
	const query = `
		INSERT INTO kid_memories (id, kid_id, content, category, embedding, importance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.KidID,
		memory.Content,
		category,
		memory.Embedding,
		importance,
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	return err
}

// Search recupera las k memorias mas cercanas por distancia coseno.
func (r *PgMemoryRepository) Search(ctx context.Context, kidID uuid.UUID, queryEmbedding pgvector.Vector, k int) ([]domain.KidMemory, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT id, kid_id, content, category, embedding, importance, created_at, updated_at
		FROM kid_memories
		WHERE kid_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, kidID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKidMemories(rows)
}

func (r *PgMemoryRepository) ListByKid(ctx context.Context, kidID uuid.UUID) ([]domain.KidMemory, error) {
	const query = `
		SELECT id, kid_id, content, category, embedding, importance, created_at, updated_at
		FROM kid_memories
		WHERE kid_id = $1
		ORDER BY importance DESC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, kidID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKidMemories(rows)
}

func scanKidMemories(rows pgxRows) ([]domain.KidMemory, error) {
	var memories []domain.KidMemory
	for rows.Next() {
		var m domain.KidMemory
		if err := rows.Scan(
			&m.ID,
			&m.KidID,
			&m.Content,
			&m.Category,
			&m.Embedding,
			&m.Importance,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memories, nil
}
