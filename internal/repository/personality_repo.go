package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"kidpal/internal/domain"
)

// PersonalityRepository define el contrato de persistencia para el
// registro de personalidad/amistad del bot (uno por nino).
type PersonalityRepository interface {
	Create(ctx context.Context, p domain.Personality) error
	GetByKidID(ctx context.Context, kidID string) (domain.Personality, error)
	SaveTraits(ctx context.Context, kidID string, traits domain.TraitVector) error
	IncrementConversations(ctx context.Context, kidID string) (oldTotal, newTotal int, err error)
	SetLevel(ctx context.Context, kidID string, level int) error
	SetCatchphraseIfEmpty(ctx context.Context, kidID, phrase string) (bool, error)
}

type PgPersonalityRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonalityRepository(pool *pgxpool.Pool) *PgPersonalityRepository {
	return &PgPersonalityRepository{pool: pool}
}

func (r *PgPersonalityRepository) Create(ctx context.Context, p domain.Personality) error {
	const query = `
		INSERT INTO personalities (id, kid_id, humor, energy, curiosity, formality, level, total_conversations, catchphrase, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var catchphrase interface{}
	if p.Friendship.Catchphrase != "" {
		catchphrase = p.Friendship.Catchphrase
	}
	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.KidID,
		p.Traits.Humor,
		p.Traits.Energy,
		p.Traits.Curiosity,
		p.Traits.Formality,
		p.Friendship.Level,
		p.Friendship.TotalConversations,
		catchphrase,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PgPersonalityRepository) GetByKidID(ctx context.Context, kidID string) (domain.Personality, error) {
	const query = `
		SELECT id, kid_id, humor, energy, curiosity, formality, level, total_conversations, catchphrase, created_at, updated_at
		FROM personalities
		WHERE kid_id = $1
	`
	var p domain.Personality
	var catchphrase sql.NullString
	err := r.pool.QueryRow(ctx, query, kidID).Scan(
		&p.ID,
		&p.KidID,
		&p.Traits.Humor,
		&p.Traits.Energy,
		&p.Traits.Curiosity,
		&p.Traits.Formality,
		&p.Friendship.Level,
		&p.Friendship.TotalConversations,
		&catchphrase,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Personality{}, err
	}
	if catchphrase.Valid {
		p.Friendship.Catchphrase = catchphrase.String
	}
	return p, nil
}

// SaveTraits persiste los cuatro rasgos en un solo commit.
func (r *PgPersonalityRepository) SaveTraits(ctx context.Context, kidID string, traits domain.TraitVector) error {
	const query = `
		UPDATE personalities
		SET humor = $2, energy = $3, curiosity = $4, formality = $5, updated_at = NOW()
		WHERE kid_id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		kidID,
		traits.Humor,
		traits.Energy,
		traits.Curiosity,
		traits.Formality,
	)
	return err
}

// IncrementConversations suma 1 al contador en una sola sentencia atomica
// y devuelve el total anterior y el nuevo. Es el read-then-write unico del
// que se deriva "subio de nivel", para que dos requests concurrentes no
// puedan observar la misma transicion.
func (r *PgPersonalityRepository) IncrementConversations(ctx context.Context, kidID string) (int, int, error) {
	const query = `
		UPDATE personalities
		SET total_conversations = total_conversations + 1, updated_at = NOW()
		WHERE kid_id = $1
		RETURNING total_conversations
	`
	var newTotal int
	if err := r.pool.QueryRow(ctx, query, kidID).Scan(&newTotal); err != nil {
		return 0, 0, err
	}
	return newTotal - 1, newTotal, nil
}

// SetLevel nunca baja el nivel: GREATEST ignora escrituras viejas.
func (r *PgPersonalityRepository) SetLevel(ctx context.Context, kidID string, level int) error {
	const query = `
		UPDATE personalities
		SET level = GREATEST(level, $2), updated_at = NOW()
		WHERE kid_id = $1
	`
	_, err := r.pool.Exec(ctx, query, kidID, level)
	return err
}

// SetCatchphraseIfEmpty asigna la frase solo si no habia una; devuelve si
// esta llamada fue la que la asigno.
func (r *PgPersonalityRepository) SetCatchphraseIfEmpty(ctx context.Context, kidID, phrase string) (bool, error) {
	const query = `
		UPDATE personalities
		SET catchphrase = $2, updated_at = NOW()
		WHERE kid_id = $1 AND (catchphrase IS NULL OR catchphrase = '')
	`
	tag, err := r.pool.Exec(ctx, query, kidID, phrase)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
