package repository

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"kidpal/internal/domain"
)

// KidRepository define el contrato de persistencia para cuentas de ninos.
type KidRepository interface {
	Create(ctx context.Context, kid domain.Kid) error
	GetByID(ctx context.Context, id string) (domain.Kid, error)
	GetByParentEmail(ctx context.Context, parentEmail string) (domain.Kid, error)
	SaveOTP(ctx context.Context, id, otpHash string, expiresAt sql.NullTime) error
	MarkParentVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// PgKidRepository implementa KidRepository usando pgxpool.
type PgKidRepository struct {
	pool *pgxpool.Pool
}

func NewPgKidRepository(pool *pgxpool.Pool) *PgKidRepository {
	return &PgKidRepository{pool: pool}
}

func (r *PgKidRepository) Create(ctx context.Context, kid domain.Kid) error {
	const query = `
		INSERT INTO kids (id, name, age, parent_email, parent_pin_hash, parent_verified_at, otp_code_hash, otp_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		kid.ID,
		kid.Name,
		kid.Age,
		kid.ParentEmail,
		kid.ParentPinHash,
		kid.ParentVerifiedAt,
		kid.OtpCodeHash,
		kid.OtpExpiresAt,
		kid.CreatedAt,
	)
	return err
}

func (r *PgKidRepository) GetByID(ctx context.Context, id string) (domain.Kid, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *PgKidRepository) GetByParentEmail(ctx context.Context, parentEmail string) (domain.Kid, error) {
	return r.getBy(ctx, "parent_email = $1", parentEmail)
}

func (r *PgKidRepository) getBy(ctx context.Context, where, arg string) (domain.Kid, error) {
	query := `
		SELECT id, name, age, parent_email, parent_pin_hash, parent_verified_at, otp_code_hash, otp_expires_at, created_at
		FROM kids
		WHERE ` + where

	var k domain.Kid
	var pinHash, otpHash sql.NullString
	var verifiedAt, otpExpires sql.NullTime
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&k.ID,
		&k.Name,
		&k.Age,
		&k.ParentEmail,
		&pinHash,
		&verifiedAt,
		&otpHash,
		&otpExpires,
		&k.CreatedAt,
	)
	if err != nil {
		return domain.Kid{}, err
	}
	if pinHash.Valid {
		k.ParentPinHash = pinHash.String
	}
	if otpHash.Valid {
		k.OtpCodeHash = otpHash.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		k.ParentVerifiedAt = &t
	}
	if otpExpires.Valid {
		t := otpExpires.Time
		k.OtpExpiresAt = &t
	}
	return k, nil
}

func (r *PgKidRepository) SaveOTP(ctx context.Context, id, otpHash string, expiresAt sql.NullTime) error {
	const query = `
		UPDATE kids
		SET otp_code_hash = $2, otp_expires_at = $3
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, otpHash, expiresAt)
	return err
}

func (r *PgKidRepository) MarkParentVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE kids
		SET parent_verified_at = NOW(), otp_code_hash = NULL, otp_expires_at = NULL
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// Delete borra al nino y, en cascada explicita, todo lo que le pertenece:
// personalidad, mensajes, memorias, flags y eventos de nivel.
func (r *PgKidRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	owned := []string{
		`DELETE FROM level_up_events WHERE kid_id = $1`,
		`DELETE FROM safety_flags WHERE kid_id = $1`,
		`DELETE FROM kid_memories WHERE kid_id = $1`,
		`DELETE FROM messages WHERE kid_id = $1`,
		`DELETE FROM sessions WHERE kid_id = $1`,
		`DELETE FROM personalities WHERE kid_id = $1`,
		`DELETE FROM kids WHERE id = $1`,
	}
	for _, q := range owned {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
