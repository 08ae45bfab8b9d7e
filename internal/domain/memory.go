package domain

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// KidMemory es un hecho durable extraido de la conversacion (mascota,
// color favorito, hermanos...). Usamos uuid.UUID para IDs y
// pgvector.Vector para el embedding de busqueda semantica.
type KidMemory struct {
	ID         uuid.UUID       `json:"id"`
	KidID      uuid.UUID       `json:"kid_id"`
	Content    string          `json:"content"`
	Category   string          `json:"category"` // FAMILY, PETS, HOBBIES, SCHOOL, LIKES...
	Embedding  pgvector.Vector `json:"embedding"`
	Importance int             `json:"importance"` // 1-10
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MemoryExtraction es la estructura esperada del LLM al analizar un turno.
type MemoryExtraction struct {
	Facts []ExtractedFact `json:"facts"`
}

type ExtractedFact struct {
	Content    string `json:"content"`
	Category   string `json:"category"`
	Importance int    `json:"importance"`
}
