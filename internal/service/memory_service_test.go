package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/llm"
)

type mockMemoryRepo struct {
	memories []domain.KidMemory
}

func (m *mockMemoryRepo) Create(_ context.Context, memory domain.KidMemory) error {
	m.memories = append(m.memories, memory)
	return nil
}

func (m *mockMemoryRepo) Search(_ context.Context, kidID uuid.UUID, _ pgvector.Vector, k int) ([]domain.KidMemory, error) {
	var out []domain.KidMemory
	for _, mem := range m.memories {
		if mem.KidID == kidID {
			out = append(out, mem)
		}
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *mockMemoryRepo) ListByKid(_ context.Context, kidID uuid.UUID) ([]domain.KidMemory, error) {
	return m.Search(context.Background(), kidID, pgvector.Vector{}, len(m.memories))
}

func TestParseMemoryExtraction(t *testing.T) {
	raw := "```json\n{\"facts\": [{\"content\": \"Has a dog named Rex\", \"category\": \"PETS\", \"importance\": 8}]}\n```"
	extraction, err := parseMemoryExtraction(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(extraction.Facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(extraction.Facts))
	}
	fact := extraction.Facts[0]
	if fact.Content != "Has a dog named Rex" || fact.Category != "PETS" || fact.Importance != 8 {
		t.Fatalf("unexpected fact %+v", fact)
	}
}

func TestParseMemoryExtractionWithSurroundingText(t *testing.T) {
	raw := "Sure! Here is the result: {\"facts\": []} hope that helps"
	extraction, err := parseMemoryExtraction(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(extraction.Facts) != 0 {
		t.Fatalf("expected no facts, got %v", extraction.Facts)
	}
}

func TestParseMemoryExtractionNoJSON(t *testing.T) {
	if _, err := parseMemoryExtraction("I could not find anything"); err == nil {
		t.Fatalf("expected error for output without json")
	}
}

func TestMemoryServiceExtractAndStore(t *testing.T) {
	repo := &mockMemoryRepo{}
	client := &llm.MockClient{
		Response:  `{"facts": [{"content": "Little sister named Ana", "category": "family", "importance": 9}, {"content": "  ", "category": "GENERAL", "importance": 1}]}`,
		Embedding: []float32{0.1, 0.2, 0.3},
	}
	svc := NewMemoryService(zap.NewNop(), client, repo)

	kidID := uuid.NewString()
	stored, err := svc.ExtractAndStore(context.Background(), kidID, "my little sister ana drew me a picture", "That is so sweet of Ana!")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stored != 1 {
		t.Fatalf("expected 1 stored fact, got %d", stored)
	}
	mem := repo.memories[0]
	if mem.Category != "FAMILY" {
		t.Fatalf("expected normalized category FAMILY, got %s", mem.Category)
	}
	if mem.Importance != 9 {
		t.Fatalf("expected importance 9, got %d", mem.Importance)
	}
}

func TestMemoryServiceExtractRejectsBadKidID(t *testing.T) {
	svc := NewMemoryService(zap.NewNop(), &llm.MockClient{}, &mockMemoryRepo{})
	if _, err := svc.ExtractAndStore(context.Background(), "not-a-uuid", "hi", "hello"); err == nil {
		t.Fatalf("expected error for invalid kid id")
	}
}

func TestMemoryServiceRecallContext(t *testing.T) {
	repo := &mockMemoryRepo{}
	client := &llm.MockClient{Embedding: []float32{0.5, 0.5}}
	svc := NewMemoryService(zap.NewNop(), client, repo)

	kidID := uuid.New()
	repo.memories = append(repo.memories, domain.KidMemory{
		ID:       uuid.New(),
		KidID:    kidID,
		Content:  "Has a dog named Rex",
		Category: "PETS",
	})

	contextText, err := svc.RecallContext(context.Background(), kidID.String(), "how is your dog?", 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(contextText, "[PETS] Has a dog named Rex") {
		t.Fatalf("unexpected recall text %q", contextText)
	}

	// Sin memorias: contexto vacio, sin error.
	empty, err := svc.RecallContext(context.Background(), uuid.NewString(), "hello", 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if empty != "" {
		t.Fatalf("expected empty context, got %q", empty)
	}
}
