package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/llm"
	"kidpal/internal/repository"
)

const memoryExtractionPrompt = `
You extract durable facts about a child from a chat turn, for a friendly companion bot.

Child said: %q
Bot replied: %q

Rules:
1) Only extract stable, reusable facts (pet names, siblings, favorite things, hobbies, school subjects). Skip moods, greetings and one-off events.
2) Category must be one of: FAMILY, PETS, HOBBIES, SCHOOL, LIKES, GENERAL.
3) Importance is 1-10 (10 = identity-level fact like a sibling's name).
4) If there is nothing durable, return an empty list.

Answer ONLY with JSON in this exact shape:
{"facts": [{"content": "...", "category": "...", "importance": 5}]}
`

// MemoryService extrae hechos durables del nino con el LLM y los guarda
// con embedding para recuperarlos por similitud.
type MemoryService struct {
	logger    *zap.Logger
	llmClient llm.Client
	memories  repository.MemoryRepository
}

func NewMemoryService(logger *zap.Logger, llmClient llm.Client, memories repository.MemoryRepository) *MemoryService {
	return &MemoryService{
		logger:    logger,
		llmClient: llmClient,
		memories:  memories,
	}
}

// ExtractAndStore analiza un turno y persiste los hechos nuevos.
// Devuelve cuantos guardo.
func (s *MemoryService) ExtractAndStore(ctx context.Context, kidID, kidMessage, botReply string) (int, error) {
	kidUUID, err := uuid.Parse(kidID)
	if err != nil {
		return 0, fmt.Errorf("parse kid id: %w", err)
	}

	raw, err := s.llmClient.Generate(ctx, fmt.Sprintf(memoryExtractionPrompt, kidMessage, botReply))
	if err != nil {
		return 0, fmt.Errorf("llm generate extraction: %w", err)
	}

	extraction, err := parseMemoryExtraction(raw)
	if err != nil {
		return 0, fmt.Errorf("parse extraction: %w", err)
	}

	stored := 0
	now := time.Now().UTC()
	for _, fact := range extraction.Facts {
		content := strings.TrimSpace(fact.Content)
		if content == "" {
			continue
		}

		embed, err := s.llmClient.CreateEmbedding(ctx, content)
		if err != nil {
			s.logger.Warn("create embedding failed", zap.Error(err), zap.String("kid_id", kidID))
			continue
		}

		memory := domain.KidMemory{
			ID:         uuid.New(),
			KidID:      kidUUID,
			Content:    content,
			Category:   strings.ToUpper(strings.TrimSpace(fact.Category)),
			Embedding:  pgvector.NewVector(embed),
			Importance: fact.Importance,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.memories.Create(ctx, memory); err != nil {
			s.logger.Warn("persist memory failed", zap.Error(err), zap.String("kid_id", kidID))
			continue
		}
		stored++
	}
	return stored, nil
}

// RecallContext busca las memorias mas relevantes al mensaje actual y las
// devuelve como texto listo para el prompt. Vacio si no hay nada util.
func (s *MemoryService) RecallContext(ctx context.Context, kidID, message string, k int) (string, error) {
	kidUUID, err := uuid.Parse(kidID)
	if err != nil {
		return "", fmt.Errorf("parse kid id: %w", err)
	}

	embed, err := s.llmClient.CreateEmbedding(ctx, message)
	if err != nil {
		return "", fmt.Errorf("create embedding: %w", err)
	}

	memories, err := s.memories.Search(ctx, kidUUID, pgvector.NewVector(embed), k)
	if err != nil {
		return "", fmt.Errorf("search memories: %w", err)
	}
	if len(memories) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, m := range memories {
		sb.WriteString(fmt.Sprintf("- [%s] %s\n", m.Category, m.Content))
	}
	return sb.String(), nil
}

func parseMemoryExtraction(raw string) (domain.MemoryExtraction, error) {
	cleaned := cleanLLMJSONResponse(raw)
	jsonText := extractFirstJSONObject(cleaned)
	if jsonText == "" {
		return domain.MemoryExtraction{}, fmt.Errorf("no json object in llm output")
	}

	var extraction domain.MemoryExtraction
	if err := json.Unmarshal([]byte(jsonText), &extraction); err != nil {
		return domain.MemoryExtraction{}, err
	}
	return extraction, nil
}
