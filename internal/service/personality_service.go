package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/repository"
)

// BatchAdjustResult reporta que paso con cada ajuste de un lote: los
// invalidos se rechazan individualmente sin abortar los demas.
type BatchAdjustResult struct {
	Applied []Adjustment       `json:"applied"`
	Skipped []domain.TraitName `json:"skipped,omitempty"`
}

// PersonalityService coordina lecturas y escrituras de la personalidad.
// Toda escritura invalida la cache de descripcion: un nivel o rasgo nuevo
// tiene que ser visible de inmediato.
type PersonalityService struct {
	logger        *zap.Logger
	personalities repository.PersonalityRepository
	adjuster      TraitAdjuster
	cache         DescriptionCache
}

func NewPersonalityService(
	logger *zap.Logger,
	personalities repository.PersonalityRepository,
	cache DescriptionCache,
) *PersonalityService {
	return &PersonalityService{
		logger:        logger,
		personalities: personalities,
		cache:         cache,
	}
}

// InitForKid crea el registro de personalidad con los defaults.
func (s *PersonalityService) InitForKid(ctx context.Context, kidID string) (domain.Personality, error) {
	now := time.Now().UTC()
	p := domain.Personality{
		ID:     uuid.NewString(),
		KidID:  kidID,
		Traits: domain.DefaultTraitVector(),
		Friendship: domain.FriendshipState{
			Level:              1,
			TotalConversations: 0,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.personalities.Create(ctx, p); err != nil {
		return domain.Personality{}, fmt.Errorf("create personality: %w", err)
	}
	return p, nil
}

func (s *PersonalityService) Get(ctx context.Context, kidID string) (domain.Personality, error) {
	return s.personalities.GetByKidID(ctx, kidID)
}

// AdjustTraits aplica un lote de deltas. Validacion independiente por
// ajuste (un nombre invalido se salta y se reporta, no aborta el lote);
// la persistencia de los validos es un solo commit.
func (s *PersonalityService) AdjustTraits(ctx context.Context, kidID string, deltas []TraitDelta) (BatchAdjustResult, error) {
	p, err := s.personalities.GetByKidID(ctx, kidID)
	if err != nil {
		return BatchAdjustResult{}, fmt.Errorf("get personality: %w", err)
	}

	var result BatchAdjustResult
	for _, d := range deltas {
		adj, err := s.adjuster.Adjust(&p.Traits, d.Trait, d.Delta, AdjustDelta)
		if err != nil {
			if errors.Is(err, ErrInvalidTraitName) {
				s.logger.Warn("skipping invalid trait adjustment",
					zap.String("kid_id", kidID),
					zap.String("trait", string(d.Trait)),
				)
				result.Skipped = append(result.Skipped, d.Trait)
				continue
			}
			return result, err
		}
		result.Applied = append(result.Applied, adj)
	}

	if len(result.Applied) == 0 {
		return result, nil
	}

	if err := s.personalities.SaveTraits(ctx, kidID, p.Traits); err != nil {
		return result, fmt.Errorf("save traits: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, kidID)
	}

	for _, adj := range result.Applied {
		s.logger.Debug("trait adjusted",
			zap.String("kid_id", kidID),
			zap.String("trait", string(adj.Trait)),
			zap.Float64("old", adj.OldValue),
			zap.Float64("new", adj.NewValue),
			zap.Float64("actual_change", adj.ActualChange),
		)
	}
	return result, nil
}

// ApplyConversationDrift traduce las metricas del turno a deltas acotados
// y los aplica.
func (s *PersonalityService) ApplyConversationDrift(ctx context.Context, kidID string, metrics domain.ConversationMetrics) (BatchAdjustResult, error) {
	return s.AdjustTraits(ctx, kidID, DriftFromMetrics(metrics))
}

// ResetTraits restaura los cuatro rasgos a sus defaults documentados.
func (s *PersonalityService) ResetTraits(ctx context.Context, kidID string) (domain.TraitVector, error) {
	traits := domain.DefaultTraitVector()
	if err := s.personalities.SaveTraits(ctx, kidID, traits); err != nil {
		return domain.TraitVector{}, fmt.Errorf("save traits: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, kidID)
	}
	return traits, nil
}

// Describe devuelve la descripcion textual de la personalidad, cacheada.
func (s *PersonalityService) Describe(ctx context.Context, kidID string) (string, error) {
	if s.cache != nil {
		if desc, ok := s.cache.Get(ctx, kidID); ok {
			return desc, nil
		}
	}

	p, err := s.personalities.GetByKidID(ctx, kidID)
	if err != nil {
		return "", fmt.Errorf("get personality: %w", err)
	}

	desc := DescribePersonality(p.Traits, p.Friendship)
	if s.cache != nil {
		s.cache.Set(ctx, kidID, desc)
	}
	return desc, nil
}
