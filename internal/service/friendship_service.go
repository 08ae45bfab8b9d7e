package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/repository"
)

// ConversationOutcome resume lo que produjo contar una conversacion.
type ConversationOutcome struct {
	TotalConversations int                  `json:"total_conversations"`
	OldLevel           int                  `json:"old_level"`
	NewLevel           int                  `json:"new_level"`
	LeveledUp          bool                 `json:"leveled_up"`
	Event              *domain.LevelUpEvent `json:"event,omitempty"`
	CatchphraseChosen  string               `json:"catchphrase_chosen,omitempty"`
}

// FriendshipService recalcula el nivel de amistad al cerrar cada
// conversacion y dispara los eventos de subida de nivel.
type FriendshipService struct {
	logger        *zap.Logger
	personalities repository.PersonalityRepository
	levelUps      *LevelUpService
	cache         DescriptionCache
}

func NewFriendshipService(
	logger *zap.Logger,
	personalities repository.PersonalityRepository,
	levelUps *LevelUpService,
	cache DescriptionCache,
) *FriendshipService {
	return &FriendshipService{
		logger:        logger,
		personalities: personalities,
		levelUps:      levelUps,
		cache:         cache,
	}
}

// RecordConversation suma una conversacion al contador con una sola
// sentencia atomica y deriva el cambio de nivel de ese par (viejo, nuevo).
// Con incrementos de a 1 la transicion cruza a lo sumo un nivel, y dos
// requests concurrentes nunca observan la misma transicion.
func (s *FriendshipService) RecordConversation(ctx context.Context, kidID string) (ConversationOutcome, error) {
	oldTotal, newTotal, err := s.personalities.IncrementConversations(ctx, kidID)
	if err != nil {
		return ConversationOutcome{}, fmt.Errorf("increment conversations: %w", err)
	}

	outcome := ConversationOutcome{
		TotalConversations: newTotal,
		OldLevel:           LevelForConversations(oldTotal),
		NewLevel:           LevelForConversations(newTotal),
	}
	outcome.LeveledUp = outcome.NewLevel > outcome.OldLevel

	if !outcome.LeveledUp {
		return outcome, nil
	}

	if err := s.personalities.SetLevel(ctx, kidID, outcome.NewLevel); err != nil {
		return outcome, fmt.Errorf("set level: %w", err)
	}

	// La entrada al nivel 3 es el unico momento en que los rasgos influyen
	// directamente en la progresion: se elige la catchphrase, una sola vez.
	if outcome.NewLevel == catchphraseLevel {
		if phrase, err := s.assignCatchphrase(ctx, kidID); err != nil {
			s.logger.Warn("assign catchphrase failed", zap.Error(err), zap.String("kid_id", kidID))
		} else {
			outcome.CatchphraseChosen = phrase
		}
	}

	event, err := s.levelUps.CreateForTransition(ctx, kidID, outcome.OldLevel, outcome.NewLevel, newTotal)
	if err != nil {
		return outcome, err
	}
	outcome.Event = &event

	if s.cache != nil {
		s.cache.Invalidate(ctx, kidID)
	}
	return outcome, nil
}

// assignCatchphrase elige segun el rasgo dominante y la fija solo si no
// habia una. Devuelve vacio si alguien se adelanto.
func (s *FriendshipService) assignCatchphrase(ctx context.Context, kidID string) (string, error) {
	p, err := s.personalities.GetByKidID(ctx, kidID)
	if err != nil {
		return "", fmt.Errorf("get personality: %w", err)
	}
	if p.Friendship.Catchphrase != "" {
		return "", nil
	}

	phrase := ChooseCatchphrase(p.Traits)
	assigned, err := s.personalities.SetCatchphraseIfEmpty(ctx, kidID, phrase)
	if err != nil {
		return "", fmt.Errorf("set catchphrase: %w", err)
	}
	if !assigned {
		return "", nil
	}
	return phrase, nil
}
