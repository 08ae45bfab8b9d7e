package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/repository"
)

/*
========================
 Tabla de recompensas
========================
*/

// Recompensas NUEVAS que otorga cada nivel. El conjunto acumulado es
// monotono: ningun nivel otorga menos que la union de los anteriores.
var levelRewards = map[int][]string{
	2:  {"sticker_pack_basic"},
	3:  {"catchphrase", "pun_mode"},
	4:  {"daily_fun_fact"},
	5:  {"empathy_mode", "sticker_pack_silly"},
	6:  {"story_time"},
	7:  {"extended_memory", "sticker_pack_rare"},
	8:  {"inside_jokes"},
	9:  {"adventure_mode"},
	10: {"best_friend_badge", "sticker_pack_legendary"},
}

// Texto de celebracion por nivel; se completa con los perks del nivel.
var levelCelebrations = map[int]string{
	2:  "We're officially pals now!",
	3:  "Level 3! I even picked a catchphrase just for us!",
	4:  "Level 4! Get ready for a fun fact every day!",
	5:  "Level 5! I can tell how you're feeling now!",
	6:  "Level 6! Story time unlocked, pick a hero!",
	7:  "Level 7! I'll remember even more of our adventures!",
	8:  "Level 8! We've got our own inside jokes now!",
	9:  "Level 9! Adventure mode is ON!",
	10: "Level 10! You're my best friend in the whole world!",
}

// CumulativeRewards devuelve la union de recompensas hasta el nivel dado,
// en orden de nivel.
func CumulativeRewards(level int) []string {
	out := []string{}
	for l := 2; l <= level && l <= MaxFriendshipLevel; l++ {
		out = append(out, levelRewards[l]...)
	}
	return out
}

// CelebrationText arma el texto final: plantilla del nivel + perks.
func CelebrationText(level int) string {
	base, ok := levelCelebrations[level]
	if !ok {
		base = fmt.Sprintf("We reached friendship level %d!", level)
	}
	perks := levelRewards[level]
	if len(perks) == 0 {
		return base
	}
	return fmt.Sprintf("%s You unlocked: %s.", base, strings.Join(perks, ", "))
}

/*
========================
 Servicio
========================
*/

var ErrLevelUpEventNotFound = errors.New("level up event not found")

// LevelUpService crea y administra los eventos de subida de nivel.
// No deduplica creaciones: el caller debe derivar "subio de nivel" de un
// read-then-write atomico del contador; el indice unico de la tabla es el
// respaldo final.
type LevelUpService struct {
	logger *zap.Logger
	events repository.LevelUpEventRepository
}

func NewLevelUpService(logger *zap.Logger, events repository.LevelUpEventRepository) *LevelUpService {
	return &LevelUpService{logger: logger, events: events}
}

// CreateForTransition registra el evento inmutable de una transicion.
func (s *LevelUpService) CreateForTransition(ctx context.Context, kidID string, oldLevel, newLevel, totalAtTime int) (domain.LevelUpEvent, error) {
	event := domain.LevelUpEvent{
		ID:              uuid.NewString(),
		KidID:           kidID,
		OldLevel:        oldLevel,
		NewLevel:        newLevel,
		TotalAtTime:     totalAtTime,
		PointsEarned:    pointsForTransition(oldLevel, newLevel),
		Rewards:         append([]string(nil), levelRewards[newLevel]...),
		CelebrationText: CelebrationText(newLevel),
		Acknowledged:    false,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.events.Create(ctx, event); err != nil {
		return domain.LevelUpEvent{}, fmt.Errorf("create level up event: %w", err)
	}

	s.logger.Info("level up",
		zap.String("kid_id", kidID),
		zap.Int("old_level", oldLevel),
		zap.Int("new_level", newLevel),
	)
	return event, nil
}

// Acknowledge marca un evento como visto. Reconocer dos veces no es error:
// la segunda llamada devuelve el evento ya reconocido sin tocar
// acknowledged_at.
func (s *LevelUpService) Acknowledge(ctx context.Context, eventID string) (domain.LevelUpEvent, error) {
	updated, err := s.events.Acknowledge(ctx, eventID, time.Now().UTC())
	if err != nil {
		return domain.LevelUpEvent{}, fmt.Errorf("acknowledge event: %w", err)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LevelUpEvent{}, ErrLevelUpEventNotFound
		}
		return domain.LevelUpEvent{}, fmt.Errorf("get event: %w", err)
	}

	if !updated {
		s.logger.Debug("event already acknowledged", zap.String("event_id", eventID))
	}
	return event, nil
}

// AcknowledgeAll reconoce todos los pendientes del nino, del mas viejo al
// mas nuevo.
func (s *LevelUpService) AcknowledgeAll(ctx context.Context, kidID string) ([]domain.LevelUpEvent, error) {
	pending, err := s.events.ListUnacknowledged(ctx, kidID)
	if err != nil {
		return nil, fmt.Errorf("list unacknowledged: %w", err)
	}

	acked := make([]domain.LevelUpEvent, 0, len(pending))
	for _, e := range pending {
		event, err := s.Acknowledge(ctx, e.ID)
		if err != nil {
			return acked, err
		}
		acked = append(acked, event)
	}
	return acked, nil
}

// Unacknowledged devuelve los eventos pendientes, el mas viejo primero.
// Nunca devuelve slice nil: la lista vacia serializa como [].
func (s *LevelUpService) Unacknowledged(ctx context.Context, kidID string) ([]domain.LevelUpEvent, error) {
	events, err := s.events.ListUnacknowledged(ctx, kidID)
	if err != nil {
		return nil, fmt.Errorf("list unacknowledged: %w", err)
	}
	if events == nil {
		events = []domain.LevelUpEvent{}
	}
	return events, nil
}

// ShouldShowCelebration devuelve el evento pendiente mas viejo, si hay.
func (s *LevelUpService) ShouldShowCelebration(ctx context.Context, kidID string) (domain.LevelUpEvent, bool, error) {
	pending, err := s.events.ListUnacknowledged(ctx, kidID)
	if err != nil {
		return domain.LevelUpEvent{}, false, err
	}
	if len(pending) == 0 {
		return domain.LevelUpEvent{}, false, nil
	}
	return pending[0], true, nil
}

// pointsForTransition son las conversaciones que separan ambos umbrales.
func pointsForTransition(oldLevel, newLevel int) int {
	if oldLevel < 1 || newLevel > len(levelThresholds) || newLevel <= oldLevel {
		return 0
	}
	return levelThresholds[newLevel-1] - levelThresholds[oldLevel-1]
}
