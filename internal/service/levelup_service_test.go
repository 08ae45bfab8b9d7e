package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"kidpal/internal/domain"
)

type mockLevelUpRepo struct {
	events map[string]domain.LevelUpEvent
	order  []string
}

func newMockLevelUpRepo() *mockLevelUpRepo {
	return &mockLevelUpRepo{events: make(map[string]domain.LevelUpEvent)}
}

func (m *mockLevelUpRepo) Create(_ context.Context, event domain.LevelUpEvent) error {
	m.events[event.ID] = event
	m.order = append(m.order, event.ID)
	return nil
}

func (m *mockLevelUpRepo) GetByID(_ context.Context, id string) (domain.LevelUpEvent, error) {
	event, ok := m.events[id]
	if !ok {
		return domain.LevelUpEvent{}, pgx.ErrNoRows
	}
	return event, nil
}

func (m *mockLevelUpRepo) ListUnacknowledged(_ context.Context, kidID string) ([]domain.LevelUpEvent, error) {
	var out []domain.LevelUpEvent
	for _, id := range m.order {
		e := m.events[id]
		if e.KidID == kidID && !e.Acknowledged {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockLevelUpRepo) Acknowledge(_ context.Context, id string, at time.Time) (bool, error) {
	event, ok := m.events[id]
	if !ok || event.Acknowledged {
		return false, nil
	}
	event.Acknowledged = true
	event.AcknowledgedAt = &at
	m.events[id] = event
	return true, nil
}

func TestCumulativeRewardsMonotonic(t *testing.T) {
	prev := 0
	for level := 1; level <= MaxFriendshipLevel; level++ {
		rewards := CumulativeRewards(level)
		if len(rewards) < prev {
			t.Fatalf("rewards shrank at level %d", level)
		}
		prev = len(rewards)
	}

	all := CumulativeRewards(MaxFriendshipLevel)
	want := map[string]bool{
		"catchphrase":       true,
		"pun_mode":          true,
		"empathy_mode":      true,
		"extended_memory":   true,
		"best_friend_badge": true,
	}
	for _, r := range all {
		delete(want, r)
	}
	if len(want) != 0 {
		t.Fatalf("missing rewards at max level: %v", want)
	}
}

func TestCumulativeRewardsEmptyIsNotNil(t *testing.T) {
	// Nivel 1 no desbloquea nada, pero la lista debe serializar como [].
	got := CumulativeRewards(1)
	if got == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected no rewards at level 1, got %v", got)
	}
}

func TestCreateForTransitionCopiesRewards(t *testing.T) {
	repo := newMockLevelUpRepo()
	svc := NewLevelUpService(zap.NewNop(), repo)

	event, err := svc.CreateForTransition(context.Background(), "kid-1", 2, 3, 11)
	if err != nil {
		t.Fatalf("CreateForTransition: %v", err)
	}
	if len(event.Rewards) == 0 {
		t.Fatalf("expected rewards for level 3")
	}

	event.Rewards[0] = "mutated"

	again, err := svc.CreateForTransition(context.Background(), "kid-2", 2, 3, 11)
	if err != nil {
		t.Fatalf("CreateForTransition: %v", err)
	}
	for _, r := range again.Rewards {
		if r == "mutated" {
			t.Fatalf("mutating an event leaked into the reward table")
		}
	}
}

func TestCelebrationTextIncludesPerks(t *testing.T) {
	text := CelebrationText(3)
	if !strings.Contains(text, "You unlocked:") {
		t.Fatalf("expected perks in text, got %q", text)
	}
	if !strings.Contains(text, "pun_mode") {
		t.Fatalf("expected pun_mode in text, got %q", text)
	}

	// Un nivel sin plantilla cae en el texto generico.
	text = CelebrationText(1)
	if !strings.Contains(text, "level 1") {
		t.Fatalf("expected generic text, got %q", text)
	}
}

func TestLevelUpServiceCreateForTransition(t *testing.T) {
	repo := newMockLevelUpRepo()
	svc := NewLevelUpService(zap.NewNop(), repo)

	event, err := svc.CreateForTransition(context.Background(), "kid-1", 2, 3, 11)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if event.OldLevel != 2 || event.NewLevel != 3 {
		t.Fatalf("expected transition 2->3, got %d->%d", event.OldLevel, event.NewLevel)
	}
	if event.Acknowledged {
		t.Fatalf("new event must start unacknowledged")
	}
	if event.PointsEarned != 5 {
		t.Fatalf("expected 5 points for 2->3, got %d", event.PointsEarned)
	}
	if len(event.Rewards) != 2 {
		t.Fatalf("expected level 3 rewards, got %v", event.Rewards)
	}
}

func TestLevelUpServiceAcknowledgeIdempotent(t *testing.T) {
	repo := newMockLevelUpRepo()
	svc := NewLevelUpService(zap.NewNop(), repo)

	event, err := svc.CreateForTransition(context.Background(), "kid-1", 1, 2, 6)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := svc.Acknowledge(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("first ack failed: %v", err)
	}
	if !first.Acknowledged || first.AcknowledgedAt == nil {
		t.Fatalf("expected acknowledged event")
	}

	second, err := svc.Acknowledge(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("second ack failed: %v", err)
	}
	if !second.Acknowledged {
		t.Fatalf("expected event to stay acknowledged")
	}
	if !second.AcknowledgedAt.Equal(*first.AcknowledgedAt) {
		t.Fatalf("second ack must not move acknowledged_at: %v vs %v", second.AcknowledgedAt, first.AcknowledgedAt)
	}
}

func TestLevelUpServiceAcknowledgeUnknownEvent(t *testing.T) {
	repo := newMockLevelUpRepo()
	svc := NewLevelUpService(zap.NewNop(), repo)

	_, err := svc.Acknowledge(context.Background(), "missing")
	if !errors.Is(err, ErrLevelUpEventNotFound) {
		t.Fatalf("expected ErrLevelUpEventNotFound, got %v", err)
	}
}

func TestLevelUpServicePendingOldestFirst(t *testing.T) {
	repo := newMockLevelUpRepo()
	svc := NewLevelUpService(zap.NewNop(), repo)

	ctx := context.Background()
	first, err := svc.CreateForTransition(ctx, "kid-1", 1, 2, 6)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// El mock ordena por CreatedAt; forzamos separacion temporal.
	e := repo.events[first.ID]
	e.CreatedAt = e.CreatedAt.Add(-time.Minute)
	repo.events[first.ID] = e

	second, err := svc.CreateForTransition(ctx, "kid-1", 2, 3, 11)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	pending, err := svc.Unacknowledged(ctx, "kid-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatalf("expected oldest first")
	}

	event, show, err := svc.ShouldShowCelebration(ctx, "kid-1")
	if err != nil {
		t.Fatalf("celebration failed: %v", err)
	}
	if !show || event.ID != first.ID {
		t.Fatalf("expected oldest pending event as celebration")
	}

	acked, err := svc.AcknowledgeAll(ctx, "kid-1")
	if err != nil {
		t.Fatalf("ack all failed: %v", err)
	}
	if len(acked) != 2 {
		t.Fatalf("expected 2 acked, got %d", len(acked))
	}

	_, show, err = svc.ShouldShowCelebration(ctx, "kid-1")
	if err != nil {
		t.Fatalf("celebration failed: %v", err)
	}
	if show {
		t.Fatalf("expected no pending celebration after ack all")
	}
}
