package service

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestFeatureGateIsUnlocked(t *testing.T) {
	gate := NewFeatureGate(zap.NewNop())

	if gate.IsUnlocked("pun_mode", 2) {
		t.Fatalf("pun_mode should be locked at level 2")
	}
	if !gate.IsUnlocked("pun_mode", 3) {
		t.Fatalf("pun_mode should unlock at level 3")
	}
	if !gate.IsUnlocked("pun_mode", 10) {
		t.Fatalf("pun_mode should stay unlocked above its level")
	}

	// Desconocido: bloqueado, sin error.
	if gate.IsUnlocked("time_travel", 10) {
		t.Fatalf("unknown feature must stay locked")
	}
}

func TestFeatureGateStrictMode(t *testing.T) {
	gate := NewFeatureGate(zap.NewNop())

	unlocked, err := gate.IsUnlockedStrict("story_time", 6)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !unlocked {
		t.Fatalf("story_time should unlock at level 6")
	}

	_, err = gate.IsUnlockedStrict("time_travel", 10)
	if !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature, got %v", err)
	}
}

func TestFeatureGateUnlockedFeatures(t *testing.T) {
	gate := NewFeatureGate(zap.NewNop())

	if got := gate.UnlockedFeatures(1); len(got) != 0 {
		t.Fatalf("level 1 unlocks nothing, got %v", got)
	}

	got := gate.UnlockedFeatures(3)
	want := map[string]bool{"sticker_pack_basic": true, "catchphrase": true, "pun_mode": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d features at level 3, got %v", len(want), got)
	}
	for _, f := range got {
		if !want[f] {
			t.Fatalf("unexpected feature %q at level 3", f)
		}
	}
}

func TestFeatureGateGateMessage(t *testing.T) {
	gate := NewFeatureGate(zap.NewNop())

	msg := gate.GateMessage("pun_mode", 2)
	if !strings.Contains(msg, "Just one more friendship level") {
		t.Fatalf("expected singular message one level away, got %q", msg)
	}

	msg = gate.GateMessage("adventure_mode", 2)
	if !strings.Contains(msg, "level 9") || !strings.Contains(msg, "7 more levels") {
		t.Fatalf("expected plural message with counts, got %q", msg)
	}

	msg = gate.GateMessage("pun_mode", 5)
	if !strings.Contains(msg, "already unlocked") {
		t.Fatalf("expected already unlocked message, got %q", msg)
	}

	msg = gate.GateMessage("time_travel", 5)
	if !strings.Contains(msg, "not something I know") {
		t.Fatalf("expected unknown feature message, got %q", msg)
	}
}
