package service

import (
	"testing"

	"kidpal/internal/domain"
)

func TestLevelForConversationsBoundaries(t *testing.T) {
	cases := []struct {
		total int
		level int
	}{
		{-5, 1},
		{0, 1},
		{5, 1},
		{6, 2},
		{10, 2},
		{11, 3},
		{20, 3},
		{21, 4},
		{30, 4},
		{31, 5},
		{45, 5},
		{46, 6},
		{60, 6},
		{61, 7},
		{80, 7},
		{81, 8},
		{100, 8},
		{101, 9},
		{150, 9},
		{151, 10},
		{1000, 10},
	}
	for _, tc := range cases {
		if got := LevelForConversations(tc.total); got != tc.level {
			t.Fatalf("total %d: expected level %d, got %d", tc.total, tc.level, got)
		}
	}
}

func TestLevelForConversationsMonotonic(t *testing.T) {
	prev := 0
	for total := 0; total <= 200; total++ {
		level := LevelForConversations(total)
		if level < prev {
			t.Fatalf("level decreased at total %d: %d -> %d", total, prev, level)
		}
		if level < 1 || level > MaxFriendshipLevel {
			t.Fatalf("level %d out of range at total %d", level, total)
		}
		prev = level
	}
}

func TestChooseCatchphraseDominantTrait(t *testing.T) {
	contains := func(set []string, phrase string) bool {
		for _, p := range set {
			if p == phrase {
				return true
			}
		}
		return false
	}

	cases := []struct {
		name   string
		traits domain.TraitVector
		set    []string
	}{
		{
			name:   "humor dominates",
			traits: domain.TraitVector{Humor: 0.8, Energy: 0.9, Curiosity: 0.9, Formality: 0.9},
			set:    humorCatchphrases,
		},
		{
			name:   "energy next",
			traits: domain.TraitVector{Humor: 0.5, Energy: 0.8, Curiosity: 0.9, Formality: 0.9},
			set:    energyCatchphrases,
		},
		{
			name:   "curiosity next",
			traits: domain.TraitVector{Humor: 0.5, Energy: 0.5, Curiosity: 0.75, Formality: 0.9},
			set:    curiosityCatchphrases,
		},
		{
			name:   "formality uses lower threshold",
			traits: domain.TraitVector{Humor: 0.5, Energy: 0.5, Curiosity: 0.5, Formality: 0.65},
			set:    formalCatchphrases,
		},
		{
			name:   "default is casual",
			traits: domain.DefaultTraitVector(),
			set:    casualCatchphrases,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				phrase := ChooseCatchphrase(tc.traits)
				if !contains(tc.set, phrase) {
					t.Fatalf("phrase %q not in expected set", phrase)
				}
			}
		})
	}
}
