package service

import (
	"fmt"
	"strings"

	"kidpal/internal/domain"
)

// DescribePersonality arma la descripcion textual que consume el prompt.
// Es deterministica para que la cache sea coherente.
func DescribePersonality(traits domain.TraitVector, friendship domain.FriendshipState) string {
	var sb strings.Builder

	sb.WriteString(describeTrait("humor", traits.Humor, "serious", "playful", "a total jokester"))
	sb.WriteString(describeTrait("energy", traits.Energy, "calm", "upbeat", "bursting with energy"))
	sb.WriteString(describeTrait("curiosity", traits.Curiosity, "focused", "curious", "endlessly curious"))
	sb.WriteString(describeTrait("formality", traits.Formality, "casual and relaxed", "polite", "very proper"))

	sb.WriteString(fmt.Sprintf("Friendship level: %d/%d after %d conversations.\n",
		friendship.Level, MaxFriendshipLevel, friendship.TotalConversations))
	if friendship.Catchphrase != "" {
		sb.WriteString(fmt.Sprintf("Signature catchphrase: %q.\n", friendship.Catchphrase))
	}

	return sb.String()
}

func describeTrait(name string, value float64, low, mid, high string) string {
	label := mid
	switch {
	case value < 0.35:
		label = low
	case value > 0.7:
		label = high
	}
	return fmt.Sprintf("- %s (%.2f): %s\n", name, value, label)
}
