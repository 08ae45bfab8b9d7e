package domain

import "time"

// LevelUpEvent es el registro inmutable de una transicion de nivel de
// amistad. Se crea a lo sumo una vez por par (old_level, new_level) y
// por nino; Acknowledged pasa de false a true exactamente una vez.
type LevelUpEvent struct {
	ID              string     `json:"id"`
	KidID           string     `json:"kid_id"`
	OldLevel        int        `json:"old_level"`
	NewLevel        int        `json:"new_level"`
	TotalAtTime     int        `json:"total_conversations_at_time"`
	PointsEarned    int        `json:"points_earned"`
	Rewards         []string   `json:"rewards"`
	CelebrationText string     `json:"celebration_text"`
	Acknowledged    bool       `json:"acknowledged"`
	AcknowledgedAt  *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
