// Package events stores engine facts in a transactional outbox for
// downstream consumers (notification fan-out stays out of process).
package events

// Engine event types written to the eco_events outbox.
const (
	EventActivityLogged  = "activity.logged"
	EventActivityUpdated = "activity.updated"
	EventActivityDeleted = "activity.deleted"
	EventBadgeUnlocked   = "badge.unlocked"
)

// ActivityPayload captures the minimal data needed to follow a ledger change.
type ActivityPayload struct {
	EntryID   string  `json:"entry_id"`
	UserID    string  `json:"user_id"`
	Category  string  `json:"category,omitempty"`
	Co2Kg     float64 `json:"co2_kg,omitempty"`
	EcoPoints int64   `json:"eco_points,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ActivityPayload) ToMap() map[string]any {
	payload := map[string]any{
		"entry_id": p.EntryID,
		"user_id":  p.UserID,
	}
	if p.Category != "" {
		payload["category"] = p.Category
	}
	if p.Co2Kg != 0 {
		payload["co2_kg"] = p.Co2Kg
	}
	if p.EcoPoints != 0 {
		payload["eco_points"] = p.EcoPoints
	}
	return payload
}

// BadgePayload captures a badge unlock fact.
type BadgePayload struct {
	UserID      string `json:"user_id"`
	BadgeID     string `json:"badge_id"`
	BonusPoints int64  `json:"bonus_points"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p BadgePayload) ToMap() map[string]any {
	return map[string]any{
		"user_id":      p.UserID,
		"badge_id":     p.BadgeID,
		"bonus_points": p.BonusPoints,
	}
}
