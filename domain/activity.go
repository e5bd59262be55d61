package domain

import "time"

// ActivityKind names an engine event written to the activity ledger.
type ActivityKind string

const (
	ActivityGoalCompleted ActivityKind = "goal_completed"
	ActivityGoalReset     ActivityKind = "goal_reset"
	ActivityGoalAdded     ActivityKind = "goal_added"
	ActivityBalanceBonus  ActivityKind = "balance_bonus"
	ActivityStreakBonus   ActivityKind = "streak_bonus"
	ActivityLevelUp       ActivityKind = "level_up"
)

// ActivityEvent represents a change applied to a user's gamification state.
type ActivityEvent struct {
	ID         string            `json:"id"`
	Namespace  string            `json:"namespace"`
	Kind       ActivityKind      `json:"kind"`
	CategoryID int               `json:"category_id,omitempty"`
	GoalID     int               `json:"goal_id,omitempty"`
	Points     int               `json:"points"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Valid reports whether k is a known activity kind.
func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityGoalCompleted, ActivityGoalReset, ActivityGoalAdded,
		ActivityBalanceBonus, ActivityStreakBonus, ActivityLevelUp:
		return true
	}
	return false
}
