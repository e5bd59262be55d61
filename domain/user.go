package domain

import "time"

// DefaultUsername is the placeholder name given to freshly created profiles.
const DefaultUsername = "User"

// User is the single gamification profile of one identity namespace.
type User struct {
	ID                   int            `json:"Id"`
	Username             string         `json:"Username"`
	ObjectID             string         `json:"ObjectId"`
	Email                string         `json:"Email"`
	TotalPoints          int            `json:"TotalPoints"`
	Level                int            `json:"Level"`
	BalanceBonus         int            `json:"BalanceBonus"`
	ConsistencyStreak    int            `json:"ConsistencyStreak"`
	LastActiveDate       time.Time      `json:"LastActiveDate"`
	LastBalanceBonusDate *time.Time     `json:"LastBalanceBonusDate,omitempty"`
	CategoryCompletions  map[string]int `json:"CategoryCompletions"`
}

// NewDefaultUser builds the profile created on first run.
func NewDefaultUser(now time.Time) *User {
	return &User{
		ID:                  1,
		Username:            DefaultUsername,
		Level:               1,
		LastActiveDate:      now,
		CategoryCompletions: map[string]int{},
	}
}

// LevelFor returns the level implied by a point total.
func LevelFor(points int) int {
	if points < 0 {
		return 1
	}
	return 1 + points/100
}

// HasCustomName reports whether the username was set by the user.
func (u *User) HasCustomName() bool {
	return u != nil && u.Username != "" && u.Username != DefaultUsername
}

// Clone returns a deep copy of the profile.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.LastBalanceBonusDate != nil {
		t := *u.LastBalanceBonusDate
		out.LastBalanceBonusDate = &t
	}
	out.CategoryCompletions = make(map[string]int, len(u.CategoryCompletions))
	for k, v := range u.CategoryCompletions {
		out.CategoryCompletions[k] = v
	}
	return &out
}
