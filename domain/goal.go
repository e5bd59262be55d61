package domain

import (
	"strings"
	"time"
)

// Difficulty is the closed set of goal difficulties.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyNormal Difficulty = "Normal"
	DifficultyHard   Difficulty = "Hard"
)

var difficultyPoints = map[Difficulty]int{
	DifficultyEasy:   5,
	DifficultyNormal: 10,
	DifficultyHard:   20,
}

// ParseDifficulty maps free-form input onto a known difficulty.
// Matching ignores case and surrounding space; anything else is Normal.
func ParseDifficulty(raw string) Difficulty {
	raw = strings.TrimSpace(raw)
	for d := range difficultyPoints {
		if strings.EqualFold(raw, string(d)) {
			return d
		}
	}
	return DifficultyNormal
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	_, ok := difficultyPoints[d]
	return ok
}

// Points returns the reward for completing a goal of this difficulty.
func (d Difficulty) Points() int {
	if p, ok := difficultyPoints[d]; ok {
		return p
	}
	return difficultyPoints[DifficultyNormal]
}

// Goal is a single checkable task owned by a category.
type Goal struct {
	ID            int        `json:"Id"`
	Description   string     `json:"Description"`
	CategoryID    int        `json:"CategoryId"`
	IsCompleted   bool       `json:"IsCompleted"`
	CompletedDate *time.Time `json:"CompletedDate"`
	Points        int        `json:"Points"`
	Difficulty    Difficulty `json:"Difficulty"`
}

// CompletedOn reports whether the goal is completed on the calendar day of ref.
func (g *Goal) CompletedOn(ref time.Time) bool {
	if g == nil || !g.IsCompleted || g.CompletedDate == nil {
		return false
	}
	return SameDay(*g.CompletedDate, ref)
}
