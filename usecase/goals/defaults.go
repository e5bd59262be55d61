package goals

import (
	"strings"
	"time"

	"github.com/fastygo/lifetrack/domain"
)

type categoryStyle struct {
	icon  string
	color string
}

var (
	categoryStyles = map[string]categoryStyle{
		"career":               {icon: "bi-briefcase", color: "#4285F4"},
		"education":            {icon: "bi-book", color: "#34A853"},
		"health":               {icon: "bi-heart", color: "#EA4335"},
		"finance":              {icon: "bi-cash-coin", color: "#FBBC05"},
		"personal development": {icon: "bi-person-plus", color: "#9C27B0"},
	}
	fallbackStyle = categoryStyle{icon: "bi-check-circle", color: "#607D8B"}
)

func styleFor(name string) categoryStyle {
	if style, ok := categoryStyles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return style
	}
	return fallbackStyle
}

type defaultGoal struct {
	description string
	points      int
	difficulty  domain.Difficulty
}

var defaultDataset = []struct {
	name  string
	goals []defaultGoal
}{
	{"Career", []defaultGoal{
		{"Apply for one job", 10, domain.DifficultyNormal},
		{"Update LinkedIn profile", 5, domain.DifficultyEasy},
		{"Learn one new professional skill", 20, domain.DifficultyHard},
	}},
	{"Education", []defaultGoal{
		{"Read 20 pages of a book", 10, domain.DifficultyNormal},
		{"Watch one educational video", 5, domain.DifficultyEasy},
		{"Practice a language for 15 minutes", 10, domain.DifficultyNormal},
	}},
	{"Health", []defaultGoal{
		{"Exercise for 30 minutes", 15, domain.DifficultyNormal},
		{"Drink 8 glasses of water", 5, domain.DifficultyEasy},
		{"Meditate for 10 minutes", 10, domain.DifficultyNormal},
	}},
	{"Finance", []defaultGoal{
		{"Track daily expenses", 5, domain.DifficultyEasy},
		{"Save 10% of income", 20, domain.DifficultyHard},
		{"Review budget once a week", 10, domain.DifficultyNormal},
	}},
	{"Personal Development", []defaultGoal{
		{"Journal for 5 minutes", 5, domain.DifficultyEasy},
		{"Practice a hobby for 15 minutes", 10, domain.DifficultyNormal},
		{"Connect with a friend or family member", 10, domain.DifficultyNormal},
	}},
}

// DefaultCategories builds the built-in dataset: five categories with three
// goals each, goal ids numbered 1 to 15 across categories.
func DefaultCategories(now time.Time) []domain.Category {
	categories := make([]domain.Category, 0, len(defaultDataset))
	goalID := 1
	for i, entry := range defaultDataset {
		category := newCategory(i+1, entry.name, now)
		for _, g := range entry.goals {
			category.Goals = append(category.Goals, domain.Goal{
				ID:          goalID,
				Description: g.description,
				CategoryID:  category.ID,
				Points:      g.points,
				Difficulty:  g.difficulty,
			})
			goalID++
		}
		categories = append(categories, category)
	}
	return categories
}

// newCategory starts a category with its last completion two days back, so
// the first completion opens a fresh streak.
func newCategory(id int, name string, now time.Time) domain.Category {
	style := styleFor(name)
	return domain.Category{
		ID:                id,
		Name:              name,
		Icon:              style.icon,
		Color:             style.color,
		Goals:             []domain.Goal{},
		LastCompletedDate: now.AddDate(0, 0, -2),
	}
}
