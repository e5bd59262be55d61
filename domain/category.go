package domain

import "time"

// Category groups goals and tracks its own daily completion streak.
type Category struct {
	ID                int       `json:"Id"`
	Name              string    `json:"Name"`
	Icon              string    `json:"Icon"`
	Color             string    `json:"Color"`
	Goals             []Goal    `json:"Goals"`
	CompletionStreak  int       `json:"CompletionStreak"`
	LastCompletedDate time.Time `json:"LastCompletedDate"`
}

// Goal returns a pointer into the category's goal list.
func (c *Category) Goal(id int) *Goal {
	if c == nil {
		return nil
	}
	for i := range c.Goals {
		if c.Goals[i].ID == id {
			return &c.Goals[i]
		}
	}
	return nil
}

// NextGoalID returns max(id)+1, or 1 for an empty category.
func (c *Category) NextGoalID() int {
	next := 1
	for _, g := range c.Goals {
		if g.ID >= next {
			next = g.ID + 1
		}
	}
	return next
}

// CompletedOn counts goals completed on the calendar day of ref.
func (c *Category) CompletedOn(ref time.Time) int {
	var n int
	for i := range c.Goals {
		if c.Goals[i].CompletedOn(ref) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand out to callers.
func (c Category) Clone() Category {
	out := c
	out.Goals = make([]Goal, len(c.Goals))
	for i, g := range c.Goals {
		if g.CompletedDate != nil {
			t := *g.CompletedDate
			g.CompletedDate = &t
		}
		out.Goals[i] = g
	}
	return out
}
