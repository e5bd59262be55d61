package transport

import (
	"encoding/json"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response, successful or not.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewError builds an error envelope; details, when present, travel in Meta.
func NewError(code string, err interface{}, details interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: err, Meta: details}
}

// String returns the JSON form for log lines.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// CompletionResponse reports what completing a goal awarded.
type CompletionResponse struct {
	Applied      bool `json:"applied"`
	GoalPoints   int  `json:"goal_points"`
	StreakBonus  int  `json:"streak_bonus"`
	BalanceBonus bool `json:"balance_bonus"`
	LeveledUp    bool `json:"leveled_up"`
	Level        int  `json:"level"`
	TotalPoints  int  `json:"total_points"`
}

type ResetResponse struct {
	Reset       bool `json:"reset"`
	TotalPoints int  `json:"total_points"`
}

type BufferHealth struct {
	Online bool `json:"online"`
	Size   int  `json:"size"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Timestamp   time.Time       `json:"timestamp"`
	LastCheck   time.Time       `json:"last_check"`
	Services    map[string]bool `json:"services"`
	StorageMode string          `json:"storage_mode"`
	Buffer      BufferHealth    `json:"buffer"`
}
