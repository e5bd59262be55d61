package monitor

import "time"

const (
	ProbeRemoteStorage = "remote_storage"
	ProbeCache         = "cache"
	ProbeLedger        = "ledger"
)

// Status is the last observed health of every dependency.
type Status struct {
	Dependencies map[string]bool `json:"dependencies"`
	Buffer       bool            `json:"buffer"`
	BufferSize   int             `json:"buffer_size"`
	LastCheck    time.Time       `json:"last_check"`
}

// Healthy reports whether the named dependency answered its last probe.
func (s Status) Healthy(name string) bool {
	return s.Dependencies[name]
}
