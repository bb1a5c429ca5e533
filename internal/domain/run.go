package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunInfo identifies one pipeline pass. It travels next to the report rather
// than inside it so that identical input always yields an identical table.
type RunInfo struct {
	ID        string    `json:"run_id" msgpack:"run_id"`
	StartedAt time.Time `json:"started_at" msgpack:"started_at"`
}

// NewRunInfo stamps a new run with a random ID and the current clock time.
func NewRunInfo() RunInfo {
	return RunInfo{
		ID:        uuid.NewString(),
		StartedAt: clock.Now().UTC(),
	}
}
