package models

import "time"

// Event represents a loggable action in the system.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`  // e.g., "dump.create", "sweep.purge"
	Level   string `json:"level"` // e.g., "info", "warn", "error"
	Message string `json:"message"`
	// DumpPublicID is nil for events not tied to a single dump.
	DumpPublicID *string   `json:"dumpPublicId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
