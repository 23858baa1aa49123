package catalog

import "time"

// Level is the severity of the status indicator.
type Level string

const (
	LevelPending Level = "pending"
	LevelOK      Level = "ok"
	LevelError   Level = "error"
)

// Status is the backend connectivity indicator shown by front ends.
type Status struct {
	Online    bool
	Level     Level
	Message   string
	UpdatedAt time.Time
}

// Status messages.
const (
	msgConnecting    = "Connecting to backend..."
	msgOfflineMode   = "Offline mode, backend sync disabled"
	msgLocalMode     = "Backend not detected, running in local mode"
	msgTagsSynced    = "Connected to backend · tags updated"
	msgTagsFailed    = "Tags not synced: backend unavailable"
	msgPersisted     = "Synced to backend"
	msgPersistFailed = "Could not sync to backend, kept local playback"
	msgDeleted       = "Deleted from backend"
	msgDeleteFailed  = "Delete not synced: backend unavailable"
)
