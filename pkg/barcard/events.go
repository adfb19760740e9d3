package barcard

import "time"

// Status describes an Engine.
type Status struct {
	// ConfigSource is the card file path, or "reader" / "embedded:<path>".
	ConfigSource string
	// Bars is the number of configured bars.
	Bars int
	// Watching reports whether file changes trigger reloads.
	Watching bool
	// LastReload is when the configuration was last (re)loaded.
	LastReload time.Time
	// LastError is the most recent error reported to the error handler.
	LastError error
}

// ErrorHandler is a callback for runtime errors such as failed reloads.
// It is called asynchronously; do not block in the handler.
type ErrorHandler func(err error)

// EventHandler is a callback for lifecycle events.
// It is called asynchronously; do not block in the handler.
type EventHandler func(event Event)

// Event represents a lifecycle event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
}

// EventType enumerates lifecycle event types.
type EventType int

const (
	// EventConfigReloaded is emitted after a successful reload.
	EventConfigReloaded EventType = iota
	// EventWatchStarted is emitted when file watching begins.
	EventWatchStarted
	// EventWatchStopped is emitted when file watching ends.
	EventWatchStopped
	// EventError is emitted when a recoverable error occurs.
	EventError
)

// String returns a human-readable representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventConfigReloaded:
		return "config_reloaded"
	case EventWatchStarted:
		return "watch_started"
	case EventWatchStopped:
		return "watch_stopped"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
