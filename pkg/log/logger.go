package log

// Logger receives protocol events from connections, clients and brokers.
// Implementations must be safe for concurrent use; Log is called on the
// connection's goroutine, so it should return quickly.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Enabled reports whether l records anything. Callers skip building events
// for nil and NoopLogger.
func Enabled(l Logger) bool {
	switch l.(type) {
	case nil, NoopLogger, *NoopLogger:
		return false
	default:
		return true
	}
}
