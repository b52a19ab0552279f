package event

import (
	"log/slog"
	"sync"
)

// Audit logs every event and keeps the most recent ones in memory.
type Audit struct {
	mu     sync.Mutex
	events []Event
	max    int
	logger *slog.Logger
}

// NewAudit creates an Audit that remembers up to limit events.
func NewAudit(logger *slog.Logger, limit int) *Audit {
	if limit <= 0 {
		limit = 100
	}
	return &Audit{max: limit, logger: logger.With(slog.String("component", "audit"))}
}

// Attach subscribes the audit trail to every event on bus.
func (a *Audit) Attach(bus *Bus) {
	bus.SubscribeAll(a.Record)
}

// Record logs e and appends it to the trail.
func (a *Audit) Record(e Event) {
	attrs := make([]any, 0, len(e.Data)+1)
	attrs = append(attrs, slog.String("event", string(e.Type)))
	for k, v := range e.Data {
		attrs = append(attrs, slog.Any(k, v))
	}
	a.logger.Info("catalog event", attrs...)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	if over := len(a.events) - a.max; over > 0 {
		a.events = append(a.events[:0:0], a.events[over:]...)
	}
}

// Recent returns the remembered events, newest last.
func (a *Audit) Recent() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Event, len(a.events))
	copy(out, a.events)
	return out
}
