// Package activity records an append-only, best-effort audit trail of
// request outcomes. Every event is fanned out to one or more sinks; a
// failing sink is reported but never fails the request being logged.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event is a single activity record.
type Event struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Action  string    `json:"action"`
	Details string    `json:"details"`
}

// Sink persists activity events.
type Sink interface {
	Write(ctx context.Context, event Event) error
	Close() error
}

// Logger stamps events and fans them out to its sinks.
type Logger struct {
	sinks []Sink
	loc   *time.Location
	now   func() time.Time
	log   logrus.FieldLogger
}

// NewLogger constructs a Logger. Timestamps are rendered in loc; a nil
// loc means the host's local zone.
func NewLogger(loc *time.Location, log logrus.FieldLogger, sinks ...Sink) *Logger {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{
		sinks: sinks,
		loc:   loc,
		now:   time.Now,
		log:   log,
	}
}

// Record appends an action/detail pair to every sink. It is best-effort:
// sink failures are logged and swallowed so a request never fails or
// blocks on its audit trail.
func (l *Logger) Record(ctx context.Context, action, details string) {
	event := Event{
		ID:      uuid.NewString(),
		At:      l.now().In(l.loc),
		Action:  action,
		Details: details,
	}
	for _, sink := range l.sinks {
		if err := sink.Write(ctx, event); err != nil {
			l.log.WithError(err).WithField("action", action).Warn("activity sink write failed")
		}
	}
}

// Close closes all sinks.
func (l *Logger) Close() error {
	var firstErr error
	for _, sink := range l.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
