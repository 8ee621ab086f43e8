package activity

import (
	"context"
	"errors"
	"time"
)

// Event describes a change performed against a navigation resource.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Notifier receives emitted events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Hooks is an ordered collection of notifiers.
type Hooks []Notifier

// Config controls emitter behaviour.
type Config struct {
	// Enabled gates emission entirely; a zero Config produces a disabled emitter.
	Enabled bool
	// Channel stamps emitted events that do not set their own channel.
	Channel string
	// Clock overrides the OccurredAt source.
	Clock func() time.Time
}

// Emitter fans events out to the configured hooks.
type Emitter struct {
	hooks Hooks
	cfg   Config
	now   func() time.Time
}

// NewEmitter builds an emitter for the provided hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Emitter{
		hooks: hooks,
		cfg:   cfg,
		now:   now,
	}
}

// Enabled reports whether the emitter will deliver events.
func (e *Emitter) Enabled() bool {
	if e == nil {
		return false
	}
	return e.cfg.Enabled && len(e.hooks) > 0
}

// Emit stamps the event with defaults and delivers it to every hook.
// Hook failures do not stop delivery to the remaining hooks.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if event.Verb == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}

	var errs []error
	for _, hook := range e.hooks {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook records every event it receives. It is intended for tests.
type CaptureHook struct {
	Events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.Events = append(h.Events, event)
	return nil
}
