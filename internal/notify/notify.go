// Package notify holds the single live user notification.
//
// At most one notification exists at a time. Setting a new one replaces
// the old one and restarts a fixed expiry window. The value is written
// through to a storage.Store under Key so a restarted process shows an
// in-flight notification once more. The remaining window is not stored:
// after a restart the countdown begins again from TTL.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dreamware/todokit/internal/clock"
	"github.com/dreamware/todokit/internal/model"
	"github.com/dreamware/todokit/internal/storage"
)

// Key is the persistent store key holding the current notification.
const Key = "flashMessage"

// TTL is how long a notification lives after it was set.
const TTL = 10 * time.Second

// ErrInvalidSeverity is returned by Set for an unknown severity.
var ErrInvalidSeverity = errors.New("invalid severity")

// Option configures a Container.
type Option func(*Container)

// WithClock replaces the wall clock. Tests pass a clock.FakeClock.
func WithClock(c clock.Clock) Option {
	return func(n *Container) { n.clock = c }
}

// WithLogger sets the logger persistence failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(n *Container) { n.logger = l }
}

// WithOnChange registers fn to be called after every state change,
// including expiry. ok is false when the notification was removed.
// fn runs without the container lock held.
func WithOnChange(fn func(n model.Notification, ok bool)) Option {
	return func(n *Container) { n.onChange = fn }
}

// Container owns the current notification.
type Container struct {
	store    storage.Store
	clock    clock.Clock
	logger   *slog.Logger
	onChange func(model.Notification, bool)

	mu      sync.Mutex
	current model.Notification
	live    bool
	gen     uint64
	timer   *clock.Timer
	closed  bool
}

// New creates a Container backed by store and rehydrates any persisted
// notification. A rehydrated notification gets a fresh TTL. An
// unreadable persisted value is logged and removed.
func New(store storage.Store, opts ...Option) *Container {
	c := &Container{store: store}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	var n model.Notification
	found, err := storage.GetJSON(store, Key, &n)
	switch {
	case err != nil:
		c.logger.Warn("discarding persisted notification", "key", Key, "error", err)
		c.deletePersisted()
	case found && !n.Severity.Valid():
		c.logger.Warn("discarding persisted notification", "key", Key, "severity", n.Severity)
		c.deletePersisted()
	case found:
		c.mu.Lock()
		c.current, c.live = n, true
		c.scheduleLocked()
		c.mu.Unlock()
	}
	return c
}

// Set replaces the current notification and restarts the expiry window.
// The in-memory value changes even when persisting it fails; the
// persistence error is returned.
func (c *Container) Set(message string, severity model.Severity) error {
	if !severity.Valid() {
		return fmt.Errorf("set notification: %w: %q", ErrInvalidSeverity, severity)
	}
	n := model.Notification{Message: message, Severity: severity}

	c.mu.Lock()
	c.stopLocked()
	c.current, c.live = n, true
	c.scheduleLocked()
	err := storage.PutJSON(c.store, Key, n)
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("persist notification", "key", Key, "error", err)
		err = fmt.Errorf("set notification: %w", err)
	}
	c.changed(n, true)
	return err
}

// Success sets a success notification.
func (c *Container) Success(message string) { _ = c.Set(message, model.SeveritySuccess) }

// Error sets an error notification.
func (c *Container) Error(message string) { _ = c.Set(message, model.SeverityError) }

// Warning sets a warning notification.
func (c *Container) Warning(message string) { _ = c.Set(message, model.SeverityWarning) }

// Clear removes the current notification and cancels its expiry.
func (c *Container) Clear() {
	c.mu.Lock()
	c.stopLocked()
	c.current, c.live = model.Notification{}, false
	c.deletePersisted()
	c.mu.Unlock()

	c.changed(model.Notification{}, false)
}

// Current returns the live notification, if any.
func (c *Container) Current() (model.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.live
}

// Close stops the expiry timer. The persisted value is kept so the next
// Container built over the same store shows it again. Set still works
// after Close but no longer schedules expiry.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.closed = true
}

// scheduleLocked arms the expiry timer for the current generation.
func (c *Container) scheduleLocked() {
	c.gen++
	if c.closed {
		return
	}
	gen := c.gen
	c.timer = c.clock.AfterFunc(TTL, func() { c.expire(gen) })
}

func (c *Container) stopLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// expire clears the notification set in generation gen. A callback from
// a superseded timer finds a newer generation and does nothing.
func (c *Container) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.live {
		c.mu.Unlock()
		return
	}
	c.current, c.live = model.Notification{}, false
	c.timer = nil
	c.deletePersisted()
	c.mu.Unlock()

	c.logger.Debug("notification expired")
	c.changed(model.Notification{}, false)
}

func (c *Container) deletePersisted() {
	if err := c.store.Delete(Key); err != nil {
		c.logger.Error("remove persisted notification", "key", Key, "error", err)
	}
}

func (c *Container) changed(n model.Notification, ok bool) {
	if c.onChange != nil {
		c.onChange(n, ok)
	}
}
