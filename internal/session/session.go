// Package session tracks who is logged in.
//
// A Container is either Anonymous or Authenticated with one user. The
// authenticated user record is written through to a storage.Store under
// Key on every transition, so a new Container over the same store starts
// in the state the previous one left.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dreamware/todokit/internal/credential"
	"github.com/dreamware/todokit/internal/model"
	"github.com/dreamware/todokit/internal/storage"
)

// Key is the persistent store key holding the authenticated user.
const Key = "user"

// Messages posted to the Notifier.
const (
	MsgLoginOK     = "Login successful"
	MsgLoginFailed = "Error logging in: invalid username or password"
	MsgLogoutOK    = "Logout successful"
)

// State is the authentication state of a Container.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// UserLookup finds a user by exact username. resource.Users implements it.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (model.User, bool, error)
}

// Notifier receives the user facing outcome of login and logout.
// notify.Container implements it.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Option configures a Container.
type Option func(*Container)

// WithVerifier replaces the bcrypt password verifier.
func WithVerifier(v credential.Verifier) Option {
	return func(c *Container) { c.verifier = v }
}

// WithNotifier posts login and logout outcomes to n.
func WithNotifier(n Notifier) Option {
	return func(c *Container) { c.notifier = n }
}

// WithOnNavigateReset sets the hook Logout calls to send the user back to
// the start page.
func WithOnNavigateReset(fn func()) Option {
	return func(c *Container) { c.onNavigateReset = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// Container holds the session state.
type Container struct {
	users           UserLookup
	store           storage.Store
	verifier        credential.Verifier
	notifier        Notifier
	onNavigateReset func()
	logger          *slog.Logger

	mu   sync.RWMutex
	user *model.User
}

// New creates a Container and restores the persisted user, if any. A
// persisted record that cannot be decoded is logged, removed and the
// Container starts Anonymous.
func New(users UserLookup, store storage.Store, opts ...Option) *Container {
	c := &Container{users: users, store: store}
	for _, opt := range opts {
		opt(c)
	}
	if c.verifier == nil {
		c.verifier = credential.Default
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	var u model.User
	found, err := storage.GetJSON(store, Key, &u)
	switch {
	case err != nil:
		c.logger.Warn("discarding persisted session", "key", Key, "error", err)
		c.removePersisted()
	case found && u.ID == "":
		c.logger.Warn("discarding persisted session without id", "key", Key)
		c.removePersisted()
	case found:
		c.user = &u
		c.logger.Debug("session restored", "user", u.Username)
	}
	return c
}

// Login looks username up, checks password against the stored hash and
// on success makes that user current.
//
// A missing user or a wrong password is not an error: ok is false and
// the state does not change. err is only set when the lookup itself
// failed, in which case the state does not change either.
func (c *Container) Login(ctx context.Context, username, password string) (user model.User, ok bool, err error) {
	u, found, err := c.users.FindByUsername(ctx, username)
	if err != nil {
		c.logger.Error("login lookup failed", "user", username, "error", err)
		c.postError(fmt.Sprintf("Error logging in: %v", err))
		return model.User{}, false, fmt.Errorf("login %s: %w", username, err)
	}
	if !found || !c.verifier.Verify(u.Password, password) {
		c.logger.Info("login rejected", "user", username)
		c.postError(MsgLoginFailed)
		return model.User{}, false, nil
	}

	c.mu.Lock()
	c.user = &u
	c.mu.Unlock()
	if err := storage.PutJSON(c.store, Key, u); err != nil {
		c.logger.Error("persist session", "key", Key, "error", err)
	}

	c.logger.Info("login", "user", u.Username)
	c.postSuccess(MsgLoginOK)
	return u, true, nil
}

// Logout makes the Container Anonymous, removes the persisted user and
// calls the navigation reset hook. It succeeds even when nobody is
// logged in.
func (c *Container) Logout() {
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
	c.removePersisted()

	c.logger.Info("logout")
	c.postSuccess(MsgLogoutOK)
	if c.onNavigateReset != nil {
		c.onNavigateReset()
	}
}

// Current returns the authenticated user.
func (c *Container) Current() (model.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return model.User{}, false
	}
	return *c.user, true
}

// IsAuthenticated reports whether a user is logged in.
func (c *Container) IsAuthenticated() bool {
	return c.State() == Authenticated
}

// State returns the current state.
func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return Anonymous
	}
	return Authenticated
}

func (c *Container) removePersisted() {
	if err := c.store.Delete(Key); err != nil {
		c.logger.Error("remove persisted session", "key", Key, "error", err)
	}
}

func (c *Container) postSuccess(msg string) {
	if c.notifier != nil {
		c.notifier.Success(msg)
	}
}

func (c *Container) postError(msg string) {
	if c.notifier != nil {
		c.notifier.Error(msg)
	}
}
