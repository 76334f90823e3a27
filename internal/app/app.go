// Package app wires the todokit containers together.
//
// An App owns one persistent store, one notification container, one
// session and the resource clients built over a shared HTTP client. It is
// constructed explicitly by the caller and torn down with Close; nothing
// in this package is a global.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dreamware/todokit/internal/clock"
	"github.com/dreamware/todokit/internal/config"
	"github.com/dreamware/todokit/internal/credential"
	"github.com/dreamware/todokit/internal/guard"
	"github.com/dreamware/todokit/internal/notify"
	"github.com/dreamware/todokit/internal/resource"
	"github.com/dreamware/todokit/internal/session"
	"github.com/dreamware/todokit/internal/storage"
)

// Credentials hashes new passwords and verifies login attempts.
type Credentials interface {
	credential.Hasher
	credential.Verifier
}

// Option configures New.
type Option func(*options)

type options struct {
	store           storage.Store
	clock           clock.Clock
	httpClient      *http.Client
	credentials     Credentials
	onNavigateReset func()
}

// WithStore uses s instead of opening the store named in the config.
// The App still closes it.
func WithStore(s storage.Store) Option {
	return func(o *options) { o.store = s }
}

// WithClock sets the clock driving notification expiry.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithHTTPClient replaces the client built from Config.HTTPTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithCredentials replaces the default bcrypt hasher and verifier.
func WithCredentials(c Credentials) Option {
	return func(o *options) { o.credentials = c }
}

// WithOnNavigateReset is called after every logout.
func WithOnNavigateReset(fn func()) Option {
	return func(o *options) { o.onNavigateReset = fn }
}

// App is the assembled client.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    storage.Store
	Notify   *notify.Container
	Session  *session.Container
	Guard    *guard.Guard
	Todos    *Todos
	Accounts *Accounts
}

// New builds an App from cfg. A nil logger discards output.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := options{clock: clock.Real(), credentials: credential.Default}
	for _, opt := range opts {
		opt(&o)
	}

	store := o.store
	if store == nil {
		s, err := cfg.Store.OpenStore(logger.With("component", "storage"))
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		store = s
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	resLogger := logger.With("component", "resource")
	todos := resource.NewTodos(cfg.BaseURL, resource.WithHTTPClient(hc), resource.WithLogger(resLogger))
	users := resource.NewUsers(cfg.BaseURL, resource.WithHTTPClient(hc), resource.WithLogger(resLogger))

	notes := notify.New(store,
		notify.WithClock(o.clock),
		notify.WithLogger(logger.With("component", "notify")),
	)

	sessOpts := []session.Option{
		session.WithVerifier(o.credentials),
		session.WithNotifier(notes),
		session.WithLogger(logger.With("component", "session")),
	}
	if o.onNavigateReset != nil {
		sessOpts = append(sessOpts, session.WithOnNavigateReset(o.onNavigateReset))
	}
	sess := session.New(users, store, sessOpts...)
	g := guard.New(sess)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Notify:  notes,
		Session: sess,
		Guard:   g,
		Todos:   &Todos{client: todos, guard: g, notes: notes},
		Accounts: &Accounts{
			client: users,
			hasher: o.credentials,
			clock:  o.clock,
			notes:  notes,
		},
	}, nil
}

// Close stops the notification timer and closes the store. Calls still
// in flight may complete afterwards; their mirror updates are kept.
func (a *App) Close() error {
	a.Notify.Close()
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("app: close store: %w", err)
	}
	return nil
}
