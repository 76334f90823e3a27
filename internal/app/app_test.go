package app

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dreamware/todokit/internal/clock"
	"github.com/dreamware/todokit/internal/config"
	"github.com/dreamware/todokit/internal/credential"
	"github.com/dreamware/todokit/internal/guard"
	"github.com/dreamware/todokit/internal/model"
	"github.com/dreamware/todokit/internal/notify"
	"github.com/dreamware/todokit/internal/storage"
	"github.com/dreamware/todokit/internal/storetest"
)

var fastBcrypt = credential.Bcrypt{Cost: bcrypt.MinCost}

type fixture struct {
	app   *App
	srv   *storetest.Server
	store storage.Store
	clock *clock.FakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	srv := storetest.New(t, "todos", "users")
	store := storage.NewMemoryStore()
	fc := clock.Fake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	cfg := config.Default()
	cfg.BaseURL = srv.URL

	a, err := New(cfg, nil, append([]Option{
		WithStore(store),
		WithClock(fc),
		WithCredentials(fastBcrypt),
	}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return &fixture{app: a, srv: srv, store: store, clock: fc}
}

func (f *fixture) register(t *testing.T, username, password string) model.User {
	t.Helper()
	u, err := f.app.Accounts.Register(context.Background(), Registration{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Confirm:  password,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, username, password string) {
	t.Helper()
	_, ok, err := f.app.Session.Login(context.Background(), username, password)
	require.NoError(t, err)
	require.True(t, ok)
}

func (f *fixture) note(t *testing.T) model.Notification {
	t.Helper()
	n, ok := f.app.Notify.Current()
	require.True(t, ok, "expected a notification")
	return n
}

func TestNewOpensConfiguredStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Driver: config.DriverMemory}

	a, err := New(cfg, nil)
	require.NoError(t, err)
	_, ok := a.Store.(*storage.MemoryStore)
	assert.True(t, ok)
	assert.False(t, a.Session.IsAuthenticated())
	require.NoError(t, a.Close())

	_, err = New(nil, nil)
	assert.Error(t, err)

	cfg.Store.Driver = "redis"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestTodosAddGuarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.app.Todos.Add(ctx, "milk")
	var re *guard.RedirectError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "/login", re.Location)
	assert.Empty(t, f.srv.IDs("todos"))
	for _, r := range f.srv.Requests() {
		assert.False(t, strings.HasPrefix(r, "POST /todos"), "request sent while anonymous")
	}

	f.register(t, "alice", "pw")
	f.login(t, "alice", "pw")

	td, err := f.app.Todos.Add(ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, "milk", td.Label)
	assert.False(t, td.Done)
	assert.NotEmpty(t, td.ID)
	assert.Equal(t, []string{td.ID}, f.srv.IDs("todos"))
	assert.Equal(t, "New todo created", f.note(t).Message)

	_, err = f.app.Todos.Add(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyLabel)

	f.srv.FailNext(http.MethodPost, http.StatusInternalServerError)
	_, err = f.app.Todos.Add(ctx, "bread")
	require.Error(t, err)
	assert.Equal(t, model.Notification{Message: "Error creating todo", Severity: model.SeverityError}, f.note(t))
}

func TestTodosListAndEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.srv.Seed("todos", model.Todo{ID: "t1", Label: "milk", Done: true})

	list, err := f.app.Todos.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	renamed, err := f.app.Todos.Rename(ctx, "t1", "oat milk")
	require.NoError(t, err)
	assert.Equal(t, model.Todo{ID: "t1", Label: "oat milk", Done: true}, renamed)
	assert.Equal(t, "Todo updated successfully", f.note(t).Message)

	f.srv.FailNext(http.MethodGet, http.StatusBadGateway)
	_, err = f.app.Todos.List(ctx)
	require.Error(t, err)
	n := f.note(t)
	assert.Equal(t, model.SeverityError, n.Severity)
	assert.True(t, strings.HasPrefix(n.Message, "Error fetching todos: "), n.Message)

	_, err = f.app.Todos.Get(ctx, "nope")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(f.note(t).Message, "Error fetching todo: "))
}

func TestTodosToggleLoadsMirror(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.srv.Seed("todos", model.Todo{ID: "t1", Label: "milk"})

	td, err := f.app.Todos.ToggleDone(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, td.Done)

	var stored model.Todo
	require.True(t, f.srv.Decode("todos", "t1", &stored))
	assert.True(t, stored.Done)

	require.NoError(t, f.app.Todos.Remove(ctx, "t1"))
	assert.Empty(t, f.app.Todos.Client().Mirror())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hash", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "alice", "s3cret")

		assert.NotEqual(t, "s3cret", u.Password)
		assert.True(t, fastBcrypt.Verify(u.Password, "s3cret"))
		assert.Equal(t, f.clock.Now(), u.CreatedAt)
		assert.Equal(t, "New user created", f.note(t).Message)

		var stored model.User
		require.True(t, f.srv.Decode("users", u.ID, &stored))
		assert.Equal(t, u.Password, stored.Password)
	})

	t.Run("username taken", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice", "pw")

		_, err := f.app.Accounts.Register(ctx, Registration{Username: "alice", Email: "other@example.com", Password: "x", Confirm: "x"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
		assert.Equal(t, MsgUsernameTaken, f.note(t).Message)
		assert.Len(t, f.srv.IDs("users"), 1)
	})

	t.Run("email taken", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice", "pw")

		_, err := f.app.Accounts.Register(ctx, Registration{Username: "bob", Email: "alice@example.com", Password: "x", Confirm: "x"})
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.Equal(t, MsgEmailTaken, f.note(t).Message)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newFixture(t)
		f.srv.FailNext(http.MethodGet, http.StatusInternalServerError)

		_, err := f.app.Accounts.Register(ctx, Registration{Username: "bob", Email: "bob@example.com", Password: "x", Confirm: "x"})
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(f.note(t).Message, "Error checking username: "))
	})

	t.Run("email lookup failure", func(t *testing.T) {
		f := newFixture(t)
		// The username check is served, the email check fails.
		f.srv.FailNext(http.MethodGet, 0)
		f.srv.FailNext(http.MethodGet, http.StatusInternalServerError)

		_, err := f.app.Accounts.Register(ctx, Registration{Username: "bob", Email: "bob@example.com", Password: "x", Confirm: "x"})
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(f.note(t).Message, "Error checking email: "))
		assert.Empty(t, f.srv.IDs("users"))
	})
}

func TestEditAndRemoveUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "alice", "old")

	edited, err := f.app.Accounts.Edit(ctx, u.ID, UserEdit{Email: "new@example.com", Password: "new"})
	require.NoError(t, err)
	assert.Equal(t, "alice", edited.Username)
	assert.Equal(t, "new@example.com", edited.Email)
	assert.Equal(t, "User updated successfully", f.note(t).Message)

	_, ok, err := f.app.Session.Login(ctx, "alice", "old")
	require.NoError(t, err)
	assert.False(t, ok)
	f.login(t, "alice", "new")

	require.NoError(t, f.app.Accounts.Remove(ctx, u.ID))
	assert.Equal(t, "User with ID "+u.ID+" deleted successfully", f.note(t).Message)

	err = f.app.Accounts.Remove(ctx, u.ID)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(f.note(t).Message, "Error deleting user: "))
}

func TestSessionAndNotificationSurviveRestart(t *testing.T) {
	ctx := context.Background()
	resets := 0
	f := newFixture(t, WithOnNavigateReset(func() { resets++ }))
	f.register(t, "alice", "pw")
	f.login(t, "alice", "pw")
	f.app.Notify.Close()

	cfg := config.Default()
	cfg.BaseURL = f.srv.URL
	again, err := New(cfg, nil, WithStore(f.store), WithClock(f.clock), WithCredentials(fastBcrypt))
	require.NoError(t, err)
	defer again.Notify.Close()

	assert.True(t, again.Session.IsAuthenticated())
	n, ok := again.Notify.Current()
	require.True(t, ok)
	assert.Equal(t, "Login successful", n.Message)

	f.clock.Advance(notify.TTL)
	_, ok = again.Notify.Current()
	assert.False(t, ok)

	_, err = again.Todos.Add(ctx, "from restarted app")
	require.NoError(t, err)

	f.app.Session.Logout()
	assert.Equal(t, 1, resets)
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name string
		reg  Registration
		want error
	}{
		{"ok", Registration{"a", "a@x", "pw", "pw"}, nil},
		{"blank username", Registration{" ", "a@x", "pw", "pw"}, ErrMissingField},
		{"blank email", Registration{"a", "", "pw", "pw"}, ErrMissingField},
		{"blank confirm", Registration{"a", "a@x", "pw", ""}, ErrMissingField},
		{"mismatch", Registration{"a", "a@x", "pw", "pw2"}, ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateRegistration(tt.reg), tt.want)
		})
	}
}
