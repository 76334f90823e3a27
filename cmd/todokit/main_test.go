package main

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/todokit/internal/config"
	"github.com/dreamware/todokit/internal/model"
	"github.com/dreamware/todokit/internal/notify"
	"github.com/dreamware/todokit/internal/storage"
	"github.com/dreamware/todokit/internal/storetest"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// env points the CLI at a fresh fake store and state file.
func env(t *testing.T) (*storetest.Server, string) {
	t.Helper()
	srv := storetest.New(t, "todos", "users")
	statePath := filepath.Join(t.TempDir(), "state.json")

	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvBaseURL, srv.URL)
	t.Setenv(config.EnvStoreDriver, config.DriverFile)
	t.Setenv(config.EnvStorePath, statePath)
	t.Setenv(config.EnvLogLevel, "")
	return srv, statePath
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestHelpAndUsage(t *testing.T) {
	env(t)

	r := runCLI(t, "")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "Usage:")

	r = runCLI(t, "", "--help")
	assert.Equal(t, exitOK, r.code)
	assert.Contains(t, r.stdout, "todos add <label...>")

	r = runCLI(t, "", "help")
	assert.Equal(t, exitOK, r.code)

	r = runCLI(t, "", "frobnicate")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown command")

	r = runCLI(t, "", "todos", "show")
	assert.Equal(t, exitUsage, r.code)

	r = runCLI(t, "", "--no-such-flag", "whoami")
	assert.Equal(t, exitUsage, r.code)
}

func TestBadConfig(t *testing.T) {
	env(t)

	r := runCLI(t, "", "--base-url", "ftp://nowhere", "whoami")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "scheme")

	r = runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "whoami")
	assert.Equal(t, exitError, r.code)
}

func TestSessionAcrossInvocations(t *testing.T) {
	srv, _ := env(t)

	r := runCLI(t, "", "whoami")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Equal(t, "anonymous\n", r.stdout)

	r = runCLI(t, "", "todos", "add", "milk")
	assert.Equal(t, exitError, r.code)
	assert.Contains(t, r.stderr, "login required")
	assert.Empty(t, srv.IDs("todos"))

	r = runCLI(t, "pw\npw\n", "users", "add", "alice", "alice@example.com")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "New user created")

	r = runCLI(t, "nope\n", "login", "alice")
	assert.Equal(t, exitError, r.code)
	assert.Contains(t, r.stderr, "invalid username or password")

	r = runCLI(t, "pw\n", "login", "alice")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Login successful")

	r = runCLI(t, "", "whoami")
	assert.Contains(t, r.stdout, "alice <alice@example.com>")

	r = runCLI(t, "", "todos", "add", "buy", "milk")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "New todo created")
	require.Len(t, srv.IDs("todos"), 1)
	id := srv.IDs("todos")[0]

	r = runCLI(t, "", "todos", "done", id)
	require.Equal(t, exitOK, r.code, r.stderr)
	var td model.Todo
	require.True(t, srv.Decode("todos", id, &td))
	assert.True(t, td.Done)
	assert.Equal(t, "buy milk", td.Label)

	r = runCLI(t, "", "todos", "edit", id, "oat", "milk")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Todo updated successfully")

	r = runCLI(t, "", "todos", "ls")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "oat milk")

	r = runCLI(t, "", "todos", "rm", id)
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Empty(t, srv.IDs("todos"))

	r = runCLI(t, "", "logout")
	require.Equal(t, exitOK, r.code)
	assert.Contains(t, r.stdout, "Logout successful")

	r = runCLI(t, "", "whoami")
	assert.Equal(t, "anonymous\n", r.stdout)
}

func TestUsersCommands(t *testing.T) {
	srv, _ := env(t)

	r := runCLI(t, "pw\nother\n", "users", "add", "bob", "bob@example.com")
	assert.Equal(t, exitError, r.code)
	assert.Contains(t, r.stderr, "Password and confirm password do not match")
	assert.Empty(t, srv.IDs("users"))

	r = runCLI(t, "pw\npw\n", "users", "add", "bob", "bob@example.com")
	require.Equal(t, exitOK, r.code, r.stderr)
	id := srv.IDs("users")[0]

	r = runCLI(t, "pw\npw\n", "users", "add", "bob", "b2@example.com")
	assert.Equal(t, exitError, r.code)
	assert.Contains(t, r.stderr, "Username already exists")

	r = runCLI(t, "", "users", "edit", id, "--email", "robert@example.com")
	require.Equal(t, exitOK, r.code, r.stderr)
	var u model.User
	require.True(t, srv.Decode("users", id, &u))
	assert.Equal(t, "robert@example.com", u.Email)

	r = runCLI(t, "", "users", "edit", id)
	assert.Equal(t, exitUsage, r.code)

	r = runCLI(t, "", "users", "ls")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "bob <robert@example.com>")
	assert.NotContains(t, r.stdout, u.Password)

	r = runCLI(t, "", "users", "rm", id)
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "deleted successfully")
}

func TestFetchFailureIsReported(t *testing.T) {
	srv, _ := env(t)
	srv.FailNext(http.MethodGet, http.StatusInternalServerError)

	r := runCLI(t, "", "todos", "ls")
	assert.Equal(t, exitError, r.code)
	assert.Contains(t, r.stderr, "Error fetching todos")
}

func TestFlashShownOnce(t *testing.T) {
	_, statePath := env(t)

	st, err := storage.OpenFileStore(statePath)
	require.NoError(t, err)
	require.NoError(t, storage.PutJSON(st, notify.Key, model.Notification{Message: "left over", Severity: model.SeverityWarning}))

	r := runCLI(t, "", "flash")
	require.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "left over")

	r = runCLI(t, "", "flash")
	require.Equal(t, exitOK, r.code)
	assert.Contains(t, r.stdout, "no notification")
}
