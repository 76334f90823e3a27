// Package guard decides whether protected operations may run.
package guard

import "fmt"

// LoginPath is where unauthorized callers are sent.
const LoginPath = "/login"

// Authenticator reports whether someone is logged in.
// session.Container implements it.
type Authenticator interface {
	IsAuthenticated() bool
}

// RedirectError tells the caller to send the user to Location instead of
// running the protected operation.
type RedirectError struct {
	Location string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("not authorized: redirect to %s", e.Location)
}

// Guard authorizes operations that need a logged in user. Any
// authenticated user passes; there are no roles.
type Guard struct {
	session Authenticator
}

// New creates a Guard reading state from session.
func New(session Authenticator) *Guard {
	return &Guard{session: session}
}

// IsAuthorized reports whether a protected operation may run now.
func (g *Guard) IsAuthorized() bool {
	return g.session.IsAuthenticated()
}

// Check returns nil when authorized and a *RedirectError to LoginPath
// otherwise. It has no side effects.
func (g *Guard) Check() error {
	if g.IsAuthorized() {
		return nil
	}
	return &RedirectError{Location: LoginPath}
}

// Require runs fn when authorized. Otherwise fn is not called and the
// *RedirectError from Check is returned.
func (g *Guard) Require(fn func() error) error {
	if err := g.Check(); err != nil {
		return err
	}
	return fn()
}
