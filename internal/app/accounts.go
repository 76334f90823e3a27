package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dreamware/todokit/internal/clock"
	"github.com/dreamware/todokit/internal/credential"
	"github.com/dreamware/todokit/internal/model"
	"github.com/dreamware/todokit/internal/notify"
	"github.com/dreamware/todokit/internal/resource"
)

var (
	ErrMissingField     = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("password and confirm password do not match")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
)

// Messages posted for rejected registrations.
const (
	MsgPasswordMismatch = "Password and confirm password do not match"
	MsgUsernameTaken    = "Username already exists"
	MsgEmailTaken       = "Email already exists"
)

// Registration is a new account as entered by the user.
type Registration struct {
	Username string
	Email    string
	Password string
	Confirm  string
}

// ValidateRegistration checks the form before anything is sent: every
// field is non-blank and the password was typed the same twice.
func ValidateRegistration(r Registration) error {
	for _, f := range []string{r.Username, r.Email, r.Password, r.Confirm} {
		if strings.TrimSpace(f) == "" {
			return ErrMissingField
		}
	}
	if r.Password != r.Confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// UserEdit holds replacement values. Empty fields keep the stored value.
type UserEdit struct {
	Username string
	Email    string
	Password string
}

// Accounts manages the users collection.
type Accounts struct {
	client *resource.Users
	hasher credential.Hasher
	clock  clock.Clock
	notes  *notify.Container
}

// Client returns the underlying resource client.
func (a *Accounts) Client() *resource.Users { return a.client }

// Register creates a user after checking that neither the username nor
// the email is in use. The password is stored as a bcrypt hash.
func (a *Accounts) Register(ctx context.Context, r Registration) (model.User, error) {
	_, taken, err := a.client.FindByUsername(ctx, r.Username)
	if err != nil {
		a.notes.Error(fmt.Sprintf("Error checking username: %v", err))
		return model.User{}, err
	}
	if taken {
		a.notes.Error(MsgUsernameTaken)
		return model.User{}, ErrUsernameTaken
	}

	_, taken, err = a.client.FindByEmail(ctx, r.Email)
	if err != nil {
		a.notes.Error(fmt.Sprintf("Error checking email: %v", err))
		return model.User{}, err
	}
	if taken {
		a.notes.Error(MsgEmailTaken)
		return model.User{}, ErrEmailTaken
	}

	hash, err := a.hasher.Hash(r.Password)
	if err != nil {
		a.notes.Error(fmt.Sprintf("Error creating user: %v", err))
		return model.User{}, err
	}
	created, err := a.client.Create(ctx, model.NewUser(r.Username, r.Email, hash, a.clock.Now()))
	if err != nil {
		a.notes.Error(fmt.Sprintf("Error creating user: %v", err))
		return model.User{}, err
	}
	a.notes.Success("New user created")
	return created, nil
}

// List refreshes the users mirror.
func (a *Accounts) List(ctx context.Context) ([]model.User, error) {
	list, err := a.client.ListAll(ctx)
	if err != nil {
		a.notes.Error(fmt.Sprintf("Error fetching user list: %v", err))
		return nil, err
	}
	return list, nil
}

// Get fetches one user.
func (a *Accounts) Get(ctx context.Context, id string) (model.User, error) {
	u, err := a.client.GetByID(ctx, id)
	if err != nil {
		a.notes.Error(fmt.Sprintf("Error fetching user: %v", err))
		return model.User{}, err
	}
	return u, nil
}

// Edit fetches the user, applies the non-empty fields of e and stores
// the result. A new password is hashed first.
func (a *Accounts) Edit(ctx context.Context, id string, e UserEdit) (model.User, error) {
	u, err := a.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if e.Username != "" {
		u.Username = e.Username
	}
	if e.Email != "" {
		u.Email = e.Email
	}
	if e.Password != "" {
		hash, err := a.hasher.Hash(e.Password)
		if err != nil {
			a.notes.Error(fmt.Sprintf("Error updating user: %v", err))
			return model.User{}, err
		}
		u.Password = hash
	}

	updated, err := a.client.Update(ctx, id, u)
	if err != nil {
		a.notes.Error(fmt.Sprintf("Error updating user: %v", err))
		return model.User{}, err
	}
	a.notes.Success("User updated successfully")
	return updated, nil
}

// Remove deletes a user.
func (a *Accounts) Remove(ctx context.Context, id string) error {
	if err := a.client.Delete(ctx, id); err != nil {
		a.notes.Error(fmt.Sprintf("Error deleting user: %v", err))
		return err
	}
	a.notes.Success(fmt.Sprintf("User with ID %s deleted successfully", id))
	return nil
}
