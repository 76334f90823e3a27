package resource

import (
	"context"

	"github.com/dreamware/todokit/internal/model"
)

// Users is the client for the "users" collection.
type Users struct {
	*Client[model.User]
}

// NewUsers creates a Users client at baseURL.
func NewUsers(baseURL string, opts ...Option) *Users {
	return &Users{Client: New[model.User](baseURL, "users", opts...)}
}

// FindByUsername fetches the whole collection and returns the first user
// whose username matches exactly (case-sensitive). The mirror is not
// touched. found is false when nobody matches.
func (u *Users) FindByUsername(ctx context.Context, username string) (model.User, bool, error) {
	return u.find(ctx, func(user model.User) bool { return user.Username == username })
}

// FindByEmail is FindByUsername for the email field.
func (u *Users) FindByEmail(ctx context.Context, email string) (model.User, bool, error) {
	return u.find(ctx, func(user model.User) bool { return user.Email == email })
}

func (u *Users) find(ctx context.Context, match func(model.User) bool) (model.User, bool, error) {
	all, err := u.FetchAll(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	for _, user := range all {
		if match(user) {
			return user, true, nil
		}
	}
	return model.User{}, false, nil
}
