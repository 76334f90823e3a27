package main

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dreamware/todokit/internal/app"
)

func (c *cli) todos(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("usage: todokit todos ls|show|add|edit|done|rm")
	}
	sub, a := args[0], args[1:]
	t := c.app.Todos

	switch sub {
	case "ls", "list":
		list, err := t.List(ctx)
		if err != nil {
			return errSilent
		}
		c.ui.todoList(list)
		return nil

	case "show":
		if len(a) != 1 {
			return usagef("usage: todokit todos show <id>")
		}
		td, err := t.Get(ctx, a[0])
		if err != nil {
			return errSilent
		}
		c.ui.todo(td)
		return nil

	case "add":
		label := strings.Join(a, " ")
		if strings.TrimSpace(label) == "" {
			return usagef("usage: todokit todos add <label...>")
		}
		td, err := t.Add(ctx, label)
		if err != nil {
			return err
		}
		c.ui.muted(td.ID)
		return nil

	case "edit":
		if len(a) < 2 {
			return usagef("usage: todokit todos edit <id> <label...>")
		}
		label := strings.Join(a[1:], " ")
		if strings.TrimSpace(label) == "" {
			return usagef("todos edit: empty label")
		}
		if _, err := t.Rename(ctx, a[0], label); err != nil {
			return errSilent
		}
		return nil

	case "done":
		if len(a) != 1 {
			return usagef("usage: todokit todos done <id>")
		}
		td, err := t.ToggleDone(ctx, a[0])
		if err != nil {
			return err
		}
		c.ui.todo(td)
		return nil

	case "rm":
		if len(a) != 1 {
			return usagef("usage: todokit todos rm <id>")
		}
		if err := t.Remove(ctx, a[0]); err != nil {
			return err
		}
		c.ui.ok("deleted " + a[0])
		return nil
	}
	return usagef("unknown todos command %q", sub)
}

func (c *cli) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("usage: todokit users ls|show|add|edit|rm")
	}
	sub, a := args[0], args[1:]
	acc := c.app.Accounts

	switch sub {
	case "ls", "list":
		list, err := acc.List(ctx)
		if err != nil {
			return errSilent
		}
		c.ui.userList(list)
		return nil

	case "show":
		if len(a) != 1 {
			return usagef("usage: todokit users show <id>")
		}
		u, err := acc.Get(ctx, a[0])
		if err != nil {
			return errSilent
		}
		c.ui.user(u)
		return nil

	case "add":
		return c.addUser(ctx, a)

	case "edit":
		return c.editUser(ctx, a)

	case "rm":
		if len(a) != 1 {
			return usagef("usage: todokit users rm <id>")
		}
		if err := acc.Remove(ctx, a[0]); err != nil {
			return errSilent
		}
		return nil
	}
	return usagef("unknown users command %q", sub)
}

func (c *cli) addUser(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("users add", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	passwordFile := fs.String("password-file", "", "read the password from this file")
	if err := fs.Parse(args); err != nil {
		return usagef("users add: %v", err)
	}
	if fs.NArg() != 2 {
		return usagef("usage: todokit users add <username> <email> [--password-file FILE]")
	}

	reg := app.Registration{Username: fs.Arg(0), Email: fs.Arg(1)}
	var err error
	if *passwordFile != "" {
		reg.Password, err = readPasswordFile(*passwordFile)
		reg.Confirm = reg.Password
	} else {
		reg.Password, reg.Confirm, err = c.newPassword()
	}
	if err != nil {
		return err
	}

	if err := app.ValidateRegistration(reg); err != nil {
		if errors.Is(err, app.ErrPasswordMismatch) {
			c.app.Notify.Error(app.MsgPasswordMismatch)
			return errSilent
		}
		return usagef("users add: %v", err)
	}

	u, err := c.app.Accounts.Register(ctx, reg)
	if err != nil {
		return errSilent
	}
	c.ui.muted(u.ID)
	return nil
}

func (c *cli) editUser(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("users edit", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "new username")
	email := fs.String("email", "", "new email")
	password := fs.Bool("password", false, "prompt for a new password")
	if err := fs.Parse(args); err != nil {
		return usagef("users edit: %v", err)
	}
	if fs.NArg() != 1 {
		return usagef("usage: todokit users edit <id> [--username NAME] [--email EMAIL] [--password]")
	}

	edit := app.UserEdit{Username: *username, Email: *email}
	if *password {
		pw, confirm, err := c.newPassword()
		if err != nil {
			return err
		}
		if pw != confirm {
			c.app.Notify.Error(app.MsgPasswordMismatch)
			return errSilent
		}
		edit.Password = pw
	}
	if edit == (app.UserEdit{}) {
		return usagef("users edit: nothing to change")
	}

	if _, err := c.app.Accounts.Edit(ctx, fs.Arg(0), edit); err != nil {
		return errSilent
	}
	return nil
}
