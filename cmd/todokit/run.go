package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dreamware/todokit/internal/app"
	"github.com/dreamware/todokit/internal/config"
	"github.com/dreamware/todokit/internal/guard"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks a problem with the command line rather than with the
// store or session.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// cli holds one invocation's state.
type cli struct {
	app   *app.App
	ui    *ui
	in    io.Reader
	lines *bufio.Reader
}

// run parses global flags, builds the App and dispatches args. It returns
// the process exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	u := newUI(out, errOut)

	fs := pflag.NewFlagSet("todokit", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.SetInterspersed(false)
	configPath := fs.String("config", "", "config file (YAML or JSONC); defaults to $"+config.EnvConfig)
	baseURL := fs.String("base-url", "", "resource store origin, overrides the config")
	logLevel := fs.String("log-level", "", "debug, info, warn or error, overrides the config")
	help := fs.BoolP("help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(out, fs)
			return exitOK
		}
		u.fail(err.Error())
		return exitUsage
	}
	if *help {
		printHelp(out, fs)
		return exitOK
	}
	rest := fs.Args()
	if len(rest) == 0 {
		printHelp(errOut, fs)
		return exitUsage
	}
	if rest[0] == "help" {
		printHelp(out, fs)
		return exitOK
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		u.fail("config: " + err.Error())
		return exitError
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		u.fail("config: " + err.Error())
		return exitUsage
	}
	logger, err := cfg.Logger(errOut)
	if err != nil {
		u.fail(err.Error())
		return exitUsage
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		u.fail(err.Error())
		return exitError
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	c := &cli{app: a, ui: u, in: in, lines: bufio.NewReader(in)}
	err = c.dispatch(ctx, rest)
	c.flushNotification()
	return c.exitCode(err)
}

func (c *cli) exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errSilent) {
		return exitError
	}
	var ue usageError
	if errors.As(err, &ue) {
		c.ui.fail(ue.msg)
		return exitUsage
	}
	var re *guard.RedirectError
	if errors.As(err, &re) {
		c.ui.fail(fmt.Sprintf("login required (see %q)", "todokit login"))
		return exitError
	}
	c.ui.fail(err.Error())
	return exitError
}

// flushNotification shows the pending notification once and clears it.
func (c *cli) flushNotification() {
	if n, ok := c.app.Notify.Current(); ok {
		c.ui.notification(n)
		c.app.Notify.Clear()
	}
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "todos", "todo":
		return c.todos(ctx, rest)
	case "users", "user":
		return c.users(ctx, rest)
	case "login":
		return c.login(ctx, rest)
	case "logout":
		if len(rest) != 0 {
			return usagef("usage: todokit logout")
		}
		c.app.Session.Logout()
		return nil
	case "whoami":
		return c.whoami()
	case "flash":
		return c.flash(rest)
	}
	return usagef("unknown command %q (try \"todokit help\")", cmd)
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	passwordFile := fs.String("password-file", "", "read the password from this file")
	if err := fs.Parse(args); err != nil {
		return usagef("login: %v", err)
	}
	if fs.NArg() != 1 {
		return usagef("usage: todokit login <username> [--password-file FILE]")
	}
	username := fs.Arg(0)

	password, err := c.password("Password: ", *passwordFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return usagef("login: username and password are required")
	}

	_, ok, err := c.app.Session.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if !ok {
		// The notification already says why.
		return errSilent
	}
	return nil
}

func (c *cli) whoami() error {
	u, ok := c.app.Session.Current()
	if !ok {
		c.ui.line("anonymous")
		return nil
	}
	c.ui.line(fmt.Sprintf("%s <%s> (%s)", u.Username, u.Email, u.ID))
	return nil
}

func (c *cli) flash(args []string) error {
	switch {
	case len(args) == 0:
		if _, ok := c.app.Notify.Current(); !ok {
			c.ui.muted("no notification")
		}
		return nil
	case len(args) == 1 && args[0] == "clear":
		c.app.Notify.Clear()
		return nil
	}
	return usagef("usage: todokit flash [clear]")
}

// errSilent fails the command without printing anything beyond the
// notification.
var errSilent = errors.New("")

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `todokit - todos and users against a REST store

Usage:
  todokit [flags] <command> [args]

Commands:
  todos ls                      List todos
  todos show <id>               Show one todo
  todos add <label...>          Add a todo (login required)
  todos edit <id> <label...>    Change a todo's label
  todos done <id>               Toggle a todo's done flag
  todos rm <id>                 Delete a todo
  users ls                      List users
  users show <id>               Show one user
  users add <username> <email>  Register a user (prompts for the password)
  users edit <id> [flags]       Change username, email or password
  users rm <id>                 Delete a user
  login <username>              Log in (prompts for the password)
  logout                        Log out
  whoami                        Show the logged in user
  flash [clear]                 Show or discard the pending notification

Flags:
%s`, fs.FlagUsages())
}
