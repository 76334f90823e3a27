package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// password returns the password from file, or prompts for it.
func (c *cli) password(prompt, file string) (string, error) {
	if file != "" {
		return readPasswordFile(file)
	}
	return c.prompt(prompt)
}

// newPassword prompts for a password and its confirmation.
func (c *cli) newPassword() (password, confirm string, err error) {
	if password, err = c.prompt("Password: "); err != nil {
		return "", "", err
	}
	if confirm, err = c.prompt("Confirm password: "); err != nil {
		return "", "", err
	}
	return password, confirm, nil
}

// prompt reads one secret line. On a terminal echo is turned off;
// otherwise the next line of input is used, which is what scripts and
// tests feed in.
func (c *cli) prompt(label string) (string, error) {
	c.ui.prompt(label)

	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		c.ui.newline()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := c.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readPasswordFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read password file: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
