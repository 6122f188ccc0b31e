package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcli/internal/app"
	"taskcli/internal/config"
	"taskcli/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the session token" }
func (c *LoginCmd) Usage() string     { return "taskcli login <username> <password>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	username, password, code := credentialArgs(args, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := a.Session.Login(ctx, username, password); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", username)
	}
	return exitcode.Success
}

// RegisterCmd implements the register command. Same contract as login, via
// the register endpoint.
type RegisterCmd struct{}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string     { return "taskcli register <username> <password>" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	username, password, code := credentialArgs(args, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := a.Session.Register(ctx, username, password); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "registered as %s\n", username)
	}
	return exitcode.Success
}

func credentialArgs(args []string, errOut io.Writer) (username, password string, code int) {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: username and password required")
		return "", "", exitcode.UserError
	}
	return args[0], args[1], exitcode.Success
}
