package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"taskcli/internal/app"
	"taskcli/internal/config"
	"taskcli/internal/exitcode"
)

// Field limits enforced before hitting the backend.
const (
	MaxTitleLen       = 60
	MaxDescriptionLen = 150
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

// SetDescription sets the description flag value (for testing).
func (c *AddCmd) SetDescription(desc string) {
	c.description = desc
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "taskcli add [--desc <text>] <title...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		fmt.Fprintf(errOut, "error: title too long (max %d characters)\n", MaxTitleLen)
		return exitcode.UserError
	}

	var description *string
	if c.description != "" {
		if utf8.RuneCountInString(c.description) > MaxDescriptionLen {
			fmt.Fprintf(errOut, "error: description too long (max %d characters)\n", MaxDescriptionLen)
			return exitcode.UserError
		}
		description = &c.description
	}

	if _, err := a.Tasks.Create(ctx, title, description); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
