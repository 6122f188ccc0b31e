package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"taskcli/internal/api"
	"taskcli/internal/app"
	"taskcli/internal/config"
	"taskcli/internal/exitcode"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command: a partial update of title and/or
// description.
type EditCmd struct {
	title       string
	description string
	titleSet    bool
	descSet     bool
}

// SetTitle sets the title flag value (for testing).
func (c *EditCmd) SetTitle(title string) {
	c.title = title
	c.titleSet = true
}

// SetDescription sets the description flag value (for testing).
func (c *EditCmd) SetDescription(desc string) {
	c.description = desc
	c.descSet = true
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task's title or description" }
func (c *EditCmd) Usage() string     { return "taskcli edit [--title <text>] [--desc <text>] <n>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Func("title", "", func(v string) error {
		c.title = v
		c.titleSet = true
		return nil
	})
	fs.Func("desc", "", func(v string) error {
		c.description = v
		c.descSet = true
		return nil
	})
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	num, err := ParseRef(args)
	if err != nil {
		if err == ErrTaskRefRequired {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	if !c.titleSet && !c.descSet {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --desc)")
		return exitcode.UserError
	}

	var patch api.TaskPatch
	if c.titleSet {
		title := strings.TrimSpace(c.title)
		if title == "" {
			fmt.Fprintln(errOut, "error: title required")
			return exitcode.UserError
		}
		if utf8.RuneCountInString(title) > MaxTitleLen {
			fmt.Fprintf(errOut, "error: title too long (max %d characters)\n", MaxTitleLen)
			return exitcode.UserError
		}
		patch.Title = &title
	}
	if c.descSet {
		if utf8.RuneCountInString(c.description) > MaxDescriptionLen {
			fmt.Fprintf(errOut, "error: description too long (max %d characters)\n", MaxDescriptionLen)
			return exitcode.UserError
		}
		patch.Description = &c.description
	}

	task, err := resolveRef(a, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if _, err := a.Tasks.Update(ctx, task.ID, patch); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
