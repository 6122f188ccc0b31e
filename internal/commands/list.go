package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcli/internal/app"
	"taskcli/internal/config"
	"taskcli/internal/exitcode"
	"taskcli/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskcli` (no args) and `taskcli list`.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "taskcli list [common flags]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	// The list is loaded when the session resolves; read the result.
	snap := a.Tasks.Snapshot()
	if snap.Err != "" {
		fmt.Fprintf(errOut, "error: %s\n", snap.Err)
		return exitcode.BackendError
	}

	output.FormatTaskList(out, snap.Tasks, cfg.Quiet)
	return exitcode.Success
}
