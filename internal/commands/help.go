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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskcli help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskcli                                 List tasks
  taskcli list [common flags]             List tasks
  taskcli add [common flags] [--desc <text>] <title...>
  taskcli edit [common flags] [--title <text>] [--desc <text>] <n>
  taskcli done [common flags] <n>         Toggle completed state
  taskcli rm [common flags] <n>           Delete a task
  taskcli ui [common flags]               Interactive mode
  taskcli register [common flags] <username> <password>
  taskcli login [common flags] <username> <password>
  taskcli logout [common flags]
  taskcli whoami [common flags]
  taskcli help
  taskcli version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print request traces to stderr
`
