package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/output"
	"tasklist/internal/store"
	"tasklist/internal/task"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command. It advances a task through
// none, Not Started, In Progress and Completed, and prints the new status.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"cycle"} }
func (c *StatusCmd) Synopsis() string  { return "Advance a task's status" }
func (c *StatusCmd) Usage() string     { return "tasklist status [common flags] <ref>" }
func (c *StatusCmd) NeedsStore() bool  { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if st.Variant() != task.VariantStatus {
		fmt.Fprintln(errOut, "error: status is not available for the completion variant (use: tasklist done <ref>)")
		return exitcode.UserError
	}

	ref, index, code, ok := resolveRef(st, c.Name(), args, errOut)
	if !ok {
		return code
	}

	cycled, err := st.CycleStatus(ctx, index)
	if err != nil {
		return reportRefError(errOut, c.Name(), ref, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, output.StatusText(cycled.Status))
	}
	return exitcode.Success
}
