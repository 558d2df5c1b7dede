package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/store"
	"tasklist/internal/task"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It moves a task to the completed
// list and exists only in the completion variant.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "tasklist done [common flags] <ref>" }
func (c *DoneCmd) NeedsStore() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if st.Variant() != task.VariantCompletion {
		fmt.Fprintln(errOut, "error: done is not available for the status variant (use: tasklist status <ref>)")
		return exitcode.UserError
	}

	ref, index, code, ok := resolveRef(st, c.Name(), args, errOut)
	if !ok {
		return code
	}

	if _, err := st.Complete(ctx, index); err != nil {
		return reportRefError(errOut, c.Name(), ref, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
