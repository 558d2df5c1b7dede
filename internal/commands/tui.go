package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/store"
	"tasklist/internal/ui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd implements the tui command.
type TUICmd struct {
	// in is the terminal input; nil means os.Stdin.
	in io.Reader
}

// SetInput sets the terminal input (for testing).
func (c *TUICmd) SetInput(in io.Reader) {
	c.in = in
}

func (c *TUICmd) Name() string      { return "tui" }
func (c *TUICmd) Aliases() []string { return nil }
func (c *TUICmd) Synopsis() string  { return "Open the interactive task view" }
func (c *TUICmd) Usage() string     { return "tasklist tui [common flags]" }
func (c *TUICmd) NeedsStore() bool  { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}

	err := ui.Run(ctx, st, in, out)
	if errors.Is(err, ui.ErrNotTerminal) {
		fmt.Fprintln(errOut, "error: tui requires a terminal")
		return exitcode.UserError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StorageError
	}
	return exitcode.Success
}
