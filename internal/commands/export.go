package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tasklist/internal/config"
	"tasklist/internal/exitcode"
	"tasklist/internal/output"
	"tasklist/internal/store"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
	path   string
}

// SetOptions sets the --format and --output flags (for testing).
func (c *ExportCmd) SetOptions(format, path string) {
	c.format = format
	c.path = path
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export tasks" }
func (c *ExportCmd) Usage() string {
	return "tasklist export [common flags] [--format json|yaml|yml|csv|pdf] [--output <file>]"
}
func (c *ExportCmd) NeedsStore() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "", "")
	fs.StringVar(&c.format, "f", "", "")
	fs.StringVar(&c.path, "output", "", "")
	fs.StringVar(&c.path, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	format := strings.ToLower(strings.TrimSpace(c.format))
	switch format {
	case "":
		format = formatFromPath(c.path)
	case "yml":
		format = output.FormatYAML
	}
	if !validFormat(format) {
		fmt.Fprintf(errOut, "error: unknown export format: %s (want one of %s)\n", format, strings.Join(output.Formats, ", "))
		return exitcode.UserError
	}

	if c.path == "" || c.path == "-" {
		if err := output.Export(out, format, st.Snapshot(), st.Variant()); err != nil {
			fmt.Fprintf(errOut, "error: export failed: %v\n", err)
			return exitcode.StorageError
		}
		return exitcode.Success
	}

	f, err := os.Create(c.path)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := output.Export(f, format, st.Snapshot(), st.Variant()); err != nil {
		f.Close()
		fmt.Fprintf(errOut, "error: export failed: %v\n", err)
		return exitcode.StorageError
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "error: export failed: %v\n", err)
		return exitcode.StorageError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// formatFromPath picks a format from the output file extension,
// defaulting to JSON.
func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if validFormat(ext) {
		return ext
	}
	if ext == "yml" {
		return output.FormatYAML
	}
	return output.FormatJSON
}

func validFormat(format string) bool {
	format = strings.ToLower(format)
	for _, f := range output.Formats {
		if f == format {
			return true
		}
	}
	return false
}
