package commands

import (
	"errors"
	"fmt"
	"io"

	"tasklist/internal/exitcode"
	"tasklist/internal/store"
)

// reportRefError prints a task reference or store error and returns the
// exit code for it.
func reportRefError(errOut io.Writer, cmd string, ref TaskRef, err error) int {
	switch {
	case errors.Is(err, ErrTaskRefRequired):
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	case errors.Is(err, store.ErrOutOfRange):
		fmt.Fprintf(errOut, "error: task number out of range: %s\n", ref)
		return exitcode.UserError
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintf(errOut, "error: task not found: %s\n", ref)
		return exitcode.UserError
	case errors.Is(err, store.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: ambiguous task id: %s\n", ref)
		return exitcode.UserError
	}
	return reportError(errOut, cmd, err)
}

// reportError prints a store error and returns the exit code for it.
func reportError(errOut io.Writer, cmd string, err error) int {
	if errors.Is(err, store.ErrUnsupported) {
		fmt.Fprintf(errOut, "error: %s is not available for this task list variant\n", cmd)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: storage error: %v\n", err)
	return exitcode.StorageError
}

// resolveRef parses args as a single task reference and resolves it to a
// position in st. On failure it reports the error and returns ok false
// with the exit code to return.
func resolveRef(st *store.Store, cmd string, args []string, errOut io.Writer) (ref TaskRef, index int, code int, ok bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return ref, -1, exitcode.UserError, false
	}

	index, err = ref.Index(st)
	if err != nil {
		return ref, -1, reportRefError(errOut, cmd, ref, err), false
	}
	return ref, index, exitcode.Success, true
}
