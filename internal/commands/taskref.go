package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tasklist/internal/store"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position, 0 if ID is set
	ID  string // task id or id prefix
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// An all-digit argument is a 1-based position as printed by list.
// An argument made of hex digits and dashes is a task id or id prefix.
// Anything else is an invalid reference.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}

	arg := strings.TrimSpace(args[0])

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}

	if isIDLike(arg) {
		return TaskRef{ID: strings.ToLower(arg)}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
}

// Index returns the 0-based position the reference addresses in st.
// Positions are not range checked; the store reports out of range.
func (r TaskRef) Index(st *store.Store) (int, error) {
	if r.ID != "" {
		return st.Resolve(r.ID)
	}
	return r.Num - 1, nil
}

// String returns the reference as the user wrote it.
func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isIDLike returns true if s could be a uuid or a prefix of one.
func isIDLike(s string) bool {
	if s == "" {
		return false
	}
	hasHex := false
	for _, r := range s {
		switch {
		case r == '-':
		case unicode.Is(unicode.ASCII_Hex_Digit, r):
			hasHex = true
		default:
			return false
		}
	}
	return hasHex
}
