// Package errs is the project's seam over cockroachdb/errors. Layers
// mark their sentinel errors onto low-level causes so handlers can
// branch with errors.Is while the full cause chain stays loggable.
package errs

import (
	"fmt"
	"strings"

	pkgerr "github.com/cockroachdb/errors"
)

// New returns a stack-carrying error suitable for package-level
// sentinels.
func New(msg string) error {
	return pkgerr.New(msg)
}

// Wrap annotates err with msg, keeping the original cause and stack.
// A nil err stays nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return pkgerr.Wrap(err, msg)
}

// Mark attaches sentinel to err so errors.Is(err, sentinel) holds
// without the sentinel replacing the underlying cause. A nil err
// degenerates to the sentinel itself.
func Mark(err error, sentinel error) error {
	if err == nil {
		return sentinel
	}
	return pkgerr.Mark(err, sentinel)
}

// ExtractStackLines renders the leading lines of err's verbose form,
// enough context for a structured log field without dumping the whole
// trace.
func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	lines := strings.Split(fmt.Sprintf("%+v", err), "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
