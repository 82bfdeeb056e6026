package vdf

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel every caller-error in this package
// wraps (spec.md §7.1: "surfaced as a distinct kind... and not caught
// internally"). Test with errors.Is(err, vdf.ErrInvalidArgument).
var ErrInvalidArgument = errors.New("vdf: invalid argument")

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
