// Package xerrors defines the five sentinel error kinds the core surfaces,
// wrapped at each call site with github.com/pkg/errors rather than
// substituted for one another, the way the teacher's assembler package
// keeps a small closed set of named parse/encode errors instead of raw
// fmt.Errorf strings.
package xerrors

import "github.com/pkg/errors"

// Sentinel error kinds. Callers compare against these with errors.Is after
// unwrapping a pkg/errors context chain.
var (
	// ErrIO wraps any filesystem, network, or stream failure.
	ErrIO = errors.New("io error")
	// ErrDecode wraps a malformed persisted sample or vocabulary file.
	ErrDecode = errors.New("decode error")
	// ErrInvariant wraps a violated data-model invariant (e.g. resolving the
	// UNKNOWN vocabulary index).
	ErrInvariant = errors.New("invariant violation")
	// ErrCycle wraps an unreachable back-edge-breaking failure: a successor
	// entered an in-stack node during topological sort.
	ErrCycle = errors.New("cycle in topological break")
	// ErrTool wraps a non-zero exit or malformed output from an external
	// disassembly tool invocation.
	ErrTool = errors.New("tool failure")
)

// Wrap attaches context to err without discarding whichever sentinel kind
// err already wraps (or was itself).
func Wrap(err error, context string) error {
	return errors.Wrap(err, context)
}

// Wrapf is Wrap with a formatted context message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// IO wraps err as an ErrIO occurrence with context.
func IO(err error, context string) error {
	return errors.Wrap(join(ErrIO, err), context)
}

// Decode wraps err as an ErrDecode occurrence with context.
func Decode(err error, context string) error {
	return errors.Wrap(join(ErrDecode, err), context)
}

// Invariant constructs a bare ErrInvariant occurrence with context — these
// typically have no underlying error, just a violated assumption.
func Invariant(context string) error {
	return errors.Wrap(ErrInvariant, context)
}

// Cycle constructs a bare ErrCycle occurrence with context. Reaching this
// path indicates a bug in the back-edge rules, never expected input.
func Cycle(context string) error {
	return errors.Wrap(ErrCycle, context)
}

// Tool wraps err as an ErrTool occurrence with context.
func Tool(err error, context string) error {
	return errors.Wrap(join(ErrTool, err), context)
}

// join produces an error whose message includes both sentinel and cause
// while still unwrapping to the sentinel via errors.Is, since pkg/errors'
// Wrap only tracks a single cause chain.
func join(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &wrapped{sentinel: sentinel, cause: cause}
}

type wrapped struct {
	sentinel error
	cause    error
}

func (w *wrapped) Error() string { return w.cause.Error() }
func (w *wrapped) Unwrap() error { return w.sentinel }
func (w *wrapped) Cause() error  { return w.cause }
