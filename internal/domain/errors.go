package domain

import "errors"

// Error taxonomy surfaced to callers. Internal detail is wrapped onto these
// sentinels with fmt.Errorf("...: %w", ...) and recovered with errors.Is.
var (
	// ErrNotFound covers both "does not exist" and "caller does not own it".
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks unparseable dates, malformed filters and the
	// like.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict marks operations rejected by a business rule, such as
	// removing the default plan.
	ErrConflict = errors.New("conflict")

	// ErrInternalInconsistency marks data-integrity violations that should
	// never occur, such as two periods sharing a periodStart. It is surfaced
	// loudly, never silently repaired.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)
