package parameterize

import "errors"

// Callers match these with errors.Is; returned errors wrap them with the
// offending dimensions.
var (
	// ErrInvalidInputShape is returned before any assembly when the input
	// tables are mutually inconsistent.
	ErrInvalidInputShape = errors.New("parameterize: invalid input shape")

	// ErrSolveFailed is returned when the saddle-point system cannot be
	// factorized or solved. No output is produced.
	ErrSolveFailed = errors.New("parameterize: solve failed")
)
