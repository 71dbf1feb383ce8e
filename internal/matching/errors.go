// Package matching is the assignment engine behind matching questions: the
// drag identifier codec, the immutable assignment state, the drag controller
// and the row-height synchronizer for the two-column layout.
package matching

import "errors"

var (
	// ErrInvalidIdentifier means a drag id matched none of the known forms.
	// It points at a rendering bug and is only ever logged.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrPreconditionFailed means a transition referenced an option that is
	// not where the caller expected it. Stale ids from rapid input produce
	// this; the controller treats it as a no-op drag.
	ErrPreconditionFailed = errors.New("precondition failed")
)
