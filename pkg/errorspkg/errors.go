// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates internal server error.
var ErrInternal = errors.New("internal")

// ErrTransient indicates storage contention that is safe to retry.
var ErrTransient = errors.New("transient storage contention")
