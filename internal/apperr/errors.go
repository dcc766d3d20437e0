// Package apperr defines the error taxonomy shared across the engine.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrDuplicateConflict signals that two writers raced on the same new
	// key. The whole operation is safe to retry after a fresh read.
	ErrDuplicateConflict = errors.New("duplicate conflict")
)

// InvalidScoreError reports a score outside the [0,1] contract.
// This is a caller bug, not a retryable condition.
type InvalidScoreError struct {
	Dimension string
	Value     float64
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid %s score %.2f: must be within [0,1]", e.Dimension, e.Value)
}

// ReviewReason describes one failing score dimension.
type ReviewReason struct {
	Dimension string  `json:"dimension"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

func (r ReviewReason) String() string {
	return fmt.Sprintf("%s (%.2f) below threshold (%.2f)", r.Dimension, r.Value, r.Threshold)
}

// ReviewRequiredError is a control-flow signal, not a failure: the content
// scored below the configured thresholds and needs human confirmation
// before the caller re-issues the operation. The engine keeps no pending
// state; a re-submission is a fresh call.
type ReviewRequiredError struct {
	Reasons []ReviewReason
}

func (e *ReviewRequiredError) Error() string {
	parts := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		parts[i] = r.String()
	}
	return "review required: " + strings.Join(parts, ", ")
}

// CorruptStoreError reports an unparsable store file. The writer leaves the
// original file untouched; the store is unusable until manually repaired.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure. The temp-file discipline guarantees
// no partial state was left visible, so the operation is safe to retry.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// OrphanedNoteError marks the one accepted inconsistency window: the note
// file was committed but its index entry was not. The orphan is detectable
// by a status scan and reconcilable afterwards.
type OrphanedNoteError struct {
	NotePath string
	Err      error
}

func (e *OrphanedNoteError) Error() string {
	return fmt.Sprintf("note %s committed but index update failed: %v", e.NotePath, e.Err)
}

func (e *OrphanedNoteError) Unwrap() error { return e.Err }
