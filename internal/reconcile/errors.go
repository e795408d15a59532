// Package reconcile computes and applies the one-way sync of GitHub issues
// into task records: snapshot, diff, field mapping and batched writes.
package reconcile

import "errors"

// Reconcile errors
var (
	ErrProjectNotFound = errors.New("project not found for repository")
	ErrInvalidBatch    = errors.New("batch size must be positive")
)
