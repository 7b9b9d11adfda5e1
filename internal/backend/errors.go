// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error variables for common gateway errors.
var (
	// ErrNotFound indicates the referenced chat session does not exist
	// server-side (e.g., a stale id after deletion elsewhere).
	ErrNotFound = errors.New("chat session not found")
)

// ValidationError is a local, pre-network failure (bad file type or size,
// empty message). It never reaches the backend.
type ValidationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Reason
}

// TimeoutError indicates a request exceeded its client-enforced bound.
// Distinct from BackendError so the UI can surface a different message.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Limit)
}

// BackendError represents a non-success HTTP status or a transport failure
// not covered by the other error types.
type BackendError struct {
	Op      string
	Status  int
	Message string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed (HTTP %d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// IsValidation returns true if err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTimeout returns true if err is a client-enforced timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsNotFound returns true if err indicates an unknown chat id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// statusError maps an HTTP error status to the taxonomy.
func statusError(op string, status int, body string) error {
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	return &BackendError{Op: op, Status: status, Message: body}
}

// transportError maps a transport-level failure to the taxonomy. Context
// deadline expiry becomes a TimeoutError when a bound was set by us.
func transportError(op string, limit time.Duration, err error) error {
	if limit > 0 && errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Limit: limit}
	}
	return &BackendError{Op: op, Message: err.Error()}
}
