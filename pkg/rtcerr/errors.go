// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package rtcerr implements the error kinds reported by JSEP session
// operations. Each kind mirrors the DOMException name a browser would
// surface for the same failure.
package rtcerr

import (
	"fmt"
)

// UnknownError indicates the operation failed for an unknown transient reason.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("UnknownError: %v", e.Err)
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

// InvalidStateError indicates the session is not in a signaling state that
// allows the operation.
type InvalidStateError struct {
	Err error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("InvalidStateError: %v", e.Err)
}

func (e *InvalidStateError) Unwrap() error {
	return e.Err
}

// InvalidAccessError indicates a description was well formed but is not
// acceptable to the session (validation failed).
type InvalidAccessError struct {
	Err error
}

func (e *InvalidAccessError) Error() string {
	return fmt.Sprintf("InvalidAccessError: %v", e.Err)
}

func (e *InvalidAccessError) Unwrap() error {
	return e.Err
}

// NotSupportedError indicates the operation is not supported.
type NotSupportedError struct {
	Err error
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("NotSupportedError: %v", e.Err)
}

func (e *NotSupportedError) Unwrap() error {
	return e.Err
}

// InvalidModificationError indicates a local description was modified in a
// way the session cannot accept, or was applied without being generated.
type InvalidModificationError struct {
	Err error
}

func (e *InvalidModificationError) Error() string {
	return fmt.Sprintf("InvalidModificationError: %v", e.Err)
}

func (e *InvalidModificationError) Unwrap() error {
	return e.Err
}

// OperationError indicates the operation failed for an operation-specific
// reason, for example unparseable SDP or no matching codecs.
type OperationError struct {
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("OperationError: %v", e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// RangeError indicates an error when a value is not in the set or range
// of allowed values.
type RangeError struct {
	Err error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("RangeError: %v", e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}
