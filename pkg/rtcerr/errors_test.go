// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package rtcerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("cause")

	testCases := []struct {
		err      error
		expected string
	}{
		{&UnknownError{Err: cause}, "UnknownError: cause"},
		{&InvalidStateError{Err: cause}, "InvalidStateError: cause"},
		{&InvalidAccessError{Err: cause}, "InvalidAccessError: cause"},
		{&NotSupportedError{Err: cause}, "NotSupportedError: cause"},
		{&InvalidModificationError{Err: cause}, "InvalidModificationError: cause"},
		{&OperationError{Err: cause}, "OperationError: cause"},
		{&RangeError{Err: cause}, "RangeError: cause"},
	}

	for i, testCase := range testCases {
		assert.Equal(t, testCase.expected, testCase.err.Error(), "testCase: %d %v", i, testCase)
		assert.ErrorIs(t, testCase.err, cause, "testCase: %d %v", i, testCase)
	}
}

func TestErrorAs(t *testing.T) {
	var err error = &InvalidStateError{Err: errors.New("closed")}

	var stateErr *InvalidStateError
	assert.True(t, errors.As(err, &stateErr))

	var accessErr *InvalidAccessError
	assert.False(t, errors.As(err, &accessErr))
}
