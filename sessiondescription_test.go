// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"testing"

	"github.com/pion/sdp/v3"
	"github.com/stretchr/testify/assert"
)

func TestDescriptionKind_String(t *testing.T) {
	testCases := []struct {
		kind           DescriptionKind
		expectedString string
	}{
		{DescriptionKind(Unknown), unknownStr},
		{DescriptionKindCurrent, "current"},
		{DescriptionKindPending, "pending"},
		{DescriptionKindPendingOrCurrent, "pending-or-current"},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expectedString,
			testCase.kind.String(),
			"testCase: %d %v", i, testCase,
		)
	}
}

func TestPickDescription(t *testing.T) {
	pending := &sdp.SessionDescription{SessionName: "pending"}
	current := &sdp.SessionDescription{SessionName: "current"}

	testCases := []struct {
		kind     DescriptionKind
		pending  *sdp.SessionDescription
		current  *sdp.SessionDescription
		expected *sdp.SessionDescription
	}{
		{DescriptionKindCurrent, pending, current, current},
		{DescriptionKindPending, pending, current, pending},
		{DescriptionKindPending, nil, current, nil},
		{DescriptionKindPendingOrCurrent, pending, current, pending},
		{DescriptionKindPendingOrCurrent, nil, current, current},
		{DescriptionKindPendingOrCurrent, nil, nil, nil},
	}

	for i, testCase := range testCases {
		assert.Same(t,
			testCase.expected,
			pickDescription(testCase.kind, testCase.pending, testCase.current),
			"testCase: %d %v", i, testCase.kind,
		)
	}
}
