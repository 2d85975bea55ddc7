// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandHex(t *testing.T) {
	isHex := regexp.MustCompile(`^[0-9a-f]*$`)

	testCases := []struct {
		words       int
		expectedLen int
	}{
		{0, 0},
		{1, 8},
		{4, 32},
	}

	for i, testCase := range testCases {
		s, err := RandHex(testCase.words)
		require.NoError(t, err)
		assert.Len(t, s, testCase.expectedLen, "testCase: %d %v", i, testCase)
		assert.Regexp(t, isHex, s, "testCase: %d %v", i, testCase)
	}

	a, err := RandHex(4)
	require.NoError(t, err)
	b, err := RandHex(4)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRandSessionID(t *testing.T) {
	for i := 0; i < 64; i++ {
		id, err := RandSessionID()
		require.NoError(t, err)
		assert.Zero(t, id>>63)
	}
}
