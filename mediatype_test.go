// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMediaType(t *testing.T) {
	testCases := []struct {
		mediaTypeString string
		expected        MediaType
	}{
		{unknownStr, MediaType(Unknown)},
		{"audio", MediaTypeAudio},
		{"video", MediaTypeVideo},
		{"application", MediaTypeApplication},
	}

	for i, testCase := range testCases {
		assert.Equal(t,
			testCase.expected,
			NewMediaType(testCase.mediaTypeString),
			"testCase: %d %v", i, testCase,
		)
		assert.Equal(t, testCase.mediaTypeString, testCase.expected.String(), "testCase: %d %v", i, testCase)
	}
}

func TestExtensionMediaType_Matches(t *testing.T) {
	assert.True(t, extensionMediaTypeAudio.matches(MediaTypeAudio))
	assert.False(t, extensionMediaTypeAudio.matches(MediaTypeVideo))
	assert.True(t, extensionMediaTypeVideo.matches(MediaTypeVideo))
	assert.True(t, extensionMediaTypeAudioVideo.matches(MediaTypeAudio))
	assert.True(t, extensionMediaTypeAudioVideo.matches(MediaTypeVideo))
	assert.False(t, extensionMediaTypeAudioVideo.matches(MediaTypeApplication))
}
