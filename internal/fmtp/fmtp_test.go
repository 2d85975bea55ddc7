// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fmtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParameters(t *testing.T) {
	testCases := map[string]struct {
		line       string
		parameters map[string]string
	}{
		"Empty": {"", map[string]string{}},
		"OneParam": {"key-name=value", map[string]string{
			"key-name": "value",
		}},
		"OneParamWithWhiteSpaces": {"\tkey-name=value ", map[string]string{
			"key-name": "value",
		}},
		"TwoParams": {"key-name=value;key2=value2", map[string]string{
			"key-name": "value",
			"key2":     "value2",
		}},
		"KeyIsLowered": {"Apt=96", map[string]string{
			"apt": "96",
		}},
		"Flag": {"key-name", map[string]string{
			"key-name": "",
		}},
	}

	for name, testCase := range testCases {
		assert.Equal(t, testCase.parameters, parseParameters(testCase.line), name)
	}
}

func TestParse(t *testing.T) {
	assert.IsType(t, &h264FMTP{}, Parse("video/H264", 90000, 0, "packetization-mode=1"))
	assert.IsType(t, &vp9FMTP{}, Parse("video/VP9", 90000, 0, ""))
	assert.IsType(t, &av1FMTP{}, Parse("video/AV1", 90000, 0, ""))

	generic := Parse("audio/opus", 48000, 2, "minptime=10;useinbandfec=1")
	assert.IsType(t, &genericFMTP{}, generic)
	assert.Equal(t, "audio/opus", generic.MimeType())

	v, ok := generic.Parameter("useinbandfec")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = generic.Parameter("stereo")
	assert.False(t, ok)
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		name  string
		a     FMTP
		b     FMTP
		match bool
	}{
		{
			"generic equal",
			Parse("audio/opus", 48000, 2, "minptime=10;useinbandfec=1"),
			Parse("audio/opus", 48000, 2, "minptime=10;useinbandfec=1"),
			true,
		},
		{
			"generic extra param",
			Parse("audio/opus", 48000, 2, "minptime=10"),
			Parse("audio/opus", 48000, 2, "minptime=10;stereo=1"),
			true,
		},
		{
			"generic inconsistent param",
			Parse("audio/opus", 48000, 2, "useinbandfec=1"),
			Parse("audio/opus", 48000, 2, "useinbandfec=0"),
			false,
		},
		{
			"generic value case is ignored",
			Parse("video/VP8", 90000, 0, "key=VALUE"),
			Parse("video/vp8", 90000, 0, "key=value"),
			true,
		},
		{
			"generic inferred clock rate",
			Parse("audio/PCMU", 0, 0, ""),
			Parse("audio/PCMU", 8000, 1, ""),
			true,
		},
		{
			"generic inferred channels",
			Parse("audio/opus", 48000, 0, ""),
			Parse("audio/opus", 48000, 2, ""),
			true,
		},
		{
			"generic different channels",
			Parse("audio/opus", 48000, 1, ""),
			Parse("audio/opus", 48000, 2, ""),
			false,
		},
		{
			"generic different mime type",
			Parse("audio/PCMU", 8000, 0, ""),
			Parse("audio/PCMA", 8000, 0, ""),
			false,
		},
		{
			"h264 same profile different level",
			Parse("video/H264", 90000, 0, "packetization-mode=1;profile-level-id=42e01f"),
			Parse("video/H264", 90000, 0, "packetization-mode=1;profile-level-id=42e034"),
			true,
		},
		{
			"h264 different profile",
			Parse("video/H264", 90000, 0, "packetization-mode=1;profile-level-id=42e01f"),
			Parse("video/H264", 90000, 0, "packetization-mode=1;profile-level-id=640c1f"),
			false,
		},
		{
			"h264 different packetization mode",
			Parse("video/H264", 90000, 0, "packetization-mode=1;profile-level-id=42e01f"),
			Parse("video/H264", 90000, 0, "packetization-mode=0;profile-level-id=42e01f"),
			false,
		},
		{
			"h264 default packetization mode",
			Parse("video/H264", 90000, 0, "profile-level-id=42e01f"),
			Parse("video/H264", 90000, 0, "packetization-mode=0;profile-level-id=42e01f"),
			true,
		},
		{
			"h264 invalid profile level id",
			Parse("video/H264", 90000, 0, "profile-level-id=zz"),
			Parse("video/H264", 90000, 0, "profile-level-id=42e01f"),
			false,
		},
		{
			"vp9 inferred profile",
			Parse("video/VP9", 90000, 0, ""),
			Parse("video/VP9", 90000, 0, "profile-id=0"),
			true,
		},
		{
			"vp9 different profile",
			Parse("video/VP9", 90000, 0, "profile-id=0"),
			Parse("video/VP9", 90000, 0, "profile-id=2"),
			false,
		},
		{
			"av1 inferred profile",
			Parse("video/AV1", 90000, 0, ""),
			Parse("video/AV1", 90000, 0, "profile=0"),
			true,
		},
		{
			"av1 different profile",
			Parse("video/AV1", 90000, 0, "profile=1"),
			Parse("video/AV1", 90000, 0, "profile=0"),
			false,
		},
		{
			"different codec families",
			Parse("video/VP9", 90000, 0, ""),
			Parse("video/AV1", 90000, 0, ""),
			false,
		},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.match, testCase.a.Match(testCase.b), testCase.name)
		assert.Equal(t, testCase.match, testCase.b.Match(testCase.a), testCase.name)
	}
}
