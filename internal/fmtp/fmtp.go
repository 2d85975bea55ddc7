// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package fmtp decides whether two payload formats can be negotiated
// against each other from their rtpmap and fmtp lines.
package fmtp

import (
	"strings"
)

func defaultClockRate(mimeType string) uint32 {
	defaults := map[string]uint32{
		"audio/opus": 48000,
		"audio/pcmu": 8000,
		"audio/pcma": 8000,
		"audio/g722": 8000,
	}

	if def, ok := defaults[strings.ToLower(mimeType)]; ok {
		return def
	}

	return 90000
}

func defaultChannels(mimeType string) uint16 {
	defaults := map[string]uint16{
		"audio/opus": 2,
	}

	if def, ok := defaults[strings.ToLower(mimeType)]; ok {
		return def
	}

	return 1
}

func parseParameters(line string) map[string]string {
	parameters := make(map[string]string)

	for _, p := range strings.Split(line, ";") {
		pp := strings.SplitN(strings.TrimSpace(p), "=", 2)
		key := strings.ToLower(pp[0])
		if key == "" {
			continue
		}
		var value string
		if len(pp) > 1 {
			value = pp[1]
		}
		parameters[key] = value
	}

	return parameters
}

// ClockRateEqual compares two clock rates, a zero rate being the default
// of the MIME type.
func ClockRateEqual(mimeType string, valA, valB uint32) bool {
	if valA == 0 {
		valA = defaultClockRate(mimeType)
	}
	if valB == 0 {
		valB = defaultClockRate(mimeType)
	}

	return valA == valB
}

// ChannelsEqual compares two channel counts. RFC 8866 lets the count be
// omitted when it is one.
func ChannelsEqual(mimeType string, valA, valB uint16) bool {
	if valA == 0 {
		valA = defaultChannels(mimeType)
	}
	if valB == 0 {
		valB = defaultChannels(mimeType)
	}

	return valA == valB
}

// paramsConsistent is false when a key present on both sides has
// different values.
func paramsConsistent(valA, valB map[string]string) bool {
	for k, v := range valA {
		if vb, ok := valB[k]; ok && !strings.EqualFold(vb, v) {
			return false
		}
	}

	return true
}

// FMTP is a parsed payload format.
type FMTP interface {
	// MimeType returns the MimeType associated with the fmtp.
	MimeType() string
	// Match reports whether f can be negotiated against this format.
	Match(f FMTP) bool
	// Parameter returns the value of key in the fmtp line.
	Parameter(key string) (string, bool)
}

// Parse parses the fmtp line of a payload format.
func Parse(mimeType string, clockRate uint32, channels uint16, line string) FMTP {
	parameters := parseParameters(line)

	switch {
	case strings.EqualFold(mimeType, "video/h264"):
		return &h264FMTP{parameters: parameters}
	case strings.EqualFold(mimeType, "video/vp9"):
		return &vp9FMTP{parameters: parameters}
	case strings.EqualFold(mimeType, "video/av1"):
		return &av1FMTP{parameters: parameters}
	default:
		return &genericFMTP{
			mimeType:   mimeType,
			clockRate:  clockRate,
			channels:   channels,
			parameters: parameters,
		}
	}
}

type genericFMTP struct {
	mimeType   string
	clockRate  uint32
	channels   uint16
	parameters map[string]string
}

func (g *genericFMTP) MimeType() string {
	return g.mimeType
}

// Match requires the same MIME type, clock rate and channel count, and
// no parameter both sides set differently.
func (g *genericFMTP) Match(b FMTP) bool {
	f, ok := b.(*genericFMTP)
	if !ok {
		return false
	}

	return strings.EqualFold(g.mimeType, f.MimeType()) &&
		ClockRateEqual(g.mimeType, g.clockRate, f.clockRate) &&
		ChannelsEqual(g.mimeType, g.channels, f.channels) &&
		paramsConsistent(g.parameters, f.parameters)
}

func (g *genericFMTP) Parameter(key string) (string, bool) {
	v, ok := g.parameters[key]

	return v, ok
}
