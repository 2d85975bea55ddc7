// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fmtp

import (
	"encoding/hex"
	"strings"
)

// RFC 6184 default when profile-level-id is absent.
const h264DefaultProfileLevelID = "420010"

type h264FMTP struct {
	parameters map[string]string
}

func (h *h264FMTP) MimeType() string {
	return "video/h264"
}

// profileLevelIDMatches compares profile_idc and profile-iop. The level
// is left to the sender.
func profileLevelIDMatches(a, b string) bool {
	aa, err := hex.DecodeString(a)
	if err != nil || len(aa) < 2 {
		return false
	}
	bb, err := hex.DecodeString(b)
	if err != nil || len(bb) < 2 {
		return false
	}

	return aa[0] == bb[0] && aa[1] == bb[1]
}

// Match requires the same packetization-mode, 0 when absent, and a
// compatible profile-level-id.
func (h *h264FMTP) Match(b FMTP) bool {
	c, ok := b.(*h264FMTP)
	if !ok {
		return false
	}

	if parameterOr(h.parameters, "packetization-mode", "0") != parameterOr(c.parameters, "packetization-mode", "0") {
		return false
	}

	return profileLevelIDMatches(
		strings.ToLower(parameterOr(h.parameters, "profile-level-id", h264DefaultProfileLevelID)),
		strings.ToLower(parameterOr(c.parameters, "profile-level-id", h264DefaultProfileLevelID)),
	)
}

func (h *h264FMTP) Parameter(key string) (string, bool) {
	v, ok := h.parameters[key]

	return v, ok
}
