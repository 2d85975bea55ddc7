// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fmtp

type vp9FMTP struct {
	parameters map[string]string
}

func (h *vp9FMTP) MimeType() string {
	return "video/vp9"
}

// Match compares profile-id, 0 when absent (draft-ietf-payload-vp9).
func (h *vp9FMTP) Match(b FMTP) bool {
	c, ok := b.(*vp9FMTP)
	if !ok {
		return false
	}

	return parameterOr(h.parameters, "profile-id", "0") == parameterOr(c.parameters, "profile-id", "0")
}

func (h *vp9FMTP) Parameter(key string) (string, bool) {
	v, ok := h.parameters[key]

	return v, ok
}

func parameterOr(parameters map[string]string, key, fallback string) string {
	if v, ok := parameters[key]; ok {
		return v
	}

	return fallback
}
