// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fmtp

type av1FMTP struct {
	parameters map[string]string
}

func (h *av1FMTP) MimeType() string {
	return "video/av1"
}

// Match compares profile, the "Main" profile 0 when absent.
func (h *av1FMTP) Match(b FMTP) bool {
	c, ok := b.(*av1FMTP)
	if !ok {
		return false
	}

	return parameterOr(h.parameters, "profile", "0") == parameterOr(c.parameters, "profile", "0")
}

func (h *av1FMTP) Parameter(key string) (string, bool) {
	v, ok := h.parameters[key]

	return v, ok
}
