// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"github.com/pion/sdp/v3"
)

// DescriptionKind selects which of the current and pending descriptions a
// getter returns.
type DescriptionKind int

const (
	// DescriptionKindCurrent is the description of the last completed
	// negotiation.
	DescriptionKindCurrent DescriptionKind = iota + 1

	// DescriptionKindPending is the description of the negotiation in
	// progress.
	DescriptionKindPending

	// DescriptionKindPendingOrCurrent is the pending description when there
	// is one and the current one otherwise.
	DescriptionKindPendingOrCurrent
)

// This is done this way because of a linter.
const (
	descriptionKindCurrentStr          = "current"
	descriptionKindPendingStr          = "pending"
	descriptionKindPendingOrCurrentStr = "pending-or-current"
)

func (k DescriptionKind) String() string {
	switch k {
	case DescriptionKindCurrent:
		return descriptionKindCurrentStr
	case DescriptionKindPending:
		return descriptionKindPendingStr
	case DescriptionKindPendingOrCurrent:
		return descriptionKindPendingOrCurrentStr
	default:
		return ErrUnknownType.Error()
	}
}

func pickDescription(kind DescriptionKind, pending, current *sdp.SessionDescription) *sdp.SessionDescription {
	switch kind {
	case DescriptionKindPending:
		return pending
	case DescriptionKindPendingOrCurrent:
		if pending != nil {
			return pending
		}
	default:
	}

	return current
}
