// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

// AnswerOptions structure describes the options used to control the answer
// creation process.
type AnswerOptions struct{}

// OfferOptions structure describes the options used to control the offer
// creation process.
type OfferOptions struct {
	// ICERestart forces new ICE credentials. When this value is true, the
	// generated description will have ICE credentials that are different
	// from the current credentials.
	ICERestart bool
}
