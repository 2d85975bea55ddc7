// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

// RTPTransceiverInit is used when calling AddTransceiver to provide
// configuration options for the new transceiver.
type RTPTransceiverInit struct {
	Direction RTPTransceiverDirection
	// StreamIDs are announced in a=msid when the transceiver sends.
	StreamIDs []string
	// Rids enable simulcast on the send track.
	Rids []string
}
