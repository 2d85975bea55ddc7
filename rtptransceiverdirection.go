// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"github.com/pion/sdp/v3"
)

// RTPTransceiverDirection indicates the direction of the RTPTransceiver.
type RTPTransceiverDirection int

const (
	// RTPTransceiverDirectionSendrecv indicates the transceiver will offer
	// to send and to receive RTP.
	RTPTransceiverDirectionSendrecv RTPTransceiverDirection = iota + 1

	// RTPTransceiverDirectionSendonly indicates the transceiver will offer
	// to send RTP.
	RTPTransceiverDirectionSendonly

	// RTPTransceiverDirectionRecvonly indicates the transceiver will offer
	// to receive RTP.
	RTPTransceiverDirectionRecvonly

	// RTPTransceiverDirectionInactive indicates the transceiver will neither
	// send nor receive RTP.
	RTPTransceiverDirectionInactive
)

// This is done this way because of a linter.
const (
	rtpTransceiverDirectionSendrecvStr = "sendrecv"
	rtpTransceiverDirectionSendonlyStr = "sendonly"
	rtpTransceiverDirectionRecvonlyStr = "recvonly"
	rtpTransceiverDirectionInactiveStr = "inactive"
)

// NewRTPTransceiverDirection defines a procedure for creating a new
// RTPTransceiverDirection from a raw string naming the transceiver direction.
func NewRTPTransceiverDirection(raw string) RTPTransceiverDirection {
	switch raw {
	case rtpTransceiverDirectionSendrecvStr:
		return RTPTransceiverDirectionSendrecv
	case rtpTransceiverDirectionSendonlyStr:
		return RTPTransceiverDirectionSendonly
	case rtpTransceiverDirectionRecvonlyStr:
		return RTPTransceiverDirectionRecvonly
	case rtpTransceiverDirectionInactiveStr:
		return RTPTransceiverDirectionInactive
	default:
		return RTPTransceiverDirection(Unknown)
	}
}

func (t RTPTransceiverDirection) String() string {
	switch t {
	case RTPTransceiverDirectionSendrecv:
		return rtpTransceiverDirectionSendrecvStr
	case RTPTransceiverDirectionSendonly:
		return rtpTransceiverDirectionSendonlyStr
	case RTPTransceiverDirectionRecvonly:
		return rtpTransceiverDirectionRecvonlyStr
	case RTPTransceiverDirectionInactive:
		return rtpTransceiverDirectionInactiveStr
	default:
		return ErrUnknownType.Error()
	}
}

// Reverse returns the direction as seen from the remote side.
func (t RTPTransceiverDirection) Reverse() RTPTransceiverDirection {
	switch t {
	case RTPTransceiverDirectionSendonly:
		return RTPTransceiverDirectionRecvonly
	case RTPTransceiverDirectionRecvonly:
		return RTPTransceiverDirectionSendonly
	default:
		return t
	}
}

// HasSend reports whether the direction includes sending.
func (t RTPTransceiverDirection) HasSend() bool {
	return t == RTPTransceiverDirectionSendrecv || t == RTPTransceiverDirectionSendonly
}

// HasRecv reports whether the direction includes receiving.
func (t RTPTransceiverDirection) HasRecv() bool {
	return t == RTPTransceiverDirectionSendrecv || t == RTPTransceiverDirectionRecvonly
}

// Intersect keeps only the capabilities present in both directions.
func (t RTPTransceiverDirection) Intersect(o RTPTransceiverDirection) RTPTransceiverDirection {
	return newRTPTransceiverDirection(t.HasSend() && o.HasSend(), t.HasRecv() && o.HasRecv())
}

func newRTPTransceiverDirection(send, recv bool) RTPTransceiverDirection {
	switch {
	case send && recv:
		return RTPTransceiverDirectionSendrecv
	case send:
		return RTPTransceiverDirectionSendonly
	case recv:
		return RTPTransceiverDirectionRecvonly
	default:
		return RTPTransceiverDirectionInactive
	}
}

func (t RTPTransceiverDirection) sdpDirection() sdp.Direction {
	switch t {
	case RTPTransceiverDirectionSendonly:
		return sdp.DirectionSendOnly
	case RTPTransceiverDirectionRecvonly:
		return sdp.DirectionRecvOnly
	case RTPTransceiverDirectionInactive:
		return sdp.DirectionInactive
	default:
		return sdp.DirectionSendRecv
	}
}

func newRTPTransceiverDirectionFromSDP(d sdp.Direction) RTPTransceiverDirection {
	switch d {
	case sdp.DirectionSendOnly:
		return RTPTransceiverDirectionSendonly
	case sdp.DirectionRecvOnly:
		return RTPTransceiverDirectionRecvonly
	case sdp.DirectionInactive:
		return RTPTransceiverDirectionInactive
	default:
		return RTPTransceiverDirectionSendrecv
	}
}
