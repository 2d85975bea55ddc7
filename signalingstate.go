// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"

	"github.com/pion/jsep/pkg/rtcerr"
)

type stateChangeOp int

const (
	stateChangeOpSetLocal stateChangeOp = iota + 1
	stateChangeOpSetRemote
)

func (op stateChangeOp) String() string {
	switch op {
	case stateChangeOpSetLocal:
		return "SetLocal"
	case stateChangeOpSetRemote:
		return "SetRemote"
	default:
		return "Unknown State Change Operation"
	}
}

// SignalingState indicates the signaling state of the offer/answer process.
type SignalingState int

const (
	// SignalingStateStable indicates there is no offer/answer exchange in
	// progress. This is also the initial state, in which case the local and
	// remote descriptions are nil.
	SignalingStateStable SignalingState = iota + 1

	// SignalingStateHaveLocalOffer indicates that a local description, of
	// type "offer", has been successfully applied.
	SignalingStateHaveLocalOffer

	// SignalingStateHaveRemoteOffer indicates that a remote description, of
	// type "offer", has been successfully applied.
	SignalingStateHaveRemoteOffer

	// SignalingStateHaveLocalPranswer indicates that a remote description
	// of type "offer" has been successfully applied and a local description
	// of type "pranswer" has been successfully applied. A Session commits a
	// local pranswer like an answer, so it never reports this state.
	SignalingStateHaveLocalPranswer

	// SignalingStateHaveRemotePranswer indicates that a local description
	// of type "offer" has been successfully applied and a remote description
	// of type "pranswer" has been successfully applied.
	SignalingStateHaveRemotePranswer

	// SignalingStateClosed indicates the Session has been closed.
	SignalingStateClosed
)

// This is done this way because of a linter.
const (
	signalingStateStableStr             = "stable"
	signalingStateHaveLocalOfferStr     = "have-local-offer"
	signalingStateHaveRemoteOfferStr    = "have-remote-offer"
	signalingStateHaveLocalPranswerStr  = "have-local-pranswer"
	signalingStateHaveRemotePranswerStr = "have-remote-pranswer"
	signalingStateClosedStr             = "closed"
)

func newSignalingState(raw string) SignalingState {
	switch raw {
	case signalingStateStableStr:
		return SignalingStateStable
	case signalingStateHaveLocalOfferStr:
		return SignalingStateHaveLocalOffer
	case signalingStateHaveRemoteOfferStr:
		return SignalingStateHaveRemoteOffer
	case signalingStateHaveLocalPranswerStr:
		return SignalingStateHaveLocalPranswer
	case signalingStateHaveRemotePranswerStr:
		return SignalingStateHaveRemotePranswer
	case signalingStateClosedStr:
		return SignalingStateClosed
	default:
		return SignalingState(Unknown)
	}
}

func (t SignalingState) String() string {
	switch t {
	case SignalingStateStable:
		return signalingStateStableStr
	case SignalingStateHaveLocalOffer:
		return signalingStateHaveLocalOfferStr
	case SignalingStateHaveRemoteOffer:
		return signalingStateHaveRemoteOfferStr
	case SignalingStateHaveLocalPranswer:
		return signalingStateHaveLocalPranswerStr
	case SignalingStateHaveRemotePranswer:
		return signalingStateHaveRemotePranswerStr
	case SignalingStateClosed:
		return signalingStateClosedStr
	default:
		return ErrUnknownType.Error()
	}
}

// checkNextSignalingState returns the state a Session moves to when a
// description of sdpType is applied in cur. Rollbacks and the implicit
// rollback before a replacement offer are handled by the caller.
func checkNextSignalingState(cur SignalingState, op stateChangeOp, sdpType SDPType) (SignalingState, error) {
	switch cur {
	case SignalingStateStable:
		// stable->SetLocal(offer)->have-local-offer
		// stable->SetRemote(offer)->have-remote-offer
		if sdpType == SDPTypeOffer {
			if op == stateChangeOpSetLocal {
				return SignalingStateHaveLocalOffer, nil
			}

			return SignalingStateHaveRemoteOffer, nil
		}
	case SignalingStateHaveLocalOffer, SignalingStateHaveRemotePranswer:
		// have-local-offer->SetRemote(answer|pranswer)->stable
		if op == stateChangeOpSetRemote && sdpType.isAnswer() {
			return SignalingStateStable, nil
		}
	case SignalingStateHaveRemoteOffer, SignalingStateHaveLocalPranswer:
		// have-remote-offer->SetLocal(answer|pranswer)->stable
		if op == stateChangeOpSetLocal && sdpType.isAnswer() {
			return SignalingStateStable, nil
		}
	default:
	}

	return cur, &rtcerr.InvalidStateError{
		Err: fmt.Errorf("%w: %s(%s) in %s", ErrSignalingStateProposedTransitionInvalid, op, sdpType, cur),
	}
}
