// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType indicates an error with Unknown info.
	ErrUnknownType = errors.New("unknown")

	// ErrSessionClosed indicates an operation executed after Close() has
	// already been called.
	ErrSessionClosed = errors.New("session closed")

	// ErrSignalingStateProposedTransitionInvalid indicates that a description
	// cannot be applied in the current signaling state.
	ErrSignalingStateProposedTransitionInvalid = errors.New("invalid proposed signaling state transition")

	// ErrCreateOfferInvalidState indicates CreateOffer was called outside of
	// stable or have-local-offer.
	ErrCreateOfferInvalidState = errors.New("cannot create offer in this state")

	// ErrCreateAnswerInvalidState indicates CreateAnswer was called without a
	// pending remote offer.
	ErrCreateAnswerInvalidState = errors.New("cannot create answer in this state")

	// ErrNoGeneratedOffer indicates SetLocalDescription(offer) was called
	// before CreateOffer.
	ErrNoGeneratedOffer = errors.New("cannot set local offer when createOffer has not been called")

	// ErrNoGeneratedAnswer indicates SetLocalDescription(answer) was called
	// before CreateAnswer.
	ErrNoGeneratedAnswer = errors.New("cannot set local answer when createAnswer has not been called")

	// ErrRollbackInvalidState indicates a rollback without a pending offer
	// from the same side.
	ErrRollbackInvalidState = errors.New("cannot rollback in this state")

	// ErrNoRemoteDescription indicates a remote candidate arrived before any
	// remote description was set.
	ErrNoRemoteDescription = errors.New("remote description not set")

	// ErrNoLocalDescription indicates a local candidate arrived before any
	// local description was set.
	ErrNoLocalDescription = errors.New("local description not set")

	// ErrBundlePolicyLocked indicates the bundle policy was changed after
	// a local description was negotiated.
	ErrBundlePolicyLocked = errors.New("cannot change bundle policy after a local description is set")

	// ErrDataChannelTransceiverExists indicates a second data channel
	// transceiver was added.
	ErrDataChannelTransceiverExists = errors.New("a data channel transceiver already exists")

	// ErrTransceiverNotFound indicates no transceiver has the requested id.
	ErrTransceiverNotFound = errors.New("transceiver not found")

	// ErrNoTransceiverForLevel indicates a media section has no transceiver.
	ErrNoTransceiverForLevel = errors.New("no transceiver for level")

	// ErrNoTransceiverForMid indicates no transceiver is associated with a mid.
	ErrNoTransceiverForMid = errors.New("no transceiver for mid")

	// ErrMissingFingerprint indicates the session has no DTLS fingerprint
	// or a description section came without one.
	ErrMissingFingerprint = errors.New("missing DTLS fingerprint")

	// ErrMissingICECredentials indicates an ice-ufrag or ice-pwd is missing.
	ErrMissingICECredentials = errors.New("missing ice-ufrag or ice-pwd")

	// ErrNoCommonCodecs indicates the answer has nothing both sides support.
	ErrNoCommonCodecs = errors.New("no common codecs")

	// ErrExtmapEntriesExhausted indicates every RTP header extension id below
	// 4096 has been handed out.
	ErrExtmapEntriesExhausted = errors.New("no free RTP header extension ids")

	// ErrLevelOutOfRange indicates a level past the last media section.
	ErrLevelOutOfRange = errors.New("level out of range")

	// ErrUnknownUfrag indicates a candidate for credentials we never saw.
	ErrUnknownUfrag = errors.New("unknown ufrag")

	// ErrCodecMediaTypeMismatch indicates a codec was registered for a media
	// type its mime type does not belong to.
	ErrCodecMediaTypeMismatch = errors.New("codec mime type does not match media type")

	// ErrPrivateKeyType indicates the certificate key is not one DTLS can use.
	ErrPrivateKeyType = errors.New("private key type not supported")

	// ErrCandidateComponent indicates a candidate for a component the
	// transport does not have.
	ErrCandidateComponent = errors.New("candidate component not used by transport")
)

// Description syntax errors.
var (
	ErrSDPAttributeMalformed = errors.New("malformed attribute")
	ErrInvalidPayloadType    = errors.New("payload type is not a 16-bit unsigned int")
	ErrPayloadTypeTooLarge   = errors.New("audio/video payload type is too large")
	ErrPayloadTypeForbidden  = errors.New("illegal audio/video payload type")
	ErrMidTooLong            = errors.New("mid length greater than 16 is unsupported")
	ErrExtmapIDOutOfRange    = errors.New("extension id out of range 1-14")
	ErrExtmapIDDuplicate     = errors.New("duplicate extension id")
	ErrSetupHoldconn         = errors.New("setup:holdconn is not supported")
	ErrBundleMidDuplicate    = errors.New("mid appears more than once in BUNDLE groups")
)

// Local description validation errors.
var (
	ErrSectionCountChanged  = errors.New("changing the number of m-sections is not allowed")
	ErrMediaTypeChanged     = errors.New("changing the media type of m-sections is not allowed")
	ErrMissingMid           = errors.New("local descriptions must have a=mid attributes")
	ErrMidChanged           = errors.New("changing the mid of m-sections is not allowed")
	ErrLocalCandidates      = errors.New("adding your own candidate attributes is not supported")
	ErrLocalEndOfCandidates = errors.New("setting end-of-candidates is not supported")
	ErrLocalIceLite         = errors.New("running ICE in lite mode is unsupported")
)

// Remote description and offer/answer validation errors.
var (
	ErrFewerSections          = errors.New("new remote description has fewer m-sections than the previous one")
	ErrExtmapRemapped         = errors.New("remote description remaps a negotiated RTP extension id")
	ErrUnexpectedIceRestart   = errors.New("remote description restarts ICE but the offer did not request it")
	ErrPartialIceRestart      = errors.New("partial ICE restart is unsupported")
	ErrAnswerBundleOnly       = errors.New("bundle-only is not allowed in answers")
	ErrAnswerEnablesSection   = errors.New("answer enables an m-section that was disabled in the offer")
	ErrAnswerRecvWithoutSend  = errors.New("answer sets recv when offer did not set send")
	ErrAnswerSendWithoutRecv  = errors.New("answer sets send when offer did not set recv")
	ErrAnswerAddsExtmap       = errors.New("answer adds extmap attributes")
	ErrAnswerExtmapNotOffered = errors.New("answer has an extmap that was not present in offer")
	ErrAnswerExtmapIDChanged  = errors.New("answer changed id of an extmap attribute")
	ErrAnswerExtmapIDInvalid  = errors.New("answer used an invalid extmap id")
)

// SDPSyntaxError is a description the parser could not read, or that
// breaks a rule every description has to follow. Line is 1-based and 0
// when the position is not known.
type SDPSyntaxError struct {
	Line    int
	Message string
	Err     error
}

func (e *SDPSyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("sdp-syntax-error: %s", e.Message)
	}

	return fmt.Sprintf("sdp-syntax-error: line %d: %s", e.Line, e.Message)
}

func (e *SDPSyntaxError) Unwrap() error {
	return e.Err
}
