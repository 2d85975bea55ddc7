// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

const (
	// Unknown defines default public constant to use for "enum" like struct
	// comparisons when no value was defined.
	Unknown    = iota
	unknownStr = "unknown"

	// Ids at or above this value in an offer ask the answerer to pick the id.
	extmapAnswererChooses = 4096

	// One-byte RTP header extensions only carry ids 1 through 14.
	maxOneByteExtmapID = 14

	// Mids travel in a one-byte header extension as well.
	maxMidLength = 16

	maxPayloadType = 127

	discardPort = 9

	iceUfragWords = 1
	icePwdWords   = 4

	sdpOriginUsername = "-"

	mediaSectionProtocolRTP  = "UDP/TLS/RTP/SAVPF"
	mediaSectionProtocolSCTP = "UDP/DTLS/SCTP"
	dataChannelFormat        = "webrtc-datachannel"
	defaultSCTPPort          = 5000
	defaultMaxMessageSize    = 262144

	transportIDPrefix = "transport_"

	msidSemanticWMS  = "WMS *"
	bundleSemantic   = "BUNDLE"
	iceOptionTrickle = "trickle"
	msidNoStream     = "-"
)
