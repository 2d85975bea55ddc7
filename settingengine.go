// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"github.com/pion/logging"
)

// SettingEngine allows influencing behavior in ways that are not
// supported by the WebRTC API. This allows us to support additional
// use-cases without deviating from the WebRTC API elsewhere.
type SettingEngine struct {
	sdp struct {
		offerRTCPRsize       bool
		dependencyDescriptor bool
		rtx                  bool
		encodeTrackID        bool
	}
	generators struct {
		UUID UUIDGenerator
		SSRC SSRCGenerator
	}
	candidates struct {
		UsernameFragment string
		Password         string
	}
	LoggerFactory logging.LoggerFactory
}

// SetOfferRTCPRsize sets a=rtcp-rsize on offered video sections.
func (e *SettingEngine) SetOfferRTCPRsize(enabled bool) {
	e.sdp.offerRTCPRsize = enabled
}

// SetDependencyDescriptor offers the dependency descriptor header
// extension on sending simulcast video sections.
func (e *SettingEngine) SetDependencyDescriptor(enabled bool) {
	e.sdp.dependencyDescriptor = enabled
}

// SetRTX offers the repaired rtp stream id header extension next to the
// rtp stream id one.
func (e *SettingEngine) SetRTX(enabled bool) {
	e.sdp.rtx = enabled
}

// SetEncodeTrackID writes the track id after the stream id in a=msid.
// When disabled only the stream id is written.
func (e *SettingEngine) SetEncodeTrackID(enabled bool) {
	e.sdp.encodeTrackID = enabled
}

// SetUUIDGenerator replaces the generator of transceiver ids, the CNAME and
// the default remote stream id.
func (e *SettingEngine) SetUUIDGenerator(g UUIDGenerator) {
	e.generators.UUID = g
}

// SetSSRCGenerator replaces the generator of send SSRCs.
func (e *SettingEngine) SetSSRCGenerator(g SSRCGenerator) {
	e.generators.SSRC = g
}

// SetICECredentials sets a staic uFrag/uPwd to be used by the session.
// This is useful if you want to do signalless WebRTC session, or when
// writing tests that compare generated descriptions.
func (e *SettingEngine) SetICECredentials(usernameFragment, password string) {
	e.candidates.UsernameFragment = usernameFragment
	e.candidates.Password = password
}
