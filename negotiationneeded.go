// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"slices"
)

// CheckNegotiationNeeded reports whether the transceivers differ from what
// the last negotiation settled on. It is only meaningful in stable.
func (s *Session) CheckNegotiationNeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.state != SignalingStateStable {
		return false
	}

	for _, tr := range s.st.transceivers {
		if tr.IsStopped() {
			continue
		}

		if tr.IsStopping() {
			s.log.Debugf("[%s]: Negotiation needed because of transceiver we need to stop", s.name)

			return true
		}

		if !tr.IsAssociated() {
			s.log.Debugf("[%s]: Negotiation needed because of transceiver we need to associate", s.name)

			return true
		}

		if s.st.currentLocal == nil || s.st.currentRemote == nil || !tr.hasLevel {
			continue
		}

		if tr.mediaType == MediaTypeApplication {
			continue
		}

		if tr.level >= len(s.st.currentLocal.MediaDescriptions) ||
			tr.level >= len(s.st.currentRemote.MediaDescriptions) {
			continue
		}

		local := s.st.currentLocal.MediaDescriptions[tr.level]
		remote := s.st.currentRemote.MediaDescriptions[tr.level]

		if tr.jsDirection.HasSend() {
			sdpMsids := sdpParseMsidStreams(local)
			slices.Sort(sdpMsids)
			jsepMsids := tr.sendTrack.StreamIDs()
			slices.Sort(jsepMsids)

			if !slices.Equal(sdpMsids, jsepMsids) {
				s.log.Debugf("[%s]: Negotiation needed because transceiver is sending, and the local SDP "+
					"has different msids than the send track. SDP=%v JSEP=%v", s.name, sdpMsids, jsepMsids)

				return true
			}
		}

		localDirection := msectionDirection(local)
		remoteDirection := msectionDirection(remote).Reverse()
		if s.st.isCurrentOfferer != nil && *s.st.isCurrentOfferer {
			if localDirection != tr.jsDirection && remoteDirection != tr.jsDirection {
				s.log.Debugf("[%s]: Negotiation needed because the direction on our offer, and the remote "+
					"answer, does not match the direction on a transceiver", s.name)

				return true
			}
		} else if localDirection != tr.jsDirection.Intersect(remoteDirection) {
			s.log.Debugf("[%s]: Negotiation needed because the direction on our answer doesn't match "+
				"the direction on a transceiver, even though the remote offer would have allowed it", s.name)

			return true
		}
	}

	return false
}
