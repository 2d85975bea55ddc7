// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"
	"strings"

	"github.com/pion/ice/v4"
	"github.com/pion/jsep/pkg/rtcerr"
	"github.com/pion/sdp/v3"
)

// trimCandidatePrefix returns the candidate attribute value of a
// "a=candidate:..." or "candidate:..." line.
func trimCandidatePrefix(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	candidate = strings.TrimPrefix(candidate, "a=")

	return strings.TrimPrefix(candidate, "candidate:")
}

func parseCandidate(candidate string) (ice.Candidate, error) {
	c, err := ice.UnmarshalCandidate(trimCandidatePrefix(candidate))
	if err != nil {
		return nil, fmt.Errorf("%w: candidate %q", err, candidate)
	}

	return c, nil
}

func candidateComponent(candidate string) (uint16, error) {
	c, err := parseCandidate(candidate)
	if err != nil {
		return 0, err
	}

	return c.Component(), nil
}

// AddRemoteIceCandidate adds a trickled remote candidate to the remote
// description and returns the id of the transport it belongs to. The
// candidate is matched by mid first and by level when mid is empty. An
// empty candidate with neither mid nor level ends gathering for every
// section using ufrag.
func (s *Session) AddRemoteIceCandidate(candidate, mid string, level *uint16, ufrag string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var transportID string
	err := s.transact(func() error {
		if s.st.currentRemote == nil && s.st.pendingRemote == nil {
			return &rtcerr.InvalidStateError{Err: ErrNoRemoteDescription}
		}

		if mid == "" && level == nil && candidate == "" {
			for _, d := range []*sdp.SessionDescription{s.st.currentRemote, s.st.pendingRemote} {
				if d != nil {
					setAllIceGatheringComplete(d, ufrag)
				}
			}

			return nil
		}

		var component uint16
		if candidate != "" {
			c, err := parseCandidate(candidate)
			if err != nil {
				return &rtcerr.OperationError{Err: err}
			}
			component = c.Component()
		}

		var tr *Transceiver
		if mid != "" {
			tr = s.transceiverForMid(mid)
		} else if level != nil {
			tr = s.transceiverForLevel(int(*level))
		}
		if tr == nil {
			return &rtcerr.OperationError{
				Err: fmt.Errorf("%w: mid=%q for remote candidate", ErrTransceiverNotFound, mid),
			}
		}
		if !tr.hasLevel {
			return &rtcerr.OperationError{
				Err: fmt.Errorf("%w: mid=%q for remote candidate", ErrNoTransceiverForLevel, mid),
			}
		}

		if level != nil && int(*level) != tr.level {
			s.log.Warnf("[%s]: Mismatch between mid and level - %q is not the mid for level %d",
				s.name, mid, *level)
		}

		if tr.transport.Components > 0 && int(component) > tr.transport.Components {
			s.log.Warnf("[%s]: %s: component %d on transport %s",
				s.name, ErrCandidateComponent, component, tr.transport.ID)
		}

		var err error
		for _, d := range []*sdp.SessionDescription{s.st.currentRemote, s.st.pendingRemote} {
			if d == nil {
				continue
			}
			if addErr := addCandidateToSDP(d, candidate, tr.level, ufrag); addErr != nil {
				err = addErr
			}
		}
		if err != nil {
			return &rtcerr.OperationError{Err: err}
		}

		transportID = tr.transport.ID

		return nil
	})

	return transportID, err
}

// AddLocalIceCandidate adds a gathered candidate to the local description
// sections owned by transportID. It reports skipped when no associated
// transceiver uses that transport. An empty candidate ends gathering for
// the section.
func (s *Session) AddLocalIceCandidate(candidate, transportID, ufrag string) (level uint16, mid string, skipped bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipped = true
	err = s.transact(func() error {
		if s.st.currentLocal == nil && s.st.pendingLocal == nil {
			return &rtcerr.InvalidStateError{Err: ErrNoLocalDescription}
		}

		tr := s.transceiverWithTransport(transportID)
		if tr == nil || !tr.IsAssociated() {
			// Happens after a rollback or a disabled section.
			return nil
		}

		if candidate != "" {
			if _, parseErr := parseCandidate(candidate); parseErr != nil {
				return &rtcerr.OperationError{Err: parseErr}
			}
		}

		level = uint16(tr.level) //nolint:gosec // G115, levels are small
		mid = tr.mid

		var addErr error
		for _, d := range []*sdp.SessionDescription{s.st.currentLocal, s.st.pendingLocal} {
			if d == nil {
				continue
			}
			if e := addCandidateToSDP(d, candidate, tr.level, ufrag); e != nil {
				addErr = e
			}
		}
		skipped = false
		if addErr != nil {
			return &rtcerr.OperationError{Err: addErr}
		}

		return nil
	})

	return level, mid, skipped, err
}

// EndOfLocalCandidates marks gathering complete on the local section that
// owns transportID.
func (s *Session) EndOfLocalCandidates(transportID, ufrag string) error {
	_, _, _, err := s.AddLocalIceCandidate("", transportID, ufrag)

	return err
}

// UpdateDefaultCandidate writes the default address of transportID into
// every local section using it, except bundle-only ones.
func (s *Session) UpdateDefaultCandidate(defaultAddr string, defaultPort uint16,
	defaultRTCPAddr string, defaultRTCPPort uint16, transportID string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transact(func() error {
		d := pickDescription(DescriptionKindPendingOrCurrent, s.st.pendingLocal, s.st.currentLocal)
		if d == nil {
			return &rtcerr.InvalidStateError{Err: ErrNoLocalDescription}
		}

		for _, tr := range s.st.transceivers {
			if tr.transport.ID != transportID || !tr.hasLevel {
				continue
			}

			rtcpAddr, rtcpPort := defaultRTCPAddr, defaultRTCPPort
			if s.st.state == SignalingStateStable && tr.transport.Components == 1 {
				// rtcp-mux was negotiated, no a=rtcp.
				rtcpAddr, rtcpPort = "", 0
			}

			if tr.level >= len(d.MediaDescriptions) {
				return &rtcerr.OperationError{Err: fmt.Errorf("%w: %d", ErrLevelOutOfRange, tr.level)}
			}

			m := d.MediaDescriptions[tr.level]
			if isBundleOnly(m) {
				continue
			}
			setDefaultAddresses(defaultAddr, defaultPort, rtcpAddr, rtcpPort, m)
		}

		return nil
	})
}
