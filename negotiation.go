// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"

	"github.com/pion/jsep/pkg/rtcerr"
	"github.com/pion/sdp/v3"
)

func (s *Session) setLocalDescription(sdpType SDPType, raw string) error {
	s.log.Debugf("[%s]: SetLocalDescription type=%s\nSDP=\n%s", s.name, sdpType, raw)

	var err error
	switch sdpType {
	case SDPTypeOffer:
		if s.st.generatedOffer == nil {
			return &rtcerr.InvalidModificationError{Err: ErrNoGeneratedOffer}
		}
		if raw == "" {
			if raw, err = marshalSessionDescription(s.st.generatedOffer); err != nil {
				return &rtcerr.OperationError{Err: err}
			}
		}
		if s.st.state == SignalingStateHaveLocalOffer {
			// The previous offer is rolled back before this one is applied.
			if err = s.rollbackLocal(); err != nil {
				return &rtcerr.OperationError{Err: err}
			}
		}
	case SDPTypeAnswer, SDPTypePranswer:
		if s.st.generatedAnswer == nil {
			return &rtcerr.InvalidModificationError{Err: ErrNoGeneratedAnswer}
		}
		if raw == "" {
			if raw, err = marshalSessionDescription(s.st.generatedAnswer); err != nil {
				return &rtcerr.OperationError{Err: err}
			}
		}
	case SDPTypeRollback:
		if s.st.state != SignalingStateHaveLocalOffer {
			return &rtcerr.InvalidStateError{
				Err: fmt.Errorf("%w: local description in %s", ErrRollbackInvalidState, s.st.state),
			}
		}
		if err = s.rollbackLocal(); err != nil {
			return &rtcerr.OperationError{Err: err}
		}

		return nil
	default:
		return &rtcerr.InvalidAccessError{Err: fmt.Errorf("%w: description type %d", ErrUnknownType, sdpType)}
	}

	next, err := checkNextSignalingState(s.st.state, stateChangeOpSetLocal, sdpType)
	if err != nil {
		return err
	}

	parsed, err := s.parseSDP(raw)
	if err != nil {
		return &rtcerr.OperationError{Err: err}
	}

	if err = s.validateLocalDescription(parsed, sdpType); err != nil {
		return &rtcerr.InvalidModificationError{Err: err}
	}

	if sdpType == SDPTypeOffer {
		err = validateOffer(parsed)
	} else {
		err = s.validateAnswer(s.st.pendingRemote, parsed)
	}
	if err != nil {
		return &rtcerr.InvalidAccessError{Err: err}
	}

	if sdpType == SDPTypeOffer {
		// Saved in case the offer is rolled back.
		s.st.oldTransceivers = cloneTransceivers(s.st.transceivers)
	}

	if err = s.applyLocalTransports(parsed, sdpType); err != nil {
		return &rtcerr.OperationError{Err: err}
	}

	if sdpType == SDPTypeOffer {
		s.setLocalDescriptionOffer(parsed, next)

		return nil
	}

	if err = s.setLocalDescriptionAnswer(parsed, next); err != nil {
		return &rtcerr.OperationError{Err: err}
	}

	return nil
}

// applyLocalTransports associates every transceiver with its local section
// and sets up the transports the description asks for.
func (s *Session) applyLocalTransports(local *sdp.SessionDescription, sdpType SDPType) error {
	bundled, err := getBundledMids(local)
	if err != nil {
		return err
	}

	var remoteBundled map[string]int
	if sdpType != SDPTypeOffer {
		if remoteBundled, err = getBundledMids(s.st.pendingRemote); err != nil {
			return err
		}
	}

	for level, m := range local.MediaDescriptions {
		tr := s.transceiverForLevel(level)
		if tr == nil {
			return fmt.Errorf("%w: %d", ErrNoTransceiverForLevel, level)
		}

		tr.associate(getMid(m))
		tr.recvTrack.recvTrackSetLocal(m)

		if msectionIsDisabled(m) {
			tr.transport.Close()

			continue
		}

		hasOwnTransport := ownsTransport(m, level, bundled, sdpType)
		if sdpType != SDPTypeOffer {
			// The answer cannot grant a transport the offer did not.
			hasOwnTransport = hasOwnTransport &&
				ownsTransport(s.st.pendingRemote.MediaDescriptions[level], level, remoteBundled, SDPTypeOffer)
		}

		if hasOwnTransport {
			s.ensureHasOwnTransport(m, tr)
		}

		if sdpType == SDPTypeOffer {
			if owner, ok := bundled[tr.mid]; ok && !hasOwnTransport {
				tr.setBundleLevel(owner)
			}
		} else if owner, ok := remoteBundled[tr.mid]; ok {
			tr.setBundleLevel(owner)
		}
	}

	s.copyBundleTransports()

	return nil
}

func (s *Session) setLocalDescriptionOffer(offer *sdp.SessionDescription, next SignalingState) {
	s.st.pendingLocal = offer
	isOfferer := true
	s.st.isPendingOfferer = &isOfferer
	s.setState(next)

	var recvTracks []*Track
	for _, tr := range s.st.transceivers {
		if tr.jsDirection.HasRecv() {
			recvTracks = append(recvTracks, tr.recvTrack)
		} else {
			tr.recvTrack.ResetReceivePayloadTypes()
		}
	}
	setReceivePayloadTypes(recvTracks, true)
}

func (s *Session) setLocalDescriptionAnswer(answer *sdp.SessionDescription, next SignalingState) error {
	s.st.pendingLocal = answer
	if err := s.handleNegotiatedSession(s.st.pendingLocal, s.st.pendingRemote); err != nil {
		return err
	}

	s.st.currentRemote, s.st.pendingRemote = s.st.pendingRemote, nil
	s.st.currentLocal, s.st.pendingLocal = s.st.pendingLocal, nil
	s.st.isPendingOfferer = nil
	isOfferer := false
	s.st.isCurrentOfferer = &isOfferer
	s.setState(next)

	return nil
}

func (s *Session) setRemoteDescription(sdpType SDPType, raw string) error {
	s.log.Debugf("[%s]: SetRemoteDescription type=%s\nSDP=\n%s", s.name, sdpType, raw)

	if s.st.state == SignalingStateHaveRemoteOffer && sdpType == SDPTypeOffer {
		// The previous offer is rolled back before this one is applied.
		if err := s.rollbackRemote(); err != nil {
			return &rtcerr.OperationError{Err: err}
		}
	}

	switch sdpType {
	case SDPTypeOffer, SDPTypeAnswer, SDPTypePranswer:
	case SDPTypeRollback:
		if s.st.state != SignalingStateHaveRemoteOffer {
			return &rtcerr.InvalidStateError{
				Err: fmt.Errorf("%w: remote description in %s", ErrRollbackInvalidState, s.st.state),
			}
		}
		if err := s.rollbackRemote(); err != nil {
			return &rtcerr.OperationError{Err: err}
		}

		return nil
	default:
		return &rtcerr.InvalidAccessError{Err: fmt.Errorf("%w: description type %d", ErrUnknownType, sdpType)}
	}

	next, err := checkNextSignalingState(s.st.state, stateChangeOpSetRemote, sdpType)
	if err != nil {
		return err
	}

	parsed, err := s.parseSDP(raw)
	if err != nil {
		return &rtcerr.OperationError{Err: err}
	}

	if err = s.validateRemoteDescription(parsed); err != nil {
		return &rtcerr.InvalidAccessError{Err: err}
	}

	if sdpType == SDPTypeOffer {
		err = validateOffer(parsed)
	} else {
		err = s.validateAnswer(s.st.pendingLocal, parsed)
	}
	if err != nil {
		return &rtcerr.InvalidAccessError{Err: err}
	}

	iceLite := hasAttribute(parsed.Attributes, attrICELite)
	iceRestarting := s.remoteRestartsIce(parsed)
	iceOptions := sessionICEOptions(parsed)

	if sdpType == SDPTypeOffer {
		// Saved in case the offer is rolled back.
		s.st.oldTransceivers = cloneTransceivers(s.st.transceivers)
		for _, tr := range s.st.transceivers {
			if !tr.IsNegotiated() {
				// A level we picked but never negotiated is up for grabs.
				tr.clearLevel()
			}
		}
	}

	if err = s.updateTransceiversFromRemoteDescription(parsed); err != nil {
		return &rtcerr.OperationError{Err: err}
	}

	s.st.pendingRemote = parsed
	if sdpType == SDPTypeOffer {
		isOfferer := false
		s.st.isPendingOfferer = &isOfferer
		s.setState(next)
	} else {
		if err = s.handleNegotiatedSession(s.st.pendingLocal, s.st.pendingRemote); err != nil {
			return &rtcerr.OperationError{Err: err}
		}

		s.st.currentRemote, s.st.pendingRemote = s.st.pendingRemote, nil
		s.st.currentLocal, s.st.pendingLocal = s.st.pendingLocal, nil
		s.st.isPendingOfferer = nil
		isOfferer := true
		s.st.isCurrentOfferer = &isOfferer
		s.setState(next)
	}

	s.st.remoteIceLite = iceLite
	s.st.iceOptions = iceOptions

	if sdpType == SDPTypeOffer {
		if err = s.setIceRestarting(iceRestarting); err != nil {
			return &rtcerr.OperationError{Err: err}
		}
	}

	return nil
}

// remoteRestartsIce reports whether the first section enabled in both d
// and the current remote description changed its credentials.
func (s *Session) remoteRestartsIce(d *sdp.SessionDescription) bool {
	if s.st.currentRemote == nil {
		return false
	}

	for level, oldMsection := range s.st.currentRemote.MediaDescriptions {
		if level >= len(d.MediaDescriptions) {
			break
		}
		newMsection := d.MediaDescriptions[level]
		if msectionIsDisabled(newMsection) || msectionIsDisabled(oldMsection) {
			continue
		}

		return iceCredentialsDiffer(newMsection, oldMsection)
	}

	return false
}

func (s *Session) updateTransceiversFromRemoteDescription(remote *sdp.SessionDescription) error {
	for level, m := range remote.MediaDescriptions {
		tr, err := s.getTransceiverForRemote(level, m)
		if err != nil {
			return err
		}

		if msectionIsDisabled(m) {
			// Disassociation waits for the negotiation to complete.
			tr.transport.Close()
			tr.setStopped()

			continue
		}

		if mid, ok := attributeValue(m.Attributes, attrMid); ok {
			tr.associate(mid)
		}
		if !tr.IsAssociated() {
			tr.associate(s.getNewMid())
		} else {
			s.st.usedMids[tr.mid] = struct{}{}
		}

		if mediaTypeOf(m) == MediaTypeApplication {
			continue
		}

		if err = tr.sendTrack.sendTrackSetRemote(s.ssrcGen, m); err != nil {
			return err
		}

		// Endpoints that do not send a=msid still get a stream.
		tr.recvTrack.UpdateStreamIDs([]string{s.defaultRemoteStreamID})
		tr.recvTrack.recvTrackSetRemote(m)
	}

	return nil
}

// handleNegotiatedSession commits the outcome of an offer/answer exchange
// to the transceivers.
func (s *Session) handleNegotiatedSession(local, remote *sdp.SessionDescription) error {
	// The local credentials are negotiated, the old ones are gone for good.
	s.st.oldIceUfrag = ""
	s.st.oldIcePwd = ""

	remoteIceLite := hasAttribute(remote.Attributes, attrICELite)
	s.st.iceControlling = remoteIceLite || s.isPendingOfferer()

	answer := local
	if s.isPendingOfferer() {
		answer = remote
	}

	bundled, err := getBundledMids(answer)
	if err != nil {
		return err
	}
	for mid, owner := range bundled {
		tr := s.transceiverForMid(mid)
		if tr == nil {
			return fmt.Errorf("%w: bundled mid %s", ErrNoTransceiverForMid, mid)
		}
		tr.setBundleLevel(owner)
	}

	for level := range local.MediaDescriptions {
		tr := s.transceiverForLevel(level)
		if tr == nil {
			return fmt.Errorf("%w: %d", ErrNoTransceiverForLevel, level)
		}

		if msectionIsDisabled(local.MediaDescriptions[level]) {
			tr.setRemoved()
		}

		if msectionIsDisabled(answer.MediaDescriptions[level]) {
			tr.transport.Close()
			tr.setStopped()
			tr.disassociate()
			tr.clearBundleLevel()
			tr.sendTrack.SetActive(false)
			tr.recvTrack.SetActive(false)
			// The level is kept until the next negotiation recycles it.
			tr.setCanRecycle()

			continue
		}

		if err = s.makeNegotiatedTransceiver(remote, level, tr); err != nil {
			return err
		}
	}

	s.copyBundleTransports()

	// Inactive receive tracks do not claim payload types, a packet that
	// matches a sendrecv and a sendonly section belongs to the sendrecv one.
	var recvTracks []*Track
	for _, tr := range s.st.transceivers {
		if tr.recvTrack.Active() {
			recvTracks = append(recvTracks, tr.recvTrack)
		} else {
			tr.recvTrack.ResetReceivePayloadTypes()
		}
	}
	setReceivePayloadTypes(recvTracks, false)

	s.st.negotiations++
	s.st.generatedAnswer = nil
	s.st.generatedOffer = nil

	return nil
}

func (s *Session) makeNegotiatedTransceiver(remoteDesc *sdp.SessionDescription, level int, tr *Transceiver) error {
	remote := remoteDesc.MediaDescriptions[level]
	local := s.st.pendingLocal.MediaDescriptions[level]
	answer := local
	if s.isPendingOfferer() {
		answer = remote
	}

	// Stopping is only a hint for the next offer, it does not matter here.
	direction := msectionDirection(answer)
	sending, receiving := direction.HasSend(), direction.HasRecv()
	if s.isPendingOfferer() {
		sending, receiving = direction.HasRecv(), direction.HasSend()
	}

	s.log.Debugf("[%s]: Negotiated m= line index=%d type=%s sending=%t receiving=%t",
		s.name, level, mediaTypeOf(local), sending, receiving)

	tr.setNegotiated()

	// Finalized first so bundled transceivers copy the final transport.
	s.finalizeTransport(remoteDesc, remote, answer, &tr.transport)

	tr.sendTrack.SetActive(sending)
	if err := tr.sendTrack.Negotiate(answer, remote, local); err != nil {
		return fmt.Errorf("%w: answer had no codecs in common with offer in m-section %d", err, level)
	}

	tr.recvTrack.SetActive(receiving)
	if err := tr.recvTrack.Negotiate(answer, remote, local); err != nil {
		return fmt.Errorf("%w: answer had no codecs in common with offer in m-section %d", err, level)
	}

	if tr.hasBundleLevel && len(tr.recvTrack.ssrcs) == 0 && tr.mediaType != MediaTypeApplication &&
		!negotiatedExtension(answer, sdp.SDESMidURI) {
		s.log.Warnf("[%s]: Bundled m-section %d has no ssrc attributes. This may cause media packets to be dropped.",
			s.name, level)
	}

	if tr.transport.Components == 2 {
		s.log.Debugf("[%s]: RTCP-MUX is off for m-section %d", s.name, level)
	}

	return s.recordNegotiatedExtmaps(answer)
}

// negotiatedExtension reports whether m maps uri to an id.
func negotiatedExtension(m *sdp.MediaDescription, uri string) bool {
	extmaps, err := sdpParseExtmaps(m)
	if err != nil {
		return false
	}
	for _, e := range extmaps {
		if e.uri == uri {
			return true
		}
	}

	return false
}

// getTransceiverForLocal returns the transceiver that fills level of a new
// offer, or nil once every transceiver has a level.
func (s *Session) getTransceiverForLocal(level int) *Transceiver {
	if tr := s.transceiverForLevel(level); tr != nil {
		if tr.canRecycleMsection() && tr.mediaType != MediaTypeApplication {
			// If nothing takes the level the old transceiver keeps it.
			tr.disassociate()
			if fresh := s.findUnassociatedTransceiver(tr.mediaType, false); fresh != nil {
				fresh.setLevel(level)
				tr.clearLevel()
				tr.sendTrack.clearRids()

				return fresh
			}
		}

		return tr
	}

	// RTP transceivers get the lower levels.
	for _, tr := range s.st.transceivers {
		if tr.mediaType != MediaTypeApplication && tr.isFreeToUse() {
			tr.setLevel(level)

			return tr
		}
	}

	for _, tr := range s.st.transceivers {
		if tr.isFreeToUse() {
			tr.setLevel(level)

			return tr
		}
	}

	return nil
}

// getTransceiverForRemote returns the transceiver for the remote section m
// at level, creating a recvonly one when none matches.
func (s *Session) getTransceiverForRemote(level int, m *sdp.MediaDescription) (*Transceiver, error) {
	if tr := s.transceiverForLevel(level); tr != nil {
		if !tr.canRecycleMsection() {
			return tr, nil
		}
		tr.disassociate()
		tr.clearLevel()
		tr.sendTrack.clearRids()
	}

	mediaType := mediaTypeOf(m)
	if tr := s.findUnassociatedTransceiver(mediaType, true); tr != nil {
		tr.setLevel(level)

		return tr, nil
	}

	if mediaType == MediaTypeApplication {
		for _, tr := range s.st.transceivers {
			if tr.mediaType == MediaTypeApplication && !tr.IsStopped() {
				return nil, fmt.Errorf("%w: level %d", ErrDataChannelTransceiverExists, level)
			}
		}
	}

	id, err := s.uuidGen.Generate()
	if err != nil {
		return nil, err
	}

	tr := newTransceiver(id, mediaType, RTPTransceiverDirectionRecvonly)
	tr.setLevel(level)
	tr.onlyExistsBecauseOfSetRemote = true
	if err = s.initTransceiver(tr); err != nil {
		return nil, err
	}
	s.log.Debugf("[%s]: Adding transceiver %s for remote m-section %d", s.name, tr.id, level)
	s.st.transceivers = append(s.st.transceivers, tr)

	return tr, nil
}

// findUnassociatedTransceiver returns a transceiver of mediaType that has
// no level. With magic only transceivers the application attached a track
// to qualify. The data channel transceiver is restarted when it is reused.
func (s *Session) findUnassociatedTransceiver(mediaType MediaType, magic bool) *Transceiver {
	for _, tr := range s.st.transceivers {
		if mediaType == MediaTypeApplication && tr.mediaType == MediaTypeApplication {
			if tr.hasLevel {
				continue
			}
			tr.restartDatachannel()

			return tr
		}
		if tr.isFreeToUse() && (!magic || tr.addTrackMagic) && tr.mediaType == mediaType {
			return tr
		}
	}

	return nil
}
