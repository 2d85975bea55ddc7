// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"

	"github.com/pion/jsep/pkg/rtcerr"
	"github.com/pion/sdp/v3"
)

// createGenericSDP returns the session level part shared by offers and
// answers.
func (s *Session) createGenericSDP() (*sdp.SessionDescription, error) {
	if len(s.fingerprints) == 0 {
		return nil, ErrMissingFingerprint
	}

	d := &sdp.SessionDescription{
		Version: 0,
		Origin: sdp.Origin{
			Username:       sdpOriginUsername,
			SessionID:      s.sessionID,
			SessionVersion: s.st.sessionVersion,
			NetworkType:    "IN",
			AddressType:    "IP4",
			UnicastAddress: "0.0.0.0",
		},
		SessionName: "-",
		TimeDescriptions: []sdp.TimeDescription{
			{Timing: sdp.Timing{StartTime: 0, StopTime: 0}},
		},
	}

	for _, fp := range s.fingerprints {
		d.Attributes = addAttribute(d.Attributes, attrFingerprint, fp.Algorithm+" "+fp.Value)
	}
	d.Attributes = setAttribute(d.Attributes, attrICEOptions, iceOptionTrickle)
	d.Attributes = setAttribute(d.Attributes, attrMsidSemantic, msidSemanticWMS)

	return d, nil
}

func (s *Session) addTransportAttributes(m *sdp.MediaDescription, role sdp.ConnectionRole) error {
	if s.st.iceUfrag == "" || s.st.icePwd == "" {
		return ErrMissingICECredentials
	}

	m.Attributes = setAttribute(m.Attributes, attrICEUfrag, s.st.iceUfrag)
	m.Attributes = setAttribute(m.Attributes, attrICEPwd, s.st.icePwd)
	m.Attributes = setAttribute(m.Attributes, attrSetup, role.String())

	return nil
}

func (s *Session) createOffer(opts *OfferOptions) (string, error) {
	if s.st.state != SignalingStateStable && s.st.state != SignalingStateHaveLocalOffer {
		return "", &rtcerr.InvalidStateError{
			Err: fmt.Errorf("%w: %s", ErrCreateOfferInvalidState, s.st.state),
		}
	}

	if err := s.setIceRestarting(opts != nil && opts.ICERestart); err != nil {
		return "", &rtcerr.OperationError{Err: err}
	}

	d, err := s.createGenericSDP()
	if err != nil {
		return "", &rtcerr.OperationError{Err: err}
	}

	for level := 0; ; level++ {
		tr := s.getTransceiverForLocal(level)
		if tr == nil {
			break
		}
		if err = s.createOfferMsection(tr, d); err != nil {
			return "", &rtcerr.OperationError{Err: err}
		}
	}

	setupBundle(d, s.st.bundlePolicy)

	if answer := s.negotiatedAnswer(); s.st.currentLocal != nil && answer != nil {
		if err = s.copyPreviousTransportParams(answer, s.st.currentLocal, d, d); err != nil {
			return "", &rtcerr.OperationError{Err: err}
		}
	}

	offer, err := marshalSessionDescription(d)
	if err != nil {
		return "", &rtcerr.OperationError{Err: err}
	}

	s.st.generatedOffer = d
	s.st.sessionVersion++
	s.log.Debugf("[%s]: CreateOffer\nSDP=\n%s", s.name, offer)

	return offer, nil
}

func (s *Session) createOfferMsection(tr *Transceiver, d *sdp.SessionDescription) error {
	protocol := tr.mediaType.protocol()

	var lastAnswerMsection *sdp.MediaDescription
	if answer := s.negotiatedAnswer(); answer != nil && len(d.MediaDescriptions) < len(answer.MediaDescriptions) {
		lastAnswerMsection = answer.MediaDescriptions[len(d.MediaDescriptions)]
		// Keep whatever protocol the answerer picked.
		protocol = mediaSectionProtocol(lastAnswerMsection)
	}

	m := newMediaSection(tr.mediaType, protocol)
	m.MediaName.Port = sdp.RangedPort{Value: 0}
	setMsectionDirection(m, tr.jsDirection)
	d.MediaDescriptions = append(d.MediaDescriptions, m)

	if lastAnswerMsection != nil {
		copyStickyParams(lastAnswerMsection, m)
	}

	if tr.IsStopping() || tr.IsStopped() {
		disableMsection(d, m)

		return nil
	}

	m.MediaName.Port = sdp.RangedPort{Value: discardPort}

	if protocolHasRTCP(protocol) {
		m.Attributes = setFlag(m.Attributes, attrRTCPMux)
		if tr.mediaType == MediaTypeVideo && s.settings.sdp.offerRTCPRsize {
			m.Attributes = setFlag(m.Attributes, attrRTCPRsize)
		}
	}
	m.Attributes = setFlag(m.Attributes, attrExtmapAllowMixed)

	if err := s.addTransportAttributes(m, sdp.ConnectionRoleActpass); err != nil {
		return err
	}

	if err := tr.sendTrack.AddToOffer(s.ssrcGen, m); err != nil {
		return err
	}
	if err := tr.recvTrack.AddToOffer(s.ssrcGen, m); err != nil {
		return err
	}

	if err := s.addExtmap(m); err != nil {
		return err
	}

	// The transceiver is associated when the description is set, not here.
	mid, ok := tr.Mid()
	if !ok {
		mid = s.getNewMid()
	}
	m.Attributes = setAttribute(m.Attributes, attrMid, mid)

	return nil
}

func (s *Session) createAnswer(*AnswerOptions) (string, error) {
	if s.st.state != SignalingStateHaveRemoteOffer {
		return "", &rtcerr.InvalidStateError{
			Err: fmt.Errorf("%w: %s", ErrCreateAnswerInvalidState, s.st.state),
		}
	}

	d, err := s.createGenericSDP()
	if err != nil {
		return "", &rtcerr.OperationError{Err: err}
	}

	offer := s.st.pendingRemote
	copyBundleGroups(offer, d)

	if hasAttribute(offer.Attributes, attrExtmapAllowMixed) {
		d.Attributes = setFlag(d.Attributes, attrExtmapAllowMixed)
	}

	for level, remote := range offer.MediaDescriptions {
		tr := s.transceiverForLevel(level)
		if tr == nil {
			return "", &rtcerr.OperationError{Err: fmt.Errorf("%w: %d", ErrNoTransceiverForLevel, level)}
		}
		if err = s.createAnswerMsection(tr, remote, d); err != nil {
			return "", &rtcerr.OperationError{Err: err}
		}
	}

	// Each group has to start with a mid that has a transport, in case we
	// disabled the one the offerer wanted to use.
	pruneAnswerBundleGroups(d, offer)

	if answer := s.negotiatedAnswer(); s.st.currentLocal != nil && answer != nil {
		if err = s.copyPreviousTransportParams(answer, s.st.currentRemote, offer, d); err != nil {
			return "", &rtcerr.OperationError{Err: err}
		}
	}

	answer, err := marshalSessionDescription(d)
	if err != nil {
		return "", &rtcerr.OperationError{Err: err}
	}

	s.st.generatedAnswer = d
	s.st.sessionVersion++
	s.log.Debugf("[%s]: CreateAnswer\nSDP=\n%s", s.name, answer)

	return answer, nil
}

func (s *Session) createAnswerMsection(tr *Transceiver, remote *sdp.MediaDescription, d *sdp.SessionDescription) error {
	m := newMediaSection(mediaTypeOf(remote), mediaSectionProtocol(remote))
	setMsectionDirection(m, msectionDirection(remote).Reverse().Intersect(tr.jsDirection))
	d.MediaDescriptions = append(d.MediaDescriptions, m)

	copyStickyParams(remote, m)

	if msectionIsDisabled(remote) {
		disableMsection(d, m)

		return nil
	}

	if getMid(m) == "" {
		m.Attributes = setAttribute(m.Attributes, attrMid, tr.mid)
	}

	var role sdp.ConnectionRole
	if tr.transport.DTLS != nil && !s.isIceRestarting() {
		// Keep the role of the running DTLS association.
		role = sdp.ConnectionRolePassive
		if tr.transport.DTLS.Role == DTLSRoleClient {
			role = sdp.ConnectionRoleActive
		}
	} else {
		var err error
		if role, err = answererSetupRole(setupRole(remote)); err != nil {
			return err
		}
	}

	if err := s.addTransportAttributes(m, role); err != nil {
		return err
	}

	if err := tr.sendTrack.AddToAnswer(remote, s.ssrcGen, m); err != nil {
		return err
	}
	if err := tr.recvTrack.AddToAnswer(remote, s.ssrcGen, m); err != nil {
		return err
	}

	if err := s.addCommonExtmaps(remote, m); err != nil {
		return err
	}

	if len(m.MediaName.Formats) == 0 {
		// Nothing could be negotiated.
		disableMsection(d, m)
	}

	return nil
}

// copyPreviousTransportParams keeps candidates and default addresses of the
// current local description in newLocal for every section whose transport
// did not change.
func (s *Session) copyPreviousTransportParams(oldAnswer, offerersPrevious, newOffer,
	newLocal *sdp.SessionDescription,
) error {
	for level, m := range newLocal.MediaDescriptions {
		if msectionIsDisabled(m) {
			continue
		}
		valid, err := areOldTransportParamsValid(oldAnswer, offerersPrevious, newOffer, level)
		if err != nil {
			return err
		}
		if !valid {
			continue
		}

		tr := s.transceiverForLevel(level)
		if tr == nil {
			return fmt.Errorf("%w: %d", ErrNoTransceiverForLevel, level)
		}
		if err = copyTransportParams(tr.transport.Components, s.st.currentLocal.MediaDescriptions[level], m); err != nil {
			return err
		}
	}

	return nil
}

// areOldTransportParamsValid reports whether the transport negotiated for
// level in oldAnswer is still the one newOffer asks for.
func areOldTransportParamsValid(oldAnswer, offerersPrevious, newOffer *sdp.SessionDescription,
	level int,
) (bool, error) {
	if level >= len(oldAnswer.MediaDescriptions) || level >= len(offerersPrevious.MediaDescriptions) ||
		level >= len(newOffer.MediaDescriptions) {
		return false, nil
	}
	oldMsection := oldAnswer.MediaDescriptions[level]
	newMsection := newOffer.MediaDescriptions[level]
	if msectionIsDisabled(oldMsection) || msectionIsDisabled(newMsection) {
		return false, nil
	}

	oldBundled, err := getBundledMids(oldAnswer)
	if err != nil {
		return false, err
	}
	if !ownsTransport(oldMsection, level, oldBundled, SDPTypeAnswer) {
		return false, nil
	}

	newBundled, err := getBundledMids(newOffer)
	if err != nil {
		return false, err
	}
	if !ownsTransport(newMsection, level, newBundled, SDPTypeOffer) {
		return false, nil
	}

	return !iceCredentialsDiffer(newMsection, offerersPrevious.MediaDescriptions[level]), nil
}
