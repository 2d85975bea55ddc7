// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"
)

// isForbiddenPayloadType covers the payload types that are reserved or
// collide with RTCP packet types.
func isForbiddenPayloadType(pt uint64) bool {
	return pt == 1 || pt == 2 || pt == 19 || (pt >= 64 && pt <= 95)
}

// parseSDP unmarshals raw and applies the checks every description has to
// pass. Errors are *SDPSyntaxError.
func (s *Session) parseSDP(raw string) (*sdp.SessionDescription, error) {
	s.lastSDPParsingErrors = nil

	d := &sdp.SessionDescription{}
	if err := d.UnmarshalString(raw); err != nil {
		syntaxErr := &SDPSyntaxError{Line: locateSyntaxError(raw, err.Error()), Message: err.Error(), Err: err}
		s.lastSDPParsingErrors = append(s.lastSDPParsingErrors, *syntaxErr)

		return nil, syntaxErr
	}

	if err := checkSDPRules(d); err != nil {
		syntaxErr := &SDPSyntaxError{Message: err.Error(), Err: err}
		s.lastSDPParsingErrors = append(s.lastSDPParsingErrors, *syntaxErr)

		return nil, syntaxErr
	}

	return d, nil
}

// locateSyntaxError finds the line of raw holding the fragment the parser
// quoted in msg.
func locateSyntaxError(raw, msg string) int {
	start := strings.Index(msg, "`")
	end := strings.LastIndex(msg, "`")
	if start < 0 || end <= start+1 {
		return 0
	}
	fragment := strings.TrimSpace(msg[start+1 : end])

	for i, line := range strings.Split(raw, "\n") {
		if strings.Contains(line, fragment) {
			return i + 1
		}
	}

	return 0
}

func checkSDPRules(d *sdp.SessionDescription) error {
	for level, m := range d.MediaDescriptions {
		if msectionIsDisabled(m) {
			// Disabled, let this stuff slide.
			continue
		}

		if mid := getMid(m); len(mid) > maxMidLength {
			return fmt.Errorf("%w: %q at level %d", ErrMidTooLong, mid, level)
		}

		extmaps, err := sdpParseExtmaps(m)
		if err != nil {
			return fmt.Errorf("level %d: %w", level, err)
		}
		ids := map[uint16]struct{}{}
		for _, e := range extmaps {
			if e.id < 1 || e.id > maxOneByteExtmapID {
				return fmt.Errorf("%w: %d on level %d", ErrExtmapIDOutOfRange, e.id, level)
			}
			if _, ok := ids[e.id]; ok {
				return fmt.Errorf("%w: %d on level %d", ErrExtmapIDDuplicate, e.id, level)
			}
			ids[e.id] = struct{}{}
		}

		if setupRole(m) == sdp.ConnectionRoleHoldconn {
			return fmt.Errorf("%w: level %d", ErrSetupHoldconn, level)
		}

		if t := mediaTypeOf(m); t != MediaTypeAudio && t != MediaTypeVideo {
			continue
		}
		for _, format := range m.MediaName.Formats {
			pt, err := strconv.ParseUint(format, 10, 16)
			if err != nil {
				return fmt.Errorf("%w: %q at level %d", ErrInvalidPayloadType, format, level)
			}
			if pt > maxPayloadType {
				return fmt.Errorf("%w: %q at level %d", ErrPayloadTypeTooLarge, format, level)
			}
			if isForbiddenPayloadType(pt) {
				return fmt.Errorf("%w: %q at level %d", ErrPayloadTypeForbidden, format, level)
			}
		}
	}

	return nil
}

// validateLocalDescription checks that d is the description we generated,
// give or take what the application may touch.
func (s *Session) validateLocalDescription(d *sdp.SessionDescription, sdpType SDPType) error {
	generated := s.st.generatedAnswer
	if sdpType == SDPTypeOffer {
		generated = s.st.generatedOffer
	}
	if generated == nil {
		if sdpType == SDPTypeOffer {
			return ErrNoGeneratedOffer
		}

		return ErrNoGeneratedAnswer
	}

	if len(d.MediaDescriptions) != len(generated.MediaDescriptions) {
		return ErrSectionCountChanged
	}

	for level, m := range d.MediaDescriptions {
		orig := generated.MediaDescriptions[level]
		if mediaTypeOf(orig) != mediaTypeOf(m) {
			return fmt.Errorf("%w: level %d", ErrMediaTypeChanged, level)
		}

		// These will be present in a reoffer.
		if s.st.currentLocal == nil {
			if hasAttribute(m.Attributes, attrCandidate) {
				return ErrLocalCandidates
			}
			if hasAttribute(m.Attributes, attrEndOfCandidates) {
				return ErrLocalEndOfCandidates
			}
		}

		if msectionIsDisabled(m) {
			continue
		}

		mid, ok := attributeValue(m.Attributes, attrMid)
		if !ok {
			return fmt.Errorf("%w: level %d", ErrMissingMid, level)
		}
		if mid != getMid(orig) {
			return fmt.Errorf("%w: level %d", ErrMidChanged, level)
		}
	}

	if hasAttribute(d.Attributes, attrICELite) {
		return ErrLocalIceLite
	}

	return nil
}

// validateRemoteDescription checks a remote description against what has
// already been negotiated.
func (s *Session) validateRemoteDescription(d *sdp.SessionDescription) error {
	if s.st.currentLocal == nil {
		// Initial offer, nothing to check besides parseSDP.
		return nil
	}

	if len(s.st.currentLocal.MediaDescriptions) > len(d.MediaDescriptions) {
		return ErrFewerSections
	}

	for level, m := range d.MediaDescriptions {
		extmaps, err := sdpParseExtmaps(m)
		if err != nil {
			return err
		}
		for _, e := range extmaps {
			if uri, ok := s.st.extmapEntriesEverNegotiated[e.id]; ok && uri != e.uri {
				return fmt.Errorf("%w: id %d from %s to %s at level %d", ErrExtmapRemapped, e.id, uri, e.uri, level)
			}
		}
	}

	if s.st.currentRemote == nil {
		// No further checking for initial answers.
		return nil
	}

	// These are solely to check that bundle is valid.
	if _, err := s.getNegotiatedBundledMids(); err != nil {
		return err
	}
	if _, err := getBundledMids(d); err != nil {
		return err
	}

	var iceCredsDiffer *bool
	for level, oldMsection := range s.st.currentRemote.MediaDescriptions {
		if level >= len(d.MediaDescriptions) {
			return ErrFewerSections
		}
		newMsection := d.MediaDescriptions[level]
		if msectionIsDisabled(newMsection) || msectionIsDisabled(oldMsection) {
			continue
		}

		if mediaTypeOf(oldMsection) != mediaTypeOf(newMsection) {
			return fmt.Errorf("%w: level %d", ErrMediaTypeChanged, level)
		}
		if oldMid, newMid := getMid(oldMsection), getMid(newMsection); oldMid != "" && oldMid != newMid {
			return fmt.Errorf("%w: level %d was %q, now %q", ErrMidChanged, level, oldMid, newMid)
		}

		differ := iceCredentialsDiffer(newMsection, oldMsection)
		if s.isPendingOfferer() && differ && !s.isIceRestarting() {
			return ErrUnexpectedIceRestart
		}

		// Either every section restarts or none does.
		if iceCredsDiffer == nil {
			iceCredsDiffer = &differ
		} else if *iceCredsDiffer != differ {
			return ErrPartialIceRestart
		}
	}

	return nil
}

func validateOffer(offer *sdp.SessionDescription) error {
	return validateTransportAttributes(offer, SDPTypeOffer)
}

func (s *Session) validateAnswer(offer, answer *sdp.SessionDescription) error {
	if len(offer.MediaDescriptions) != len(answer.MediaDescriptions) {
		return fmt.Errorf("%w: offer has %d, answer has %d", ErrSectionCountChanged,
			len(offer.MediaDescriptions), len(answer.MediaDescriptions))
	}

	if err := validateTransportAttributes(answer, SDPTypeAnswer); err != nil {
		return err
	}

	for level, offerMsection := range offer.MediaDescriptions {
		answerMsection := answer.MediaDescriptions[level]
		if mediaTypeOf(offerMsection) != mediaTypeOf(answerMsection) {
			return fmt.Errorf("%w: level %d", ErrMediaTypeChanged, level)
		}

		if msectionIsDisabled(answerMsection) {
			continue
		}
		if msectionIsDisabled(offerMsection) {
			return fmt.Errorf("%w: level %d", ErrAnswerEnablesSection, level)
		}

		offerDirection := msectionDirection(offerMsection)
		answerDirection := msectionDirection(answerMsection)
		if !offerDirection.HasSend() && answerDirection.HasRecv() {
			return fmt.Errorf("%w: level %d", ErrAnswerRecvWithoutSend, level)
		}
		if !offerDirection.HasRecv() && answerDirection.HasSend() {
			return fmt.Errorf("%w: level %d", ErrAnswerSendWithoutRecv, level)
		}

		offerMid, offerHasMid := attributeValue(offerMsection.Attributes, attrMid)
		answerMid, answerHasMid := attributeValue(answerMsection.Attributes, attrMid)
		if offerHasMid && answerHasMid && offerMid != answerMid {
			return fmt.Errorf("%w: level %d was %q, now %q", ErrMidChanged, level, offerMid, answerMid)
		}

		if err := s.validateAnswerExtmaps(level, offerMsection, answerMsection); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) validateAnswerExtmaps(level int, offerMsection, answerMsection *sdp.MediaDescription) error {
	answerExtmaps, err := sdpParseExtmaps(answerMsection)
	if err != nil {
		return err
	}
	if len(answerExtmaps) == 0 {
		return nil
	}

	offerExtmaps, err := sdpParseExtmaps(offerMsection)
	if err != nil {
		return err
	}
	if len(offerExtmaps) == 0 {
		return fmt.Errorf("%w: level %d", ErrAnswerAddsExtmap, level)
	}

	for _, ansExt := range answerExtmaps {
		found := false
		for _, offExt := range offerExtmaps {
			if ansExt.uri != offExt.uri {
				continue
			}

			ansDirection := ansExt.effectiveDirection()
			if ansDirection.Intersect(offExt.effectiveDirection().Reverse()) != ansDirection {
				s.log.Warnf("[%s]: Answer has inconsistent direction on extmap attribute at level %d (%s). Offer had %s, answer had %s.",
					s.name, level, ansExt.uri, offExt.effectiveDirection(), ansDirection)
			}

			if offExt.id < extmapAnswererChooses && offExt.id != ansExt.id {
				return fmt.Errorf("%w: level %d (%s) from %d to %d", ErrAnswerExtmapIDChanged,
					level, offExt.uri, offExt.id, ansExt.id)
			}
			if ansExt.id >= extmapAnswererChooses {
				return fmt.Errorf("%w: %d at level %d (%s)", ErrAnswerExtmapIDInvalid, ansExt.id, level, ansExt.uri)
			}

			found = true

			break
		}

		if !found {
			return fmt.Errorf("%w: %s at level %d", ErrAnswerExtmapNotOffered, ansExt.uri, level)
		}
	}

	return nil
}

// validateTransportAttributes requires ICE credentials and a fingerprint
// on every section that carries its own transport.
func validateTransportAttributes(d *sdp.SessionDescription, sdpType SDPType) error {
	bundled, err := getBundledMids(d)
	if err != nil {
		return err
	}

	for level, m := range d.MediaDescriptions {
		if msectionIsDisabled(m) {
			continue
		}
		if sdpType != SDPTypeOffer && isBundleOnly(m) {
			return fmt.Errorf("%w: level %d", ErrAnswerBundleOnly, level)
		}
		if !ownsTransport(m, level, bundled, sdpType) {
			continue
		}

		ufrag, pwd := inheritedICECredentials(d, m)
		if ufrag == "" || pwd == "" {
			return fmt.Errorf("%w: level %d", ErrMissingICECredentials, level)
		}
		if len(fingerprintsFor(d, m)) == 0 {
			return fmt.Errorf("%w: level %d", ErrMissingFingerprint, level)
		}
	}

	return nil
}
