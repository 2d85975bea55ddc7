// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"github.com/pion/sdp/v3"
)

// ICETransportParameters holds what the remote side told us about its ICE
// agent for one transport.
type ICETransportParameters struct {
	Ufrag      string
	Pwd        string
	Candidates []string
}

// DTLSTransportParameters holds the remote fingerprints and the DTLS role
// we take on one transport.
type DTLSTransportParameters struct {
	Fingerprints []DTLSFingerprint
	Role         DTLSRole
}

// Transport is the negotiated ICE/DTLS binding of a transceiver. Bundled
// transceivers carry a copy of their owner's Transport.
type Transport struct {
	ID         string
	LocalUfrag string
	LocalPwd   string
	ICE        *ICETransportParameters
	DTLS       *DTLSTransportParameters
	// Components is 1 with rtcp-mux, 2 without, 0 before negotiation.
	Components int
}

// Close forgets everything about the transport.
func (t *Transport) Close() {
	*t = Transport{}
}

func (t Transport) clone() Transport {
	if t.ICE != nil {
		ice := *t.ICE
		ice.Candidates = append([]string(nil), t.ICE.Candidates...)
		t.ICE = &ice
	}
	if t.DTLS != nil {
		dtls := *t.DTLS
		dtls.Fingerprints = append([]DTLSFingerprint(nil), t.DTLS.Fingerprints...)
		t.DTLS = &dtls
	}

	return t
}

// ensureHasOwnTransport makes tr the owner of a transport built from the
// local section m.
func (s *Session) ensureHasOwnTransport(m *sdp.MediaDescription, tr *Transceiver) {
	if !tr.HasOwnTransport() {
		// It did not own a transport last time, so nothing carries over.
		tr.transport.Close()
	}

	tr.transport.LocalUfrag, tr.transport.LocalPwd = iceCredentials(m)
	tr.clearBundleLevel()

	if tr.transport.Components == 0 {
		if protocolHasRTCP(mediaSectionProtocol(m)) {
			tr.transport.Components = 2
		} else {
			tr.transport.Components = 1
		}
	}

	if tr.transport.ID == "" {
		tr.transport.ID = s.getNewTransportID()
	}
}

// copyBundleTransports gives every bundled transceiver a copy of its
// owner's transport.
func (s *Session) copyBundleTransports() {
	for _, tr := range s.st.transceivers {
		if bundleLevel, ok := tr.BundleLevel(); ok {
			s.log.Debugf("[%s]: transceiver %d is bundled on transceiver %d", s.name, tr.level, bundleLevel)
			if owner := s.transceiverForLevel(bundleLevel); owner != nil {
				tr.transport = owner.transport.clone()
			}
		}
		if tr.hasLevel {
			s.log.Debugf("[%s]: transceiver %d transport-id: %s components: %d",
				s.name, tr.level, tr.transport.ID, tr.transport.Components)
		}
	}
}

// finalizeTransport is the only place the remote ICE and DTLS parameters
// of a transport are created or replaced.
func (s *Session) finalizeTransport(remoteDesc *sdp.SessionDescription, remote, answer *sdp.MediaDescription,
	t *Transport,
) {
	if t.Components == 0 {
		return
	}

	ufrag, pwd := inheritedICECredentials(remoteDesc, remote)
	if t.ICE == nil || t.ICE.Ufrag != ufrag || t.ICE.Pwd != pwd {
		t.DTLS = nil
		t.ICE = &ICETransportParameters{Ufrag: ufrag, Pwd: pwd}
	}

	if candidates := attributeValues(remote.Attributes, attrCandidate); len(candidates) > 0 {
		t.ICE.Candidates = candidates
	}

	if t.DTLS == nil {
		t.DTLS = &DTLSTransportParameters{
			Fingerprints: fingerprintsFor(remoteDesc, remote),
			Role:         dtlsRoleFromAnswer(setupRole(answer), s.isPendingOfferer()),
		}
	}

	if hasAttribute(answer.Attributes, attrRTCPMux) {
		t.Components = 1
	}
}

// inheritedICECredentials falls back to session level credentials when the
// section carries none.
func inheritedICECredentials(d *sdp.SessionDescription, m *sdp.MediaDescription) (ufrag, pwd string) {
	ufrag, pwd = iceCredentials(m)
	if ufrag == "" {
		ufrag, _ = attributeValue(d.Attributes, attrICEUfrag)
	}
	if pwd == "" {
		pwd, _ = attributeValue(d.Attributes, attrICEPwd)
	}

	return ufrag, pwd
}
