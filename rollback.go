// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

func (s *Session) rollbackLocal() error {
	s.st.pendingLocal = nil
	s.st.isPendingOfferer = nil
	s.setState(SignalingStateStable)

	return s.rollbackLocalOffer()
}

func (s *Session) rollbackRemote() error {
	s.st.pendingRemote = nil
	s.st.isPendingOfferer = nil
	s.setState(SignalingStateStable)

	return s.rollbackRemoteOffer()
}

// freshTransceiver returns a transceiver of tr's kind in the state
// AddTransceiver would have left it.
func (s *Session) freshTransceiver(tr *Transceiver) (*Transceiver, error) {
	fresh := newTransceiver(tr.id, tr.mediaType, tr.jsDirection)
	if err := s.initTransceiver(fresh); err != nil {
		return nil, err
	}

	return fresh, nil
}

// rollbackLocalOffer undoes what the local offer did to the transceivers.
// Transceivers added since the offer stay.
func (s *Session) rollbackLocalOffer() error {
	for i, tr := range s.st.transceivers {
		if i < len(s.st.oldTransceivers) {
			tr.rollback(s.st.oldTransceivers[i], false)

			continue
		}

		fresh, err := s.freshTransceiver(tr)
		if err != nil {
			return err
		}
		tr.rollback(fresh, false)
	}
	s.st.oldTransceivers = nil

	return nil
}

// rollbackRemoteOffer undoes what the remote offer did to the
// transceivers. Transceivers the offer created are removed, the ones it
// merely attached to keep their track for the next offer.
func (s *Session) rollbackRemoteOffer() error {
	for i, tr := range s.st.transceivers {
		if i < len(s.st.oldTransceivers) {
			tr.rollback(s.st.oldTransceivers[i], true)

			continue
		}

		if !tr.hasLevel {
			// Added locally and not attached to the offer yet.
			continue
		}

		fresh, err := s.freshTransceiver(tr)
		if err != nil {
			return err
		}
		tr.rollback(fresh, true)

		if tr.onlyExistsBecauseOfSetRemote {
			s.log.Debugf("[%s]: Removing transceiver %s created by rolled back offer", s.name, tr.id)
			tr.setStopped()
			tr.disassociate()
			tr.setRemoved()
		} else {
			tr.SetAddTrackMagic()
		}
	}
	s.st.oldTransceivers = nil

	return nil
}
