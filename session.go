// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package jsep implements the JSEP offer/answer negotiation of a WebRTC
// session: it decides what goes into local descriptions, checks remote
// ones, and tracks which transceiver is bound to which media section and
// transport. It never touches the network.
package jsep

import (
	"fmt"
	"sync"

	"github.com/pion/jsep/internal/util"
	"github.com/pion/jsep/pkg/rtcerr"
	"github.com/pion/logging"
	"github.com/pion/sdp/v3"
)

// Session negotiates one peer connection. It is safe for concurrent use,
// every operation runs to completion under the Session lock.
type Session struct {
	mu sync.Mutex

	name     string
	settings SettingEngine
	log      logging.LeveledLogger

	uuidGen UUIDGenerator
	ssrcGen SSRCGenerator

	supportedCodecs []Codec
	fingerprints    []DTLSFingerprint

	sessionID             uint64
	cname                 string
	defaultRemoteStreamID string

	st *negotiationState

	lastError            string
	lastSDPParsingErrors []SDPSyntaxError
}

// negotiationState is everything an operation may change. Operations work
// on a copy that only replaces the live state on success.
type negotiationState struct {
	state           SignalingState
	transceivers    []*Transceiver
	oldTransceivers []*Transceiver

	currentLocal    *sdp.SessionDescription
	currentRemote   *sdp.SessionDescription
	pendingLocal    *sdp.SessionDescription
	pendingRemote   *sdp.SessionDescription
	generatedOffer  *sdp.SessionDescription
	generatedAnswer *sdp.SessionDescription

	isPendingOfferer *bool
	isCurrentOfferer *bool

	iceUfrag       string
	icePwd         string
	oldIceUfrag    string
	oldIcePwd      string
	iceControlling bool
	remoteIceLite  bool
	iceOptions     []string

	rtpExtensions               []rtpExtension
	extmapEntriesEverUsed       map[uint16]struct{}
	extmapEntriesEverNegotiated map[uint16]string

	usedMids           map[string]struct{}
	midCounter         int
	transportIDCounter int

	bundlePolicy   BundlePolicy
	sessionVersion uint64
	negotiations   int
}

func cloneTransceivers(transceivers []*Transceiver) []*Transceiver {
	if transceivers == nil {
		return nil
	}
	out := make([]*Transceiver, len(transceivers))
	for i, tr := range transceivers {
		out[i] = tr.clone()
	}

	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b

	return &v
}

func (n *negotiationState) clone() *negotiationState {
	c := *n
	c.transceivers = cloneTransceivers(n.transceivers)
	c.oldTransceivers = cloneTransceivers(n.oldTransceivers)

	c.currentLocal = cloneSessionDescription(n.currentLocal)
	c.currentRemote = cloneSessionDescription(n.currentRemote)
	c.pendingLocal = cloneSessionDescription(n.pendingLocal)
	c.pendingRemote = cloneSessionDescription(n.pendingRemote)
	c.generatedOffer = cloneSessionDescription(n.generatedOffer)
	c.generatedAnswer = cloneSessionDescription(n.generatedAnswer)

	c.isPendingOfferer = cloneBool(n.isPendingOfferer)
	c.isCurrentOfferer = cloneBool(n.isCurrentOfferer)
	c.iceOptions = append([]string(nil), n.iceOptions...)

	c.rtpExtensions = append([]rtpExtension(nil), n.rtpExtensions...)
	c.extmapEntriesEverUsed = make(map[uint16]struct{}, len(n.extmapEntriesEverUsed))
	for id := range n.extmapEntriesEverUsed {
		c.extmapEntriesEverUsed[id] = struct{}{}
	}
	c.extmapEntriesEverNegotiated = make(map[uint16]string, len(n.extmapEntriesEverNegotiated))
	for id, uri := range n.extmapEntriesEverNegotiated {
		c.extmapEntriesEverNegotiated[id] = uri
	}
	c.usedMids = make(map[string]struct{}, len(n.usedMids))
	for mid := range n.usedMids {
		c.usedMids[mid] = struct{}{}
	}

	return &c
}

// NewSession creates a Session with the default codecs. See
// API.NewSession for details.
func NewSession(configuration Configuration) (*Session, error) {
	api, err := NewAPI()
	if err != nil {
		return nil, err
	}

	return api.NewSession(configuration)
}

// NewSession creates a new Session with the provided configuration against
// the received API object.
func (api *API) NewSession(configuration Configuration) (*Session, error) {
	s := &Session{
		name:     configuration.Name,
		settings: *api.settingEngine,
		log:      api.settingEngine.LoggerFactory.NewLogger("jsep"),
		uuidGen:  api.settingEngine.generators.UUID,
		ssrcGen:  api.settingEngine.generators.SSRC,
		st: &negotiationState{
			state:                       SignalingStateStable,
			bundlePolicy:                configuration.getBundlePolicy(),
			extmapEntriesEverUsed:       map[uint16]struct{}{},
			extmapEntriesEverNegotiated: map[uint16]string{},
			usedMids:                    map[string]struct{}{},
		},
	}
	if s.uuidGen == nil {
		s.uuidGen = defaultUUIDGenerator{}
	}
	if s.ssrcGen == nil {
		s.ssrcGen = newDefaultSSRCGenerator()
	}

	certificates := configuration.Certificates
	if len(certificates) == 0 {
		certificate, err := GenerateCertificate(nil)
		if err != nil {
			return nil, err
		}
		certificates = []Certificate{*certificate}
	}

	var err error
	if s.fingerprints, err = sessionFingerprints(certificates); err != nil {
		return nil, err
	}

	if err = s.setupIDs(); err != nil {
		return nil, err
	}

	if s.st.iceUfrag, s.st.icePwd, err = s.newICECredentials(); err != nil {
		return nil, err
	}

	mediaEngine := api.mediaEngine.copy()
	s.supportedCodecs = mediaEngine.codecs
	for _, ext := range mediaEngine.headerExtensions {
		if err = s.addRtpExtension(ext.mediaType, ext.uri, ext.direction); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Session) setupIDs() error {
	var err error
	if s.sessionID, err = util.RandSessionID(); err != nil {
		return fmt.Errorf("failed to generate session id: %w", err)
	}
	if s.defaultRemoteStreamID, err = s.uuidGen.Generate(); err != nil {
		return fmt.Errorf("failed to generate default uuid for streams: %w", err)
	}
	if s.cname, err = s.uuidGen.Generate(); err != nil {
		return fmt.Errorf("failed to generate CNAME: %w", err)
	}

	return nil
}

// newICECredentials returns the fixed credentials of the SettingEngine or
// fresh random ones.
func (s *Session) newICECredentials() (string, string, error) {
	if s.settings.candidates.UsernameFragment != "" && s.settings.candidates.Password != "" {
		return s.settings.candidates.UsernameFragment, s.settings.candidates.Password, nil
	}

	return randomICECredentials()
}

// transact runs fn against a copy of the negotiation state. The copy is
// kept only when fn succeeds. The caller holds s.mu.
func (s *Session) transact(fn func() error) error {
	s.lastError = ""
	if s.st.state == SignalingStateClosed {
		err := &rtcerr.InvalidStateError{Err: ErrSessionClosed}
		s.setLastError(err)

		return err
	}

	saved := s.st
	s.st = saved.clone()
	if err := fn(); err != nil {
		s.st = saved
		s.setLastError(err)

		return err
	}

	return nil
}

func (s *Session) setLastError(err error) {
	s.lastError = err.Error()
	s.log.Errorf("[%s]: %s", s.name, s.lastError)
}

func (s *Session) setState(state SignalingState) {
	if state == s.st.state {
		return
	}

	s.log.Infof("[%s]: %s -> %s", s.name, s.st.state, state)
	s.st.state = state
}

// CreateOffer generates an offer covering every transceiver that is not
// stopped. It is applied with SetLocalDescription.
func (s *Session) CreateOffer(options *OfferOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var offer string
	err := s.transact(func() (err error) {
		offer, err = s.createOffer(options)

		return err
	})

	return offer, err
}

// CreateAnswer generates an answer to the pending remote offer.
func (s *Session) CreateAnswer(options *AnswerOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var answer string
	err := s.transact(func() (err error) {
		answer, err = s.createAnswer(options)

		return err
	})

	return answer, err
}

// SetLocalDescription applies a description generated by CreateOffer or
// CreateAnswer. An empty description applies the generated one as is.
func (s *Session) SetLocalDescription(sdpType SDPType, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transact(func() error {
		return s.setLocalDescription(sdpType, description)
	})
}

// SetRemoteDescription applies a description received from the remote peer.
func (s *Session) SetRemoteDescription(sdpType SDPType, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transact(func() error {
		return s.setRemoteDescription(sdpType, description)
	})
}

// Close ends the Session. Every later operation fails with
// InvalidStateError. Calling Close more than once is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastError = ""
	s.setState(SignalingStateClosed)
}

// AddTransceiver creates a transceiver of the given kind. Only one data
// channel transceiver that is not stopped may exist at a time.
func (s *Session) AddTransceiver(kind MediaType, init ...RTPTransceiverInit) (*Transceiver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added *Transceiver
	err := s.transact(func() error {
		if kind != MediaTypeAudio && kind != MediaTypeVideo && kind != MediaTypeApplication {
			return &rtcerr.InvalidAccessError{Err: fmt.Errorf("%w: %s", ErrUnknownType, kind)}
		}

		if kind == MediaTypeApplication {
			for _, tr := range s.st.transceivers {
				if tr.mediaType == MediaTypeApplication && !tr.IsStopped() {
					return &rtcerr.InvalidStateError{Err: ErrDataChannelTransceiverExists}
				}
			}
		}

		direction := RTPTransceiverDirectionSendrecv
		if len(init) > 0 && init[0].Direction != RTPTransceiverDirection(Unknown) {
			direction = init[0].Direction
		}

		id, err := s.uuidGen.Generate()
		if err != nil {
			return &rtcerr.OperationError{Err: err}
		}

		tr := newTransceiver(id, kind, direction)
		if len(init) > 0 && kind != MediaTypeApplication {
			tr.sendTrack.UpdateStreamIDs(init[0].StreamIDs)
			tr.sendTrack.SetRids(init[0].Rids)
		}
		if err = s.initTransceiver(tr); err != nil {
			return &rtcerr.OperationError{Err: err}
		}

		s.log.Debugf("[%s]: Adding transceiver %s", s.name, tr.id)
		s.st.transceivers = append(s.st.transceivers, tr)
		added = tr.clone()

		return nil
	})

	return added, err
}

func (s *Session) initTransceiver(tr *Transceiver) error {
	if tr.mediaType == MediaTypeApplication {
		// Data channels are always sendrecv.
		tr.jsDirection = RTPTransceiverDirectionSendrecv
	} else {
		if err := tr.sendTrack.ensureSSRCs(s.ssrcGen, 1); err != nil {
			return err
		}
		tr.sendTrack.cname = s.cname
		if s.settings.sdp.encodeTrackID {
			tr.sendTrack.trackID = tr.id
		}
	}

	tr.sendTrack.PopulateCodecs(s.supportedCodecs)
	tr.recvTrack.PopulateCodecs(s.supportedCodecs)

	return nil
}

// GetTransceivers returns a snapshot of every transceiver in creation order.
func (s *Session) GetTransceivers() []*Transceiver {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneTransceivers(s.st.transceivers)
}

// GetTransceiverForLevel returns a snapshot of the transceiver assigned to
// the media section at level, or nil.
func (s *Session) GetTransceiverForLevel(level int) *Transceiver {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tr := s.transceiverForLevel(level); tr != nil {
		return tr.clone()
	}

	return nil
}

// GetTransceiverForMid returns a snapshot of the transceiver associated
// with mid, or nil.
func (s *Session) GetTransceiverForMid(mid string) *Transceiver {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tr := s.transceiverForMid(mid); tr != nil {
		return tr.clone()
	}

	return nil
}

// GetTransceiverWithTransport returns a snapshot of the transceiver that
// owns the transport with the given id, or nil.
func (s *Session) GetTransceiverWithTransport(transportID string) *Transceiver {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tr := s.transceiverWithTransport(transportID); tr != nil {
		return tr.clone()
	}

	return nil
}

// ApplyToTransceiver runs fn on the live transceiver with the given id.
// It is the way to stop a transceiver, change its direction or update its
// send track between negotiations.
func (s *Session) ApplyToTransceiver(id string, fn func(*Transceiver)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transact(func() error {
		for _, tr := range s.st.transceivers {
			if tr.id == id {
				fn(tr)

				return nil
			}
		}

		return &rtcerr.OperationError{Err: fmt.Errorf("%w: %s", ErrTransceiverNotFound, id)}
	})
}

func (s *Session) transceiverForLevel(level int) *Transceiver {
	for _, tr := range s.st.transceivers {
		if tr.hasLevel && tr.level == level {
			return tr
		}
	}

	return nil
}

func (s *Session) transceiverForMid(mid string) *Transceiver {
	for _, tr := range s.st.transceivers {
		if tr.IsAssociated() && tr.mid == mid {
			return tr
		}
	}

	return nil
}

func (s *Session) transceiverWithTransport(transportID string) *Transceiver {
	for _, tr := range s.st.transceivers {
		if tr.HasOwnTransport() && tr.transport.ID == transportID {
			return tr
		}
	}

	return nil
}

// SetBundlePolicy changes the policy of the offers generated from now on.
// It can only change before the first local description is negotiated.
func (s *Session) SetBundlePolicy(policy BundlePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transact(func() error {
		if s.st.bundlePolicy == policy {
			return nil
		}
		if s.st.currentLocal != nil {
			return &rtcerr.InvalidModificationError{Err: ErrBundlePolicyLocked}
		}
		s.st.bundlePolicy = policy

		return nil
	})
}

// AddAudioRtpExtension offers the header extension uri on audio sections.
func (s *Session) AddAudioRtpExtension(uri string, direction RTPTransceiverDirection) error {
	return s.registerRtpExtension(extensionMediaTypeAudio, uri, direction)
}

// AddVideoRtpExtension offers the header extension uri on video sections.
func (s *Session) AddVideoRtpExtension(uri string, direction RTPTransceiverDirection) error {
	return s.registerRtpExtension(extensionMediaTypeVideo, uri, direction)
}

// AddAudioVideoRtpExtension offers the header extension uri on audio and
// video sections.
func (s *Session) AddAudioVideoRtpExtension(uri string, direction RTPTransceiverDirection) error {
	return s.registerRtpExtension(extensionMediaTypeAudioVideo, uri, direction)
}

// registerRtpExtension offers the header extension uri on sections of
// mediaType. Adding a uri and direction already offered for the other
// media type offers it on both.
func (s *Session) registerRtpExtension(mediaType extensionMediaType, uri string, direction RTPTransceiverDirection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transact(func() error {
		if err := s.addRtpExtension(mediaType, uri, direction); err != nil {
			return &rtcerr.OperationError{Err: err}
		}

		return nil
	})
}

// SignalingState returns the current signaling state.
func (s *Session) SignalingState() SignalingState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.st.state
}

// IsOfferer reports whether we made the offer of the negotiation in
// progress, or of the last one when none is in progress.
func (s *Session) IsOfferer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.isPendingOfferer != nil {
		return *s.st.isPendingOfferer
	}

	return s.st.isCurrentOfferer != nil && *s.st.isCurrentOfferer
}

// NegotiationCount returns the number of completed negotiations.
func (s *Session) NegotiationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.st.negotiations
}

// GetLocalDescription returns the local description of the given kind, or
// an empty string when there is none.
func (s *Session) GetLocalDescription(kind DescriptionKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.describe(pickDescription(kind, s.st.pendingLocal, s.st.currentLocal))
}

// GetRemoteDescription returns the remote description of the given kind,
// or an empty string when there is none.
func (s *Session) GetRemoteDescription(kind DescriptionKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.describe(pickDescription(kind, s.st.pendingRemote, s.st.currentRemote))
}

func (s *Session) describe(d *sdp.SessionDescription) string {
	if d == nil {
		return ""
	}
	raw, err := marshalSessionDescription(d)
	if err != nil {
		s.log.Warnf("[%s]: failed to marshal description: %v", s.name, err)

		return ""
	}

	return raw
}

// ICECredentials is one ufrag and password pair.
type ICECredentials struct {
	UsernameFragment string
	Password         string
}

// GetLocalIceCredentials returns the distinct credentials found in the
// current and pending local descriptions.
func (s *Session) GetLocalIceCredentials() []ICECredentials {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []ICECredentials
	seen := map[ICECredentials]struct{}{}
	for _, d := range []*sdp.SessionDescription{s.st.currentLocal, s.st.pendingLocal} {
		if d == nil {
			continue
		}
		for _, m := range d.MediaDescriptions {
			ufrag, pwd := iceCredentials(m)
			if ufrag == "" || pwd == "" {
				continue
			}
			creds := ICECredentials{UsernameFragment: ufrag, Password: pwd}
			if _, ok := seen[creds]; !ok {
				seen[creds] = struct{}{}
				result = append(result, creds)
			}
		}
	}

	return result
}

// IsIceControlling reports whether we take the controlling ICE role.
func (s *Session) IsIceControlling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.st.iceControlling
}

// RemoteIsIceLite reports whether the remote description declared ice-lite.
func (s *Session) RemoteIsIceLite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.st.remoteIceLite
}

// GetIceOptions returns the session level ice-options of the last remote
// description.
func (s *Session) GetIceOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.st.iceOptions...)
}

// IsIceRestarting reports whether an ICE restart is in progress.
func (s *Session) IsIceRestarting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isIceRestarting()
}

// GetNegotiatedBundledMids maps every mid bundled by the last answer to the
// mid whose transport it uses.
func (s *Session) GetNegotiatedBundledMids() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bundled, err := s.getNegotiatedBundledMids()
	if err != nil {
		return nil, err
	}

	answer := s.negotiatedAnswer()
	result := make(map[string]string, len(bundled))
	for mid, level := range bundled {
		result[mid] = getMid(answer.MediaDescriptions[level])
	}

	return result, nil
}

// LastError returns the message of the error of the last failed operation.
// It is cleared by the next operation.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastError
}

// LastSDPParsingErrors returns the syntax errors of the last description
// parsed.
func (s *Session) LastSDPParsingErrors() []SDPSyntaxError {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SDPSyntaxError(nil), s.lastSDPParsingErrors...)
}

func (s *Session) isPendingOfferer() bool {
	return s.st.isPendingOfferer != nil && *s.st.isPendingOfferer
}

func (s *Session) isIceRestarting() bool {
	return s.st.oldIceUfrag != ""
}

// setIceRestarting swaps in fresh credentials when a restart starts and
// restores the old ones when it is abandoned. Repeated restart offers keep
// the credentials of before the first one.
func (s *Session) setIceRestarting(restarting bool) error {
	if restarting {
		ufrag, pwd, err := randomICECredentials()
		if err != nil {
			return err
		}
		if !s.isIceRestarting() {
			s.st.oldIceUfrag = s.st.iceUfrag
			s.st.oldIcePwd = s.st.icePwd
		}
		s.st.iceUfrag = ufrag
		s.st.icePwd = pwd

		return nil
	}

	if s.isIceRestarting() {
		s.st.iceUfrag = s.st.oldIceUfrag
		s.st.icePwd = s.st.oldIcePwd
		s.st.oldIceUfrag = ""
		s.st.oldIcePwd = ""
	}

	return nil
}

// randomICECredentials is also used for restarts, which must not reuse
// the fixed SettingEngine credentials.
func randomICECredentials() (string, string, error) {
	ufrag, err := util.RandHex(iceUfragWords)
	if err != nil {
		return "", "", err
	}
	pwd, err := util.RandHex(icePwdWords)
	if err != nil {
		return "", "", err
	}

	return ufrag, pwd, nil
}
