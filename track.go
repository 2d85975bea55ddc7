// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"
)

// TrackNegotiator negotiates the codecs and SSRCs of one direction of a
// media section.
type TrackNegotiator interface {
	PopulateCodecs(supported []Codec)
	AddToOffer(ssrcs SSRCGenerator, m *sdp.MediaDescription) error
	AddToAnswer(remote *sdp.MediaDescription, ssrcs SSRCGenerator, m *sdp.MediaDescription) error
	Negotiate(answer, remote, local *sdp.MediaDescription) error
	SetActive(active bool)
	ResetReceivePayloadTypes()
}

var _ TrackNegotiator = (*Track)(nil)

type trackDirection int

const (
	trackDirectionSend trackDirection = iota + 1
	trackDirectionRecv
)

func (d trackDirection) String() string {
	switch d {
	case trackDirectionSend:
		return "send"
	case trackDirectionRecv:
		return "recv"
	default:
		return ErrUnknownType.Error()
	}
}

// Track is the default TrackNegotiator. A transceiver has one for each
// direction.
type Track struct {
	mediaType MediaType
	direction trackDirection
	streamIDs []string
	trackID   string
	cname     string
	ssrcs     []uint32
	rids      []string
	prefs     []Codec
	// negotiated is set once an answer is accepted, in the answer's order.
	negotiated []Codec
	active     bool

	receivePayloadTypes       []uint8
	uniqueReceivePayloadTypes []uint8
}

func newTrack(mediaType MediaType, direction trackDirection) *Track {
	return &Track{mediaType: mediaType, direction: direction}
}

// MediaType returns the kind of media the track carries.
func (t *Track) MediaType() MediaType { return t.mediaType }

// StreamIDs returns the msid stream ids of the track.
func (t *Track) StreamIDs() []string { return append([]string(nil), t.streamIDs...) }

// TrackID returns the msid track id, empty when track ids are not encoded.
func (t *Track) TrackID() string { return t.trackID }

// CNAME returns the RTCP CNAME announced with the SSRCs.
func (t *Track) CNAME() string { return t.cname }

// SSRCs returns our SSRCs for a send track and the remote SSRCs for a
// receive track.
func (t *Track) SSRCs() []uint32 { return append([]uint32(nil), t.ssrcs...) }

// Rids returns the simulcast rids of the track.
func (t *Track) Rids() []string { return append([]string(nil), t.rids...) }

// Active reports whether the last negotiation enabled this direction.
func (t *Track) Active() bool { return t.active }

// NegotiatedCodecs returns the codecs of the last accepted answer.
func (t *Track) NegotiatedCodecs() []Codec { return cloneCodecs(t.negotiated) }

// UniqueReceivePayloadTypes returns the payload types that only this
// receive track can match.
func (t *Track) UniqueReceivePayloadTypes() []uint8 {
	return append([]uint8(nil), t.uniqueReceivePayloadTypes...)
}

// UpdateStreamIDs replaces the stream ids of the track.
func (t *Track) UpdateStreamIDs(ids []string) {
	t.streamIDs = append([]string(nil), ids...)
}

// SetRids sets the simulcast rids of a send track. They are offered as
// a=rid lines with an a=simulcast summary.
func (t *Track) SetRids(rids []string) {
	t.rids = append([]string(nil), rids...)
}

func (t *Track) clearRids() {
	t.rids = nil
}

// PopulateCodecs keeps the supported codecs that match the track kind.
func (t *Track) PopulateCodecs(supported []Codec) {
	prefix := t.mediaType.String() + "/"
	t.prefs = nil
	for _, c := range supported {
		if strings.HasPrefix(strings.ToLower(c.MimeType), prefix) {
			t.prefs = append(t.prefs, c.clone())
		}
	}
}

// SetActive marks the direction as enabled or disabled by negotiation.
func (t *Track) SetActive(active bool) {
	t.active = active
}

// ResetReceivePayloadTypes forgets which payload types route to the track.
func (t *Track) ResetReceivePayloadTypes() {
	t.receivePayloadTypes = nil
	t.uniqueReceivePayloadTypes = nil
}

// Clone returns a deep copy of the track.
func (t *Track) Clone() *Track {
	c := *t
	c.streamIDs = append([]string(nil), t.streamIDs...)
	c.ssrcs = append([]uint32(nil), t.ssrcs...)
	c.rids = append([]string(nil), t.rids...)
	c.prefs = cloneCodecs(t.prefs)
	c.negotiated = cloneCodecs(t.negotiated)
	c.receivePayloadTypes = append([]uint8(nil), t.receivePayloadTypes...)
	c.uniqueReceivePayloadTypes = append([]uint8(nil), t.uniqueReceivePayloadTypes...)

	return &c
}

// ensureSSRCs tops the send SSRCs up to n.
func (t *Track) ensureSSRCs(gen SSRCGenerator, n int) error {
	for len(t.ssrcs) < n {
		ssrc, err := gen.Generate()
		if err != nil {
			return err
		}
		t.ssrcs = append(t.ssrcs, ssrc)
	}

	return nil
}

// offerCodecs keeps the negotiated codecs first on a reoffer, then every
// preference whose payload type does not collide with them.
func (t *Track) offerCodecs() []Codec {
	codecs := cloneCodecs(t.negotiated)
	for _, pref := range t.prefs {
		if findCodecByPayloadType(codecs, pref.PayloadType) == nil {
			codecs = append(codecs, pref.clone())
		}
	}

	return codecs
}

// AddToOffer writes the track into a section of an offer.
func (t *Track) AddToOffer(ssrcs SSRCGenerator, m *sdp.MediaDescription) error {
	if t.mediaType == MediaTypeApplication {
		addDataChannelFormat(m)

		return nil
	}

	for _, c := range t.offerCodecs() {
		sdpAddCodec(m, c)
	}

	if t.direction == trackDirectionSend {
		return t.addSendAttributes(ssrcs, m)
	}

	return nil
}

// AddToAnswer writes the codecs both sides support into a section of an
// answer. Leaving m without formats makes the caller reject it.
func (t *Track) AddToAnswer(remote *sdp.MediaDescription, ssrcs SSRCGenerator, m *sdp.MediaDescription) error {
	if t.mediaType == MediaTypeApplication {
		if hasFormat(remote, dataChannelFormat) {
			addDataChannelFormat(m)
		}

		return nil
	}

	theirs, err := sdpParseCodecs(remote)
	if err != nil {
		return err
	}
	codecs := negotiateCodecs(t.prefs, theirs)
	if len(codecs) == 0 {
		return nil
	}
	for _, c := range codecs {
		sdpAddCodec(m, c)
	}

	if t.direction == trackDirectionSend {
		return t.addSendAttributes(ssrcs, m)
	}

	if msectionDirection(m).HasRecv() {
		sdpAddRids(m, sdpParseRids(remote, "send"), "recv")
	}

	return nil
}

func (t *Track) addSendAttributes(ssrcs SSRCGenerator, m *sdp.MediaDescription) error {
	if !msectionDirection(m).HasSend() {
		return nil
	}

	streams := t.streamIDs
	if len(streams) == 0 {
		streams = []string{msidNoStream}
	}
	for _, stream := range streams {
		msid := stream
		if t.trackID != "" {
			msid += " " + t.trackID
		}
		m.Attributes = addAttribute(m.Attributes, attrMsid, msid)
	}

	n := len(t.rids)
	if n == 0 {
		n = 1
	}
	if err := t.ensureSSRCs(ssrcs, n); err != nil {
		return err
	}
	for _, ssrc := range t.ssrcs {
		m.Attributes = addAttribute(m.Attributes, attrSSRC,
			strconv.FormatUint(uint64(ssrc), 10)+" cname:"+t.cname)
	}

	sdpAddRids(m, t.rids, "send")

	return nil
}

func addDataChannelFormat(m *sdp.MediaDescription) {
	if hasFormat(m, dataChannelFormat) {
		return
	}
	m.MediaName.Formats = append(m.MediaName.Formats, dataChannelFormat)
	m.Attributes = setAttribute(m.Attributes, attrSCTPPort, strconv.Itoa(defaultSCTPPort))
	m.Attributes = setAttribute(m.Attributes, attrMaxMessageSize, strconv.Itoa(defaultMaxMessageSize))
}

// sendTrackSetRemote picks up the rids the remote side asked to receive.
func (t *Track) sendTrackSetRemote(ssrcs SSRCGenerator, remote *sdp.MediaDescription) error {
	t.rids = nil
	if hasAttribute(remote.Attributes, attrSimulcast) {
		t.rids = sdpParseRids(remote, "recv")
	}

	n := len(t.rids)
	if n == 0 {
		n = 1
	}

	return t.ensureSSRCs(ssrcs, n)
}

// recvTrackSetRemote reads the stream ids and SSRCs the remote side sends
// with. A section that does not send clears the stream ids.
func (t *Track) recvTrackSetRemote(remote *sdp.MediaDescription) {
	if !msectionDirection(remote).HasSend() {
		t.streamIDs = nil
		t.ssrcs = nil

		return
	}

	if hasAttribute(remote.Attributes, attrMsid) {
		t.streamIDs = sdpParseMsidStreams(remote)
	}
	t.ssrcs = sdpParseSSRCs(remote)
	t.rids = sdpParseRids(remote, "send")
}

// recvTrackSetLocal takes the rids we agreed to receive from our own
// section.
func (t *Track) recvTrackSetLocal(local *sdp.MediaDescription) {
	if t.direction != trackDirectionRecv {
		return
	}
	if !msectionDirection(local).HasRecv() {
		t.rids = nil

		return
	}
	t.rids = sdpParseRids(local, "recv")
}

// Negotiate settles the codecs of the track from an accepted answer.
func (t *Track) Negotiate(answer, remote, _ *sdp.MediaDescription) error {
	if t.mediaType == MediaTypeApplication {
		if !hasFormat(answer, dataChannelFormat) {
			return fmt.Errorf("%w: %s", ErrNoCommonCodecs, dataChannelFormat)
		}

		return nil
	}

	answered, err := sdpParseCodecs(answer)
	if err != nil {
		return err
	}
	negotiated := negotiateCodecs(t.prefs, answered)
	if len(negotiated) == 0 {
		return ErrNoCommonCodecs
	}
	t.negotiated = negotiated

	if t.direction == trackDirectionRecv && msectionDirection(remote).HasSend() {
		t.ssrcs = sdpParseSSRCs(remote)
	}

	return nil
}

// setReceivePayloadTypes records, for every receive track, the payload
// types it may receive and those no other track shares. Before an answer
// exists the offered preferences are used.
func setReceivePayloadTypes(tracks []*Track, localOffer bool) {
	counts := map[uint8]int{}
	for _, t := range tracks {
		codecs := t.negotiated
		if localOffer {
			codecs = t.offerCodecs()
		}
		t.receivePayloadTypes = t.receivePayloadTypes[:0]
		for _, c := range codecs {
			t.receivePayloadTypes = append(t.receivePayloadTypes, c.PayloadType)
			counts[c.PayloadType]++
		}
	}

	for _, t := range tracks {
		t.uniqueReceivePayloadTypes = nil
		for _, pt := range t.receivePayloadTypes {
			if counts[pt] == 1 {
				t.uniqueReceivePayloadTypes = append(t.uniqueReceivePayloadTypes, pt)
			}
		}
	}
}
