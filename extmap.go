// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"
)

// Header extension URIs the engine adds on its own when a section needs them.
const (
	repairedRTPStreamIDURI     = "urn:ietf:params:rtp-hdrext:sdes:repaired-rtp-stream-id"
	dependencyDescriptorURI    = "https://aomediacodec.github.io/av1-rtp-spec/#dependency-descriptor-rtp-header-extension"
	audioLevelURI              = "urn:ietf:params:rtp-hdrext:ssrc-audio-level"
	extmapDirectionUnspecified = RTPTransceiverDirection(Unknown)
)

// extmapEntry is one RFC 8285 a=extmap line.
type extmapEntry struct {
	id        uint16
	direction RTPTransceiverDirection
	uri       string
	extAttr   string
}

// parseExtmap reads "<id>[/<direction>] <uri> [<extensionattributes>]".
func parseExtmap(value string) (extmapEntry, error) {
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return extmapEntry{}, fmt.Errorf("%w: extmap %q", ErrSDPAttributeMalformed, value)
	}

	e := extmapEntry{direction: extmapDirectionUnspecified, uri: fields[1]}
	idStr, dirStr, hasDir := strings.Cut(fields[0], "/")
	id, err := strconv.ParseUint(idStr, 10, 16)
	if err != nil {
		return extmapEntry{}, fmt.Errorf("%w: extmap id %q", ErrSDPAttributeMalformed, idStr)
	}
	e.id = uint16(id)

	if hasDir {
		d, err := sdp.NewDirection(dirStr)
		if err != nil {
			return extmapEntry{}, fmt.Errorf("%w: extmap direction %q", ErrSDPAttributeMalformed, dirStr)
		}
		e.direction = newRTPTransceiverDirectionFromSDP(d)
	}
	if len(fields) > 2 {
		e.extAttr = strings.Join(fields[2:], " ")
	}

	return e, nil
}

// effectiveDirection treats a missing direction as sendrecv.
func (e extmapEntry) effectiveDirection() RTPTransceiverDirection {
	if e.direction == extmapDirectionUnspecified {
		return RTPTransceiverDirectionSendrecv
	}

	return e.direction
}

func (e extmapEntry) marshal() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(e.id)))
	if e.direction != extmapDirectionUnspecified && e.direction != RTPTransceiverDirectionSendrecv {
		b.WriteString("/" + e.direction.String())
	}
	b.WriteString(" " + e.uri)
	if e.extAttr != "" {
		b.WriteString(" " + e.extAttr)
	}

	return b.String()
}

func sdpParseExtmaps(m *sdp.MediaDescription) ([]extmapEntry, error) {
	var entries []extmapEntry
	for _, v := range attributeValues(m.Attributes, attrExtmap) {
		e, err := parseExtmap(v)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func sdpAddExtmaps(m *sdp.MediaDescription, entries []extmapEntry) {
	if len(entries) == 0 {
		return
	}
	m.Attributes = removeAttribute(m.Attributes, attrExtmap)
	for _, e := range entries {
		m.Attributes = addAttribute(m.Attributes, attrExtmap, e.marshal())
	}
}

// rtpExtension is a header extension this session is willing to offer.
type rtpExtension struct {
	mediaType extensionMediaType
	extmap    extmapEntry
}

// addRtpExtension registers uri for mediaType. Registering the same uri and
// direction for another media type widens the entry to audio and video.
func (s *Session) addRtpExtension(mediaType extensionMediaType, uri string, direction RTPTransceiverDirection) error {
	for i := range s.st.rtpExtensions {
		ext := &s.st.rtpExtensions[i]
		if ext.extmap.effectiveDirection() == direction && ext.extmap.uri == uri {
			if ext.mediaType != mediaType {
				ext.mediaType = extensionMediaTypeAudioVideo
			}

			return nil
		}
	}

	id, err := s.getNeverUsedExtmapEntry()
	if err != nil {
		return err
	}

	e := extmapEntry{id: id, uri: uri, direction: extmapDirectionUnspecified}
	if direction != RTPTransceiverDirectionSendrecv {
		e.direction = direction
	}
	s.st.rtpExtensions = append(s.st.rtpExtensions, rtpExtension{mediaType: mediaType, extmap: e})

	return nil
}

// getNeverUsedExtmapEntry returns the lowest id this session has never
// handed out. Ids from 4096 up are left for answerers to choose.
func (s *Session) getNeverUsedExtmapEntry() (uint16, error) {
	used := make([]int, 0, len(s.st.extmapEntriesEverUsed))
	for id := range s.st.extmapEntriesEverUsed {
		used = append(used, int(id))
	}
	sort.Ints(used)

	result := 1
	for _, id := range used {
		if result != id {
			break
		}
		if id == extmapAnswererChooses-1 {
			return 0, ErrExtmapEntriesExhausted
		}
		result = id + 1
	}

	s.st.extmapEntriesEverUsed[uint16(result)] = struct{}{}

	return uint16(result), nil
}

// getRtpExtensions returns the extensions to put in m. A video section that
// already carries rids pulls in the rid extensions first.
func (s *Session) getRtpExtensions(m *sdp.MediaDescription) ([]extmapEntry, error) {
	mediaType := mediaTypeOf(m)
	if mediaType != MediaTypeAudio && mediaType != MediaTypeVideo {
		return nil, nil
	}

	if mediaType == MediaTypeVideo {
		if msectionDirection(m).HasSend() && s.settings.sdp.dependencyDescriptor &&
			hasAttribute(m.Attributes, attrSimulcast) {
			if err := s.addRtpExtension(extensionMediaTypeVideo, dependencyDescriptorURI,
				RTPTransceiverDirectionSendonly); err != nil {
				return nil, err
			}
		}
		if hasAttribute(m.Attributes, attrRid) {
			if err := s.addRtpExtension(extensionMediaTypeVideo, sdp.SDESRTPStreamIDURI,
				RTPTransceiverDirectionSendonly); err != nil {
				return nil, err
			}
			if s.settings.sdp.rtx {
				if err := s.addRtpExtension(extensionMediaTypeVideo, repairedRTPStreamIDURI,
					RTPTransceiverDirectionSendonly); err != nil {
					return nil, err
				}
			}
		}
	}

	var result []extmapEntry
	for _, ext := range s.st.rtpExtensions {
		if ext.mediaType.matches(mediaType) {
			result = append(result, ext.extmap)
		}
	}

	return result, nil
}

func (s *Session) addExtmap(m *sdp.MediaDescription) error {
	extensions, err := s.getRtpExtensions(m)
	if err != nil {
		return err
	}
	sdpAddExtmaps(m, extensions)

	return nil
}

func (s *Session) addCommonExtmaps(remote, m *sdp.MediaDescription) error {
	extensions, err := s.getRtpExtensions(m)
	if err != nil {
		return err
	}
	theirs, err := sdpParseExtmaps(remote)
	if err != nil {
		return err
	}
	sdpAddExtmaps(m, negotiateExtmaps(theirs, extensions))

	return nil
}

// negotiateExtmaps keeps the offered entries we also support. The offered id
// is kept unless it is one the offerer left for us to choose.
func negotiateExtmaps(theirs, ours []extmapEntry) []extmapEntry {
	var negotiated []extmapEntry
	for _, their := range theirs {
		for _, our := range ours {
			if their.uri != our.uri {
				continue
			}
			e := their
			e.direction = their.effectiveDirection().Reverse().Intersect(our.effectiveDirection())
			if e.direction == RTPTransceiverDirectionInactive {
				continue
			}
			if e.id >= extmapAnswererChooses {
				e.id = our.id
			}
			negotiated = append(negotiated, e)
		}
	}

	return negotiated
}

// recordNegotiatedExtmaps pins the ids of an accepted answer. A local
// extension that collides with a pinned id is moved to a fresh one.
func (s *Session) recordNegotiatedExtmaps(answer *sdp.MediaDescription) error {
	negotiated, err := sdpParseExtmaps(answer)
	if err != nil {
		return err
	}

	for _, n := range negotiated {
		if n.id == 0 {
			continue
		}
		s.st.extmapEntriesEverNegotiated[n.id] = n.uri

		for i := range s.st.rtpExtensions {
			ext := &s.st.rtpExtensions[i]
			switch {
			case ext.extmap.uri == n.uri:
				ext.extmap.id = n.id
				s.st.extmapEntriesEverUsed[n.id] = struct{}{}
			case ext.extmap.id == n.id:
				id, err := s.getNeverUsedExtmapEntry()
				if err != nil {
					return err
				}
				ext.extmap.id = id
			}
		}
	}

	return nil
}
