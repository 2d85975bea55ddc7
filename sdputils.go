// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"
)

// Static payload types that may appear without an rtpmap.
var staticPayloadTypes = map[uint8]Codec{ //nolint:gochecknoglobals
	0: {MimeType: MimeTypePCMU, ClockRate: 8000, PayloadType: 0},
	8: {MimeType: MimeTypePCMA, ClockRate: 8000, PayloadType: 8},
	9: {MimeType: MimeTypeG722, ClockRate: 8000, PayloadType: 9},
}

// sdpParseCodecs returns the codecs of an audio or video section in format
// order.
func sdpParseCodecs(m *sdp.MediaDescription) ([]Codec, error) {
	mediaType := m.MediaName.Media
	byPayloadType := map[uint8]*Codec{}

	for _, a := range m.Attributes {
		if a.Key != attrRtpmap.String() {
			continue
		}
		codec, err := sdpParseRtpMap(mediaType, a)
		if err != nil {
			return nil, err
		}
		byPayloadType[codec.PayloadType] = &codec
	}

	for _, a := range m.Attributes {
		switch a.Key {
		case attrFmtp.String():
			pt, params, err := sdpSplitPayloadType(a)
			if err != nil {
				return nil, err
			}
			if c, ok := byPayloadType[pt]; ok {
				c.SDPFmtpLine = params
			}
		case attrRTCPFb.String():
			pt, fb, err := sdpParseRtcpFeedback(a)
			if err != nil {
				// "*" applies to every format, and is not bound to a payload type.
				continue
			}
			if c, ok := byPayloadType[pt]; ok {
				c.RTCPFeedback = append(c.RTCPFeedback, fb)
			}
		}
	}

	codecs := make([]Codec, 0, len(m.MediaName.Formats))
	for _, format := range m.MediaName.Formats {
		pt, err := strconv.ParseUint(format, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPayloadType, format)
		}
		if c, ok := byPayloadType[uint8(pt)]; ok {
			codecs = append(codecs, *c)
		} else if c, ok := staticPayloadTypes[uint8(pt)]; ok {
			codecs = append(codecs, c)
		}
	}

	return codecs, nil
}

// sdpAddCodec writes the m= format and the rtpmap, fmtp and rtcp-fb lines of c.
func sdpAddCodec(m *sdp.MediaDescription, c Codec) {
	format := strconv.Itoa(int(c.PayloadType))
	if hasFormat(m, format) {
		return
	}
	m.MediaName.Formats = append(m.MediaName.Formats, format)

	rtpmap := fmt.Sprintf("%d %s/%d", c.PayloadType, c.encodingName(), c.ClockRate)
	if c.Channels > 1 {
		rtpmap += "/" + strconv.Itoa(int(c.Channels))
	}
	m.Attributes = addAttribute(m.Attributes, attrRtpmap, rtpmap)

	if c.SDPFmtpLine != "" {
		m.Attributes = addAttribute(m.Attributes, attrFmtp, format+" "+c.SDPFmtpLine)
	}
	for _, fb := range c.RTCPFeedback {
		value := format + " " + fb.Type
		if fb.Parameter != "" {
			value += " " + fb.Parameter
		}
		m.Attributes = addAttribute(m.Attributes, attrRTCPFb, value)
	}
}

func sdpSplitPayloadType(a sdp.Attribute) (uint8, string, error) {
	sp := strings.Index(a.Value, " ")
	if sp < 1 {
		return 0, "", fmt.Errorf("%w: %s attribute to short: %s", ErrSDPAttributeMalformed, a.Key, a.Value)
	}
	pt, err := strconv.ParseUint(a.Value[:sp], 10, 8)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %s", ErrInvalidPayloadType, a.Value[:sp])
	}

	return uint8(pt), strings.TrimSpace(a.Value[sp+1:]), nil
}

// Parses an rtcp-fb line, returns RTCPFeedback object. Sample input:
// a=rtcp-fb:98 nack rpsi
func sdpParseRtcpFeedback(a sdp.Attribute) (uint8, RTCPFeedback, error) {
	pt, fbStr, err := sdpSplitPayloadType(a)
	if err != nil {
		return 0, RTCPFeedback{}, err
	}
	sp := strings.Index(fbStr, " ")

	typ := fbStr
	param := ""
	if sp > 0 {
		typ = fbStr[:sp]
		param = fbStr[sp+1:]
	}

	return pt, RTCPFeedback{
		Type:      typ,
		Parameter: param,
	}, nil
}

// Parses an rtpmap line, returns Codec. Sample input:
// a=rtpmap:109 opus/48000/2
func sdpParseRtpMap(mediaType string, a sdp.Attribute) (Codec, error) {
	pt, codecStr, err := sdpSplitPayloadType(a)
	if err != nil {
		return Codec{}, err
	}

	parts := strings.Split(codecStr, "/")
	if len(parts) < 2 {
		return Codec{}, fmt.Errorf("%w: invalid codec: %s", ErrSDPAttributeMalformed, codecStr)
	}

	clockrate, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Codec{}, fmt.Errorf("%w: invalid clockrate: %s", ErrSDPAttributeMalformed, parts[1])
	}

	channels := uint64(0)
	if len(parts) == 3 {
		channels, err = strconv.ParseUint(parts[2], 10, 16)
		if err != nil {
			return Codec{}, fmt.Errorf("%w: invalid channels: %s", ErrSDPAttributeMalformed, parts[2])
		}
	}

	return Codec{
		MimeType:    mediaType + "/" + parts[0],
		PayloadType: pt,
		ClockRate:   uint32(clockrate),
		Channels:    uint16(channels),
	}, nil
}

// sdpSSRCMedia represents a an RFC 5576 ssrc media attribute.
type sdpSSRCMedia struct {
	SSRC      uint32
	Attribute string
	Value     string
}

// Parses an RFC 5576 ssrc media attribute. Sample input:
// a=ssrc:<ssrc-id> <attribute>
// a=ssrc:<ssrc-id> <attribute>:<value>
func sdpParseSSRCMedia(a sdp.Attribute) (sdpSSRCMedia, error) {
	sp := strings.Index(a.Value, " ")
	if sp < 1 {
		return sdpSSRCMedia{}, fmt.Errorf("%w: ssrc media attribute to short: %s", ErrSDPAttributeMalformed, a.Value)
	}
	ssrcStr := a.Value[:sp]
	ssrc, err := strconv.ParseUint(ssrcStr, 10, 32)
	if err != nil {
		return sdpSSRCMedia{}, fmt.Errorf("%w: failed to parse ssrc: %s", ErrSDPAttributeMalformed, ssrcStr)
	}
	parts := strings.SplitN(a.Value[sp+1:], ":", 2)
	attribute := parts[0]
	value := ""
	if len(parts) > 1 {
		value = parts[1]
	}

	return sdpSSRCMedia{
		SSRC:      uint32(ssrc),
		Attribute: attribute,
		Value:     value,
	}, nil
}

// sdpParseSSRCs returns the distinct ssrcs of a section in order of
// appearance. Malformed lines are skipped.
func sdpParseSSRCs(m *sdp.MediaDescription) []uint32 {
	var ssrcs []uint32
	seen := map[uint32]struct{}{}
	for _, a := range m.Attributes {
		if a.Key != attrSSRC.String() {
			continue
		}
		media, err := sdpParseSSRCMedia(a)
		if err != nil {
			continue
		}
		if _, ok := seen[media.SSRC]; !ok {
			seen[media.SSRC] = struct{}{}
			ssrcs = append(ssrcs, media.SSRC)
		}
	}

	return ssrcs
}

// sdpParseMsidStreams returns the stream ids of the a=msid lines. The
// special "-" stream means the track is in no stream.
func sdpParseMsidStreams(m *sdp.MediaDescription) []string {
	var streams []string
	for _, v := range attributeValues(m.Attributes, attrMsid) {
		fields := strings.Fields(v)
		if len(fields) == 0 || fields[0] == msidNoStream {
			continue
		}
		streams = append(streams, fields[0])
	}

	return streams
}

// sdpParseRids returns the RFC 8851 rids declared with the given direction
// keyword ("send" or "recv").
func sdpParseRids(m *sdp.MediaDescription, direction string) []string {
	var rids []string
	for _, v := range attributeValues(m.Attributes, attrRid) {
		fields := strings.Fields(v)
		if len(fields) >= 2 && fields[1] == direction {
			rids = append(rids, fields[0])
		}
	}

	return rids
}

func sdpAddRids(m *sdp.MediaDescription, rids []string, direction string) {
	if len(rids) == 0 {
		return
	}
	for _, rid := range rids {
		m.Attributes = addAttribute(m.Attributes, attrRid, rid+" "+direction)
	}
	m.Attributes = setAttribute(m.Attributes, attrSimulcast, direction+" "+strings.Join(rids, ";"))
}
