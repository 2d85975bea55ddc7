// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"strconv"
	"strings"

	"github.com/pion/jsep/internal/fmtp"
)

// RTCPFeedback signals the connection to use additional RTCP packet types.
// https://draft.ortc.org/#dom-rtcrtcpfeedback
type RTCPFeedback struct {
	// Type is the type of feedback.
	// see: https://draft.ortc.org/#dom-rtcrtcpfeedback
	// valid: ack, ccm, nack, goog-remb, transport-cc
	Type string

	// The parameter value depends on the type.
	// For example, type="nack" parameter="pli" will send Picture Loss Indicator packets.
	Parameter string
}

// Codec is one payload format a track can offer or accept.
type Codec struct {
	MimeType     string
	ClockRate    uint32
	Channels     uint16
	SDPFmtpLine  string
	RTCPFeedback []RTCPFeedback
	PayloadType  uint8
}

// encodingName is the rtpmap name, the part of the MIME type after the slash.
func (c Codec) encodingName() string {
	if i := strings.IndexByte(c.MimeType, '/'); i >= 0 {
		return c.MimeType[i+1:]
	}

	return c.MimeType
}

func (c Codec) parsedFmtp() fmtp.FMTP {
	return fmtp.Parse(c.MimeType, c.ClockRate, c.Channels, c.SDPFmtpLine)
}

func (c Codec) isRTX() bool {
	return strings.EqualFold(c.encodingName(), "rtx")
}

// associatedPayloadType is the apt of an RTX codec.
func (c Codec) associatedPayloadType() (uint8, bool) {
	apt, ok := c.parsedFmtp().Parameter("apt")
	if !ok {
		return 0, false
	}
	pt, err := strconv.ParseUint(apt, 10, 8)
	if err != nil {
		return 0, false
	}

	return uint8(pt), true
}

func (c Codec) channels() uint16 {
	if c.Channels == 0 {
		return 1
	}

	return c.Channels
}

// matches reports whether two codecs describe the same format, ignoring
// payload types.
func (c Codec) matches(o Codec) bool {
	if !strings.EqualFold(c.MimeType, o.MimeType) || c.ClockRate != o.ClockRate || c.channels() != o.channels() {
		return false
	}
	if c.isRTX() {
		return true
	}

	return c.parsedFmtp().Match(o.parsedFmtp())
}

func (c Codec) clone() Codec {
	c.RTCPFeedback = append([]RTCPFeedback(nil), c.RTCPFeedback...)

	return c
}

func cloneCodecs(codecs []Codec) []Codec {
	if codecs == nil {
		return nil
	}
	out := make([]Codec, len(codecs))
	for i := range codecs {
		out[i] = codecs[i].clone()
	}

	return out
}

// negotiateCodecs returns the remote codecs the local ones can match, in the
// remote order and with the remote payload types. RTX survives only when
// the codec it repairs does.
func negotiateCodecs(local, remote []Codec) []Codec {
	var out []Codec
	for _, theirs := range remote {
		if theirs.isRTX() {
			continue
		}
		for _, ours := range local {
			if ours.isRTX() || !ours.matches(theirs) {
				continue
			}
			negotiated := theirs.clone()
			negotiated.RTCPFeedback = commonFeedback(ours.RTCPFeedback, theirs.RTCPFeedback)
			out = append(out, negotiated)

			break
		}
	}

	for _, theirs := range remote {
		if !theirs.isRTX() || !hasRTX(local) {
			continue
		}
		apt, ok := theirs.associatedPayloadType()
		if ok && findCodecByPayloadType(out, apt) != nil {
			out = append(out, theirs.clone())
		}
	}

	return out
}

func commonFeedback(a, b []RTCPFeedback) []RTCPFeedback {
	var out []RTCPFeedback
	for _, fa := range a {
		for _, fb := range b {
			if fa.Type == fb.Type && fa.Parameter == fb.Parameter {
				out = append(out, fa)

				break
			}
		}
	}

	return out
}

func hasRTX(codecs []Codec) bool {
	for _, c := range codecs {
		if c.isRTX() {
			return true
		}
	}

	return false
}

func findCodecByPayloadType(codecs []Codec, pt uint8) *Codec {
	for i := range codecs {
		if codecs[i].PayloadType == pt {
			return &codecs[i]
		}
	}

	return nil
}
