// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"strings"

	"github.com/pion/sdp/v3"
)

type mediaEngineHeaderExtension struct {
	uri       string
	mediaType extensionMediaType
	direction RTPTransceiverDirection
}

// A MediaEngine defines the codecs and header extensions a Session offers
// and accepts. A MediaEngine must not be shared between Sessions.
type MediaEngine struct {
	codecs           []Codec
	headerExtensions []mediaEngineHeaderExtension
}

// RegisterDefaultCodecs registers the default codecs and header extensions.
// RegisterDefaultCodecs is not safe for concurrent use.
func (m *MediaEngine) RegisterDefaultCodecs() error {
	for _, codec := range []Codec{
		{MimeType: MimeTypeOpus, ClockRate: 48000, Channels: 2, SDPFmtpLine: "minptime=10;useinbandfec=1", PayloadType: 111},
		{MimeType: MimeTypeG722, ClockRate: 8000, PayloadType: 9},
		{MimeType: MimeTypePCMU, ClockRate: 8000, PayloadType: 0},
		{MimeType: MimeTypePCMA, ClockRate: 8000, PayloadType: 8},
	} {
		if err := m.RegisterCodec(codec, MediaTypeAudio); err != nil {
			return err
		}
	}

	videoRTCPFeedback := []RTCPFeedback{{"goog-remb", ""}, {"ccm", "fir"}, {"nack", ""}, {"nack", "pli"}}
	for _, codec := range []Codec{
		{MimeType: MimeTypeVP8, ClockRate: 90000, RTCPFeedback: videoRTCPFeedback, PayloadType: 96},
		{MimeType: MimeTypeRTX, ClockRate: 90000, SDPFmtpLine: "apt=96", PayloadType: 97},

		{MimeType: MimeTypeVP9, ClockRate: 90000, SDPFmtpLine: "profile-id=0", RTCPFeedback: videoRTCPFeedback, PayloadType: 98},
		{MimeType: MimeTypeRTX, ClockRate: 90000, SDPFmtpLine: "apt=98", PayloadType: 99},

		{
			MimeType: MimeTypeH264, ClockRate: 90000,
			SDPFmtpLine:  "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42001f",
			RTCPFeedback: videoRTCPFeedback, PayloadType: 102,
		},
		{MimeType: MimeTypeRTX, ClockRate: 90000, SDPFmtpLine: "apt=102", PayloadType: 121},

		{
			MimeType: MimeTypeH264, ClockRate: 90000,
			SDPFmtpLine:  "level-asymmetry-allowed=1;packetization-mode=0;profile-level-id=42001f",
			RTCPFeedback: videoRTCPFeedback, PayloadType: 127,
		},
		{MimeType: MimeTypeRTX, ClockRate: 90000, SDPFmtpLine: "apt=127", PayloadType: 120},

		{MimeType: MimeTypeAV1, ClockRate: 90000, RTCPFeedback: videoRTCPFeedback, PayloadType: 45},
		{MimeType: MimeTypeRTX, ClockRate: 90000, SDPFmtpLine: "apt=45", PayloadType: 46},

		{MimeType: MimeTypeUlpFEC, ClockRate: 90000, PayloadType: 116},
	} {
		if err := m.RegisterCodec(codec, MediaTypeVideo); err != nil {
			return err
		}
	}

	for _, typ := range []MediaType{MediaTypeAudio, MediaTypeVideo} {
		if err := m.RegisterHeaderExtension(sdp.SDESMidURI, typ); err != nil {
			return err
		}
	}
	if err := m.RegisterHeaderExtension(audioLevelURI, MediaTypeAudio); err != nil {
		return err
	}

	return m.RegisterHeaderExtension(sdp.ABSSendTimeURI, MediaTypeVideo)
}

// RegisterCodec adds codec to the MediaEngine. The MIME type has to match
// typ. RegisterCodec is not safe for concurrent use.
func (m *MediaEngine) RegisterCodec(codec Codec, typ MediaType) error {
	if typ != MediaTypeAudio && typ != MediaTypeVideo {
		return ErrUnknownType
	}
	if !strings.HasPrefix(strings.ToLower(codec.MimeType), typ.String()+"/") {
		return ErrCodecMediaTypeMismatch
	}
	m.codecs = append(m.codecs, codec.clone())

	return nil
}

// RegisterHeaderExtension adds a header extension for typ. Without a
// direction the extension is offered sendrecv.
func (m *MediaEngine) RegisterHeaderExtension(uri string, typ MediaType, direction ...RTPTransceiverDirection) error {
	extType := extensionMediaTypeAudio
	switch typ {
	case MediaTypeAudio:
	case MediaTypeVideo:
		extType = extensionMediaTypeVideo
	default:
		return ErrUnknownType
	}

	d := RTPTransceiverDirectionSendrecv
	if len(direction) > 0 {
		d = direction[0]
	}
	m.headerExtensions = append(m.headerExtensions, mediaEngineHeaderExtension{uri: uri, mediaType: extType, direction: d})

	return nil
}

func (m *MediaEngine) copy() *MediaEngine {
	return &MediaEngine{
		codecs:           cloneCodecs(m.codecs),
		headerExtensions: append([]mediaEngineHeaderExtension(nil), m.headerExtensions...),
	}
}
