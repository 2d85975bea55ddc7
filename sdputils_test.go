// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"testing"

	"github.com/pion/sdp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSDPParseCodecs(t *testing.T) {
	m := &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:   "video",
			Formats: []string{"120", "121", "0"},
		},
		Attributes: []sdp.Attribute{
			{Key: "fmtp", Value: "120 max-fs=12288;max-fr=60"},
			{Key: "rtcp-fb", Value: "120 nack"},
			{Key: "rtcp-fb", Value: "120 nack pli"},
			{Key: "rtcp-fb", Value: "* ccm fir"},
			{Key: "rtpmap", Value: "120 VP8/90000"},
			{Key: "rtpmap", Value: "121 rtx/90000"},
			{Key: "fmtp", Value: "121 apt=120"},
		},
	}

	codecs, err := sdpParseCodecs(m)
	require.NoError(t, err)
	assert.Equal(t, []Codec{
		{
			MimeType:     "video/VP8",
			ClockRate:    90000,
			SDPFmtpLine:  "max-fs=12288;max-fr=60",
			RTCPFeedback: []RTCPFeedback{{"nack", ""}, {"nack", "pli"}},
			PayloadType:  120,
		},
		{MimeType: "video/rtx", ClockRate: 90000, SDPFmtpLine: "apt=120", PayloadType: 121},
		{MimeType: MimeTypePCMU, ClockRate: 8000, PayloadType: 0},
	}, codecs)
}

func TestSDPParseCodecs_Failure(t *testing.T) {
	testCases := map[string]*sdp.MediaDescription{
		"BadFormat": {
			MediaName: sdp.MediaName{Media: "audio", Formats: []string{"opus"}},
		},
		"BadRtpmap": {
			MediaName:  sdp.MediaName{Media: "audio", Formats: []string{"111"}},
			Attributes: []sdp.Attribute{{Key: "rtpmap", Value: "111 opus"}},
		},
		"BadClockRate": {
			MediaName:  sdp.MediaName{Media: "audio", Formats: []string{"111"}},
			Attributes: []sdp.Attribute{{Key: "rtpmap", Value: "111 opus/fast"}},
		},
	}

	for name, m := range testCases {
		_, err := sdpParseCodecs(m)
		assert.Error(t, err, name)
	}
}

func TestSDPAddCodec(t *testing.T) {
	m := &sdp.MediaDescription{MediaName: sdp.MediaName{Media: "audio"}}
	opus := Codec{
		MimeType:     MimeTypeOpus,
		ClockRate:    48000,
		Channels:     2,
		SDPFmtpLine:  "minptime=10;useinbandfec=1",
		RTCPFeedback: []RTCPFeedback{{"transport-cc", ""}},
		PayloadType:  111,
	}

	sdpAddCodec(m, opus)
	sdpAddCodec(m, opus)

	assert.Equal(t, []string{"111"}, m.MediaName.Formats)
	assert.Equal(t, []sdp.Attribute{
		{Key: "rtpmap", Value: "111 opus/48000/2"},
		{Key: "fmtp", Value: "111 minptime=10;useinbandfec=1"},
		{Key: "rtcp-fb", Value: "111 transport-cc"},
	}, m.Attributes)

	codecs, err := sdpParseCodecs(m)
	require.NoError(t, err)
	assert.Equal(t, []Codec{opus}, codecs)
}

func TestParseSsrcMedia_Success(t *testing.T) {
	tt := []struct {
		in       sdp.Attribute
		expected sdpSSRCMedia
	}{
		{
			in:       sdp.Attribute{Key: "ssrc", Value: "2520107483 cname:{c830ce58-b0d6-4f95-bb9f-8722bb1eba28}"},
			expected: sdpSSRCMedia{SSRC: 2520107483, Attribute: "cname", Value: "{c830ce58-b0d6-4f95-bb9f-8722bb1eba28}"},
		},
		{
			in:       sdp.Attribute{Key: "ssrc", Value: "1 msid:stream track"},
			expected: sdpSSRCMedia{SSRC: 1, Attribute: "msid", Value: "stream track"},
		},
		{
			in:       sdp.Attribute{Key: "ssrc", Value: "42 flag"},
			expected: sdpSSRCMedia{SSRC: 42, Attribute: "flag"},
		},
	}

	for i, tc := range tt {
		res, err := sdpParseSSRCMedia(tc.in)
		require.NoError(t, err, "testCase: %d", i)
		assert.Equal(t, tc.expected, res, "testCase: %d", i)
	}

	_, err := sdpParseSSRCMedia(sdp.Attribute{Key: "ssrc", Value: "nope cname:x"})
	assert.ErrorIs(t, err, ErrSDPAttributeMalformed)
}

func TestSDPParseSSRCs(t *testing.T) {
	m := &sdp.MediaDescription{
		Attributes: []sdp.Attribute{
			{Key: "ssrc", Value: "1 cname:a"},
			{Key: "ssrc", Value: "1 msid:s t"},
			{Key: "ssrc", Value: "bad"},
			{Key: "ssrc", Value: "2 cname:a"},
		},
	}

	assert.Equal(t, []uint32{1, 2}, sdpParseSSRCs(m))
}

func TestSDPRids(t *testing.T) {
	m := &sdp.MediaDescription{}
	sdpAddRids(m, []string{"h", "l"}, "send")

	assert.Equal(t, []string{"h", "l"}, sdpParseRids(m, "send"))
	assert.Empty(t, sdpParseRids(m, "recv"))

	simulcast, ok := attributeValue(m.Attributes, attrSimulcast)
	assert.True(t, ok)
	assert.Equal(t, "send h;l", simulcast)
}

func TestSDPParseMsidStreams(t *testing.T) {
	m := &sdp.MediaDescription{
		Attributes: []sdp.Attribute{
			{Key: "msid", Value: "stream1 track1"},
			{Key: "msid", Value: "- track1"},
			{Key: "msid", Value: "stream2 track1"},
		},
	}

	assert.Equal(t, []string{"stream1", "stream2"}, sdpParseMsidStreams(m))
}
