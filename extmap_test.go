// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"strconv"
	"testing"

	"github.com/pion/sdp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtmap(t *testing.T) {
	testCases := []struct {
		value string
		entry extmapEntry
	}{
		{
			"1 " + sdp.SDESMidURI,
			extmapEntry{id: 1, direction: extmapDirectionUnspecified, uri: sdp.SDESMidURI},
		},
		{
			"2/sendonly urn:example:ext attr1 attr2",
			extmapEntry{id: 2, direction: RTPTransceiverDirectionSendonly, uri: "urn:example:ext", extAttr: "attr1 attr2"},
		},
		{
			"4096/recvonly urn:example:ext",
			extmapEntry{id: 4096, direction: RTPTransceiverDirectionRecvonly, uri: "urn:example:ext"},
		},
	}

	for i, testCase := range testCases {
		e, err := parseExtmap(testCase.value)
		require.NoError(t, err, "testCase: %d %v", i, testCase.value)
		assert.Equal(t, testCase.entry, e, "testCase: %d %v", i, testCase.value)
		assert.Equal(t, testCase.value, e.marshal(), "testCase: %d %v", i, testCase.value)
	}

	for i, value := range []string{"", "1", "x urn:example:ext", "70000 urn:example:ext", "3/bogus urn:example:ext"} {
		_, err := parseExtmap(value)
		assert.ErrorIs(t, err, ErrSDPAttributeMalformed, "testCase: %d %v", i, value)
	}
}

func TestExtmapEntry_Marshal(t *testing.T) {
	e := extmapEntry{id: 3, direction: RTPTransceiverDirectionSendrecv, uri: "urn:example:ext"}
	assert.Equal(t, "3 urn:example:ext", e.marshal())
	assert.Equal(t, RTPTransceiverDirectionSendrecv, extmapEntry{direction: extmapDirectionUnspecified}.effectiveDirection())
}

func TestGetNeverUsedExtmapEntry(t *testing.T) {
	s := newTestSession(t, "offerer", BundlePolicyBalanced)

	s.st.extmapEntriesEverUsed = map[uint16]struct{}{1: {}, 2: {}, 4: {}}
	id, err := s.getNeverUsedExtmapEntry()
	require.NoError(t, err)
	assert.Equal(t, uint16(3), id)

	id, err = s.getNeverUsedExtmapEntry()
	require.NoError(t, err)
	assert.Equal(t, uint16(5), id)

	s.st.extmapEntriesEverUsed = map[uint16]struct{}{}
	for i := uint16(1); i < extmapAnswererChooses; i++ {
		s.st.extmapEntriesEverUsed[i] = struct{}{}
	}
	_, err = s.getNeverUsedExtmapEntry()
	assert.ErrorIs(t, err, ErrExtmapEntriesExhausted)
}

func TestNegotiateExtmaps(t *testing.T) {
	theirs := []extmapEntry{
		{id: 1, direction: RTPTransceiverDirectionSendonly, uri: "urn:example:a"},
		{id: 4096, direction: extmapDirectionUnspecified, uri: "urn:example:b"},
		{id: 3, direction: RTPTransceiverDirectionRecvonly, uri: "urn:example:c"},
		{id: 5, direction: RTPTransceiverDirectionSendonly, uri: "urn:example:d"},
		{id: 6, direction: extmapDirectionUnspecified, uri: "urn:example:unsupported"},
	}
	ours := []extmapEntry{
		{id: 10, direction: extmapDirectionUnspecified, uri: "urn:example:a"},
		{id: 11, direction: extmapDirectionUnspecified, uri: "urn:example:b"},
		{id: 12, direction: RTPTransceiverDirectionSendonly, uri: "urn:example:c"},
		{id: 13, direction: RTPTransceiverDirectionSendonly, uri: "urn:example:d"},
	}

	assert.Equal(t, []extmapEntry{
		{id: 1, direction: RTPTransceiverDirectionRecvonly, uri: "urn:example:a"},
		{id: 11, direction: RTPTransceiverDirectionSendrecv, uri: "urn:example:b"},
		{id: 3, direction: RTPTransceiverDirectionSendonly, uri: "urn:example:c"},
	}, negotiateExtmaps(theirs, ours))
}

func TestSession_AddRtpExtension(t *testing.T) {
	s := newTestSession(t, "offerer", BundlePolicyBalanced)
	registered := len(s.st.rtpExtensions)

	require.NoError(t, s.AddAudioRtpExtension("urn:example:ext", RTPTransceiverDirectionSendrecv))
	require.Len(t, s.st.rtpExtensions, registered+1)
	assert.Equal(t, extensionMediaTypeAudio, s.st.rtpExtensions[registered].mediaType)

	// The same extension for video widens the existing entry.
	require.NoError(t, s.AddVideoRtpExtension("urn:example:ext", RTPTransceiverDirectionSendrecv))
	require.Len(t, s.st.rtpExtensions, registered+1)
	assert.Equal(t, extensionMediaTypeAudioVideo, s.st.rtpExtensions[registered].mediaType)

	// Another direction is another entry.
	require.NoError(t, s.AddAudioVideoRtpExtension("urn:example:ext", RTPTransceiverDirectionSendonly))
	require.Len(t, s.st.rtpExtensions, registered+2)
	assert.NotEqual(t, s.st.rtpExtensions[registered].extmap.id, s.st.rtpExtensions[registered+1].extmap.id)

	addTestTransceivers(t, s, MediaTypeAudio, MediaTypeVideo)
	offer, err := s.CreateOffer(nil)
	require.NoError(t, err)

	for _, m := range parseTestSDP(t, offer).MediaDescriptions {
		extmaps, err := sdpParseExtmaps(m)
		require.NoError(t, err)

		var found int
		for _, e := range extmaps {
			if e.uri == "urn:example:ext" {
				found++
			}
		}
		assert.Equal(t, 2, found)
	}
}

func TestSession_RecordNegotiatedExtmaps(t *testing.T) {
	s := newTestSession(t, "offerer", BundlePolicyBalanced)
	require.NoError(t, s.AddAudioRtpExtension("urn:example:a", RTPTransceiverDirectionSendrecv))
	require.NoError(t, s.AddAudioRtpExtension("urn:example:b", RTPTransceiverDirectionSendrecv))

	idOf := func(uri string) uint16 {
		for _, ext := range s.st.rtpExtensions {
			if ext.extmap.uri == uri {
				return ext.extmap.id
			}
		}
		t.Fatalf("%s is not registered", uri)

		return 0
	}
	idB := idOf("urn:example:b")

	// The answerer put a on the id we use for b.
	answer := &sdp.MediaDescription{}
	answer.Attributes = addAttribute(answer.Attributes, attrExtmap, strconv.Itoa(int(idB))+" urn:example:a")
	require.NoError(t, s.recordNegotiatedExtmaps(answer))

	assert.Equal(t, idB, idOf("urn:example:a"))
	assert.NotEqual(t, idB, idOf("urn:example:b"))
	assert.NotZero(t, idOf("urn:example:b"))
	assert.Equal(t, "urn:example:a", s.st.extmapEntriesEverNegotiated[idB])

	ids := map[uint16]string{}
	for _, ext := range s.st.rtpExtensions {
		if uri, ok := ids[ext.extmap.id]; ok {
			assert.Equal(t, uri, ext.extmap.uri, "id %d is shared", ext.extmap.id)
		}
		ids[ext.extmap.id] = ext.extmap.uri
	}
}
