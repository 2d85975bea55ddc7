// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"strings"
	"testing"

	"github.com/pion/jsep/pkg/rtcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCandidate = "candidate:1 1 udp 2130706431 192.168.1.2 53165 typ host"

func TestTrimCandidatePrefix(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		{testCandidate, "1 1 udp 2130706431 192.168.1.2 53165 typ host"},
		{"a=" + testCandidate, "1 1 udp 2130706431 192.168.1.2 53165 typ host"},
		{" " + testCandidate + "\r\n", "1 1 udp 2130706431 192.168.1.2 53165 typ host"},
		{"1 1 udp 2130706431 192.168.1.2 53165 typ host", "1 1 udp 2130706431 192.168.1.2 53165 typ host"},
	}

	for i, testCase := range testCases {
		assert.Equal(t, testCase.out, trimCandidatePrefix(testCase.in), "testCase: %d %v", i, testCase)
	}
}

func TestCandidateComponent(t *testing.T) {
	component, err := candidateComponent(testCandidate)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), component)

	_, err = candidateComponent("candidate:garbage")
	assert.Error(t, err)
}

func TestAddLocalIceCandidate(t *testing.T) {
	s := newTestSession(t, "offerer", BundlePolicyBalanced)
	addTestTransceivers(t, s, MediaTypeAudio)

	_, _, _, err := s.AddLocalIceCandidate(testCandidate, "transport_0", "")
	var stateErr *rtcerr.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.ErrorIs(t, err, ErrNoLocalDescription)

	_, err = s.CreateOffer(nil)
	require.NoError(t, err)
	require.NoError(t, s.SetLocalDescription(SDPTypeOffer, ""))

	transportID := s.GetTransceivers()[0].Transport().ID
	require.NotEmpty(t, transportID)

	level, mid, skipped, err := s.AddLocalIceCandidate(testCandidate, transportID, "")
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, uint16(0), level)
	assert.Equal(t, "0", mid)
	assert.Contains(t, s.GetLocalDescription(DescriptionKindPending), "a="+testCandidate+"\r\n")

	_, _, skipped, err = s.AddLocalIceCandidate(testCandidate, "transport_99", "")
	require.NoError(t, err)
	assert.True(t, skipped)

	_, _, _, err = s.AddLocalIceCandidate("candidate:garbage", transportID, "")
	var opErr *rtcerr.OperationError
	require.ErrorAs(t, err, &opErr)

	_, _, _, err = s.AddLocalIceCandidate(testCandidate, transportID, "someoneElsesUfrag")
	require.ErrorAs(t, err, &opErr)
	assert.ErrorIs(t, err, ErrUnknownUfrag)

	// A failed call leaves the description as it was.
	assert.Equal(t, 1, strings.Count(s.GetLocalDescription(DescriptionKindPending), "a=candidate:"))

	require.NoError(t, s.EndOfLocalCandidates(transportID, "offererUfrag"))
	assert.Contains(t, s.GetLocalDescription(DescriptionKindPending), "a=end-of-candidates\r\n")
}

func TestAddRemoteIceCandidate(t *testing.T) {
	offerer, answerer := newTestPair(t, BundlePolicyBalanced)
	addTestTransceivers(t, offerer, MediaTypeAudio, MediaTypeVideo)

	_, err := answerer.AddRemoteIceCandidate(testCandidate, "0", nil, "")
	var stateErr *rtcerr.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.ErrorIs(t, err, ErrNoRemoteDescription)

	negotiate(t, offerer, answerer)
	audioTransportID := answerer.GetTransceiverForLevel(0).Transport().ID
	videoTransportID := answerer.GetTransceiverForLevel(1).Transport().ID

	transportID, err := answerer.AddRemoteIceCandidate(testCandidate, "0", nil, "")
	require.NoError(t, err)
	assert.Equal(t, audioTransportID, transportID)

	level := uint16(1)
	transportID, err = answerer.AddRemoteIceCandidate(testCandidate, "", &level, "offererUfrag")
	require.NoError(t, err)
	assert.Equal(t, videoTransportID, transportID)
	assert.Equal(t, 2, strings.Count(answerer.GetRemoteDescription(DescriptionKindCurrent), "a="+testCandidate))

	var opErr *rtcerr.OperationError
	_, err = answerer.AddRemoteIceCandidate(testCandidate, "9", nil, "")
	require.ErrorAs(t, err, &opErr)
	assert.ErrorIs(t, err, ErrTransceiverNotFound)

	_, err = answerer.AddRemoteIceCandidate("candidate:garbage", "0", nil, "")
	require.ErrorAs(t, err, &opErr)

	_, err = answerer.AddRemoteIceCandidate(testCandidate, "0", nil, "someoneElsesUfrag")
	require.ErrorAs(t, err, &opErr)
	assert.ErrorIs(t, err, ErrUnknownUfrag)

	// Without mid or level every section is done gathering.
	_, err = answerer.AddRemoteIceCandidate("", "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(answerer.GetRemoteDescription(DescriptionKindCurrent), "a=end-of-candidates"))
}

func TestUpdateDefaultCandidate(t *testing.T) {
	offerer, answerer := newTestPair(t, BundlePolicyBalanced)
	addTestTransceivers(t, offerer, MediaTypeAudio)

	err := offerer.UpdateDefaultCandidate("192.168.1.2", 53165, "192.168.1.2", 53166, "transport_0")
	var stateErr *rtcerr.InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	negotiate(t, offerer, answerer)
	transportID := offerer.GetTransceivers()[0].Transport().ID

	require.NoError(t, offerer.UpdateDefaultCandidate("192.168.1.2", 53165, "192.168.1.2", 53166, transportID))

	local := parseTestSDP(t, offerer.GetLocalDescription(DescriptionKindCurrent))
	m := local.MediaDescriptions[0]
	assert.Equal(t, 53165, m.MediaName.Port.Value)
	require.NotNil(t, m.ConnectionInformation)
	assert.Equal(t, "IP4", m.ConnectionInformation.AddressType)
	assert.Equal(t, "192.168.1.2", m.ConnectionInformation.Address.Address)

	// rtcp-mux was negotiated, so no a=rtcp for the candidate.
	assert.NotContains(t, offerer.GetLocalDescription(DescriptionKindCurrent), "a=rtcp:53166")

	require.NoError(t, offerer.UpdateDefaultCandidate("::1", 53167, "", 0, transportID))
	local = parseTestSDP(t, offerer.GetLocalDescription(DescriptionKindCurrent))
	assert.Equal(t, "IP6", local.MediaDescriptions[0].ConnectionInformation.AddressType)
}
