// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollback_LocalOffer(t *testing.T) {
	testCases := []BundlePolicy{BundlePolicyBalanced, BundlePolicyMaxBundle, BundlePolicyMaxCompat}

	for i, policy := range testCases {
		s := newTestSession(t, "offerer", policy)
		addTestTransceivers(t, s, MediaTypeAudio, MediaTypeVideo, MediaTypeApplication)

		_, err := s.CreateOffer(nil)
		require.NoError(t, err, "testCase: %d %v", i, policy)
		before := s.GetTransceivers()

		require.NoError(t, s.SetLocalDescription(SDPTypeOffer, ""), "testCase: %d %v", i, policy)
		assert.Equal(t, SignalingStateHaveLocalOffer, s.SignalingState(), "testCase: %d %v", i, policy)
		for _, tr := range s.GetTransceivers() {
			assert.True(t, tr.IsAssociated(), "testCase: %d %v", i, policy)
		}

		require.NoError(t, s.SetLocalDescription(SDPTypeRollback, ""), "testCase: %d %v", i, policy)
		assert.Equal(t, SignalingStateStable, s.SignalingState(), "testCase: %d %v", i, policy)
		assert.Empty(t, s.GetLocalDescription(DescriptionKindPendingOrCurrent), "testCase: %d %v", i, policy)
		assert.Empty(t, cmp.Diff(before, s.GetTransceivers(), transceiverCmpOpts...), "testCase: %d %v", i, policy)

		// The same offer can be applied again.
		require.NoError(t, s.SetLocalDescription(SDPTypeOffer, ""), "testCase: %d %v", i, policy)
	}
}

func TestRollback_LocalOfferKeepsLaterTransceivers(t *testing.T) {
	s := newTestSession(t, "offerer", BundlePolicyBalanced)
	addTestTransceivers(t, s, MediaTypeAudio)

	_, err := s.CreateOffer(nil)
	require.NoError(t, err)
	require.NoError(t, s.SetLocalDescription(SDPTypeOffer, ""))

	addTestTransceivers(t, s, MediaTypeVideo)
	require.NoError(t, s.SetLocalDescription(SDPTypeRollback, ""))

	transceivers := s.GetTransceivers()
	require.Len(t, transceivers, 2)
	for _, tr := range transceivers {
		assert.False(t, tr.IsAssociated())
		assert.False(t, tr.IsRemoved())
	}
	assert.True(t, s.CheckNegotiationNeeded())
}

func TestRollback_RemoteOffer(t *testing.T) {
	offerer, answerer := newTestPair(t, BundlePolicyBalanced)
	addTestTransceivers(t, offerer, MediaTypeAudio, MediaTypeVideo)

	magic, err := answerer.AddTransceiver(MediaTypeVideo)
	require.NoError(t, err)
	require.NoError(t, answerer.ApplyToTransceiver(magic.ID(), func(tr *Transceiver) { tr.SetAddTrackMagic() }))

	offer, err := offerer.CreateOffer(nil)
	require.NoError(t, err)
	require.NoError(t, answerer.SetRemoteDescription(SDPTypeOffer, offer))

	transceivers := answerer.GetTransceivers()
	require.Len(t, transceivers, 2)
	assert.Equal(t, magic.ID(), answerer.GetTransceiverForLevel(1).ID())
	assert.True(t, answerer.GetTransceiverForLevel(0).OnlyExistsBecauseOfSetRemote())

	require.NoError(t, answerer.SetRemoteDescription(SDPTypeRollback, ""))
	assert.Equal(t, SignalingStateStable, answerer.SignalingState())
	assert.Empty(t, answerer.GetRemoteDescription(DescriptionKindPendingOrCurrent))
	assert.Nil(t, answerer.GetTransceiverForLevel(0))
	assert.Nil(t, answerer.GetTransceiverForLevel(1))

	for _, tr := range answerer.GetTransceivers() {
		assert.False(t, tr.IsAssociated())
		_, hasLevel := tr.Level()
		assert.False(t, hasLevel)

		if tr.ID() == magic.ID() {
			assert.False(t, tr.IsRemoved())
			assert.True(t, tr.HasAddTrackMagic())
		} else {
			assert.True(t, tr.IsRemoved())
			assert.True(t, tr.IsStopped())
		}
	}

	// The offer applies again after the rollback.
	require.NoError(t, answerer.SetRemoteDescription(SDPTypeOffer, offer))
	assert.Equal(t, magic.ID(), answerer.GetTransceiverForLevel(1).ID())
}
