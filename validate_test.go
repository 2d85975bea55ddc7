// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"testing"

	"github.com/pion/sdp/v3"
	"github.com/stretchr/testify/assert"
)

const testFingerprint = "sha-256 AB:CD:EF:01:23:45:67:89:AB:CD:EF:01:23:45:67:89"

func TestIsForbiddenPayloadType(t *testing.T) {
	for _, pt := range []uint64{1, 2, 19, 64, 72, 95} {
		assert.True(t, isForbiddenPayloadType(pt), pt)
	}
	for _, pt := range []uint64{0, 8, 63, 96, 111, 127} {
		assert.False(t, isForbiddenPayloadType(pt), pt)
	}
}

func TestCheckSDPRules(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(m *sdp.MediaDescription)
		err    error
	}{
		{"valid", func(*sdp.MediaDescription) {}, nil},
		{"payload type not a number", func(m *sdp.MediaDescription) {
			m.MediaName.Formats = []string{"abc"}
		}, ErrInvalidPayloadType},
		{"payload type too large", func(m *sdp.MediaDescription) {
			m.MediaName.Formats = []string{"128"}
		}, ErrPayloadTypeTooLarge},
		{"payload type collides with rtcp", func(m *sdp.MediaDescription) {
			m.MediaName.Formats = []string{"111", "72"}
		}, ErrPayloadTypeForbidden},
		{"reserved payload type", func(m *sdp.MediaDescription) {
			m.MediaName.Formats = []string{"19"}
		}, ErrPayloadTypeForbidden},
		{"mid too long", func(m *sdp.MediaDescription) {
			m.Attributes = setAttribute(m.Attributes, attrMid, "01234567890123456")
		}, ErrMidTooLong},
		{"extmap id zero", func(m *sdp.MediaDescription) {
			m.Attributes = addAttribute(m.Attributes, attrExtmap, "0 "+sdp.SDESMidURI)
		}, ErrExtmapIDOutOfRange},
		{"extmap id beyond one byte", func(m *sdp.MediaDescription) {
			m.Attributes = addAttribute(m.Attributes, attrExtmap, "15 "+sdp.SDESMidURI)
		}, ErrExtmapIDOutOfRange},
		{"extmap id used twice", func(m *sdp.MediaDescription) {
			m.Attributes = addAttribute(m.Attributes, attrExtmap, "3 "+sdp.SDESMidURI)
			m.Attributes = addAttribute(m.Attributes, attrExtmap, "3 "+audioLevelURI)
		}, ErrExtmapIDDuplicate},
		{"extmap malformed", func(m *sdp.MediaDescription) {
			m.Attributes = addAttribute(m.Attributes, attrExtmap, "x "+sdp.SDESMidURI)
		}, ErrSDPAttributeMalformed},
		{"holdconn", func(m *sdp.MediaDescription) {
			m.Attributes = setAttribute(m.Attributes, attrSetup, sdp.ConnectionRoleHoldconn.String())
		}, ErrSetupHoldconn},
		{"disabled sections are not checked", func(m *sdp.MediaDescription) {
			m.MediaName.Port = sdp.RangedPort{Value: 0}
			m.MediaName.Formats = []string{"72"}
		}, nil},
	}

	for i, testCase := range testCases {
		d := newTestDescription(nil, testMsection{MediaTypeAudio, "0", 9, false})
		d.MediaDescriptions[0].MediaName.Formats = []string{"111", "0"}
		testCase.modify(d.MediaDescriptions[0])

		err := checkSDPRules(d)
		if testCase.err == nil {
			assert.NoError(t, err, "testCase: %d %v", i, testCase.name)
		} else {
			assert.ErrorIs(t, err, testCase.err, "testCase: %d %v", i, testCase.name)
		}
	}

	// Formats of a data channel section are not payload types.
	d := newTestDescription(nil, testMsection{MediaTypeApplication, "0", 9, false})
	d.MediaDescriptions[0].MediaName.Formats = []string{dataChannelFormat}
	assert.NoError(t, checkSDPRules(d))
}

func TestLocateSyntaxError(t *testing.T) {
	raw := "v=0\r\no=- 1 1 IN IP4 0.0.0.0\r\nx=bogus\r\n"

	assert.Equal(t, 3, locateSyntaxError(raw, "sdp: invalid syntax `x=bogus`"))
	assert.Equal(t, 0, locateSyntaxError(raw, "sdp: invalid syntax"))
	assert.Equal(t, 0, locateSyntaxError(raw, "sdp: invalid value ``"))
}

func TestValidateTransportAttributes(t *testing.T) {
	newDescription := func() *sdp.SessionDescription {
		d := newTestDescription([][]string{{"0", "1"}},
			testMsection{MediaTypeAudio, "0", 9, false},
			testMsection{MediaTypeVideo, "1", 0, true},
			testMsection{MediaTypeVideo, "2", 0, false},
		)
		d.Attributes = setAttribute(d.Attributes, attrFingerprint, testFingerprint)
		d.MediaDescriptions[0].Attributes = setAttribute(d.MediaDescriptions[0].Attributes, attrICEUfrag, "ufrag")
		d.MediaDescriptions[0].Attributes = setAttribute(d.MediaDescriptions[0].Attributes, attrICEPwd, "pwd")

		return d
	}

	// The bundle-only and the disabled section need no transport attributes.
	assert.NoError(t, validateTransportAttributes(newDescription(), SDPTypeOffer))

	d := newDescription()
	d.MediaDescriptions[0].Attributes = removeAttribute(d.MediaDescriptions[0].Attributes, attrICEPwd)
	assert.ErrorIs(t, validateTransportAttributes(d, SDPTypeOffer), ErrMissingICECredentials)

	// Credentials may come from the session level.
	d.Attributes = setAttribute(d.Attributes, attrICEPwd, "pwd")
	assert.NoError(t, validateTransportAttributes(d, SDPTypeOffer))

	d = newDescription()
	d.Attributes = removeAttribute(d.Attributes, attrFingerprint)
	assert.ErrorIs(t, validateTransportAttributes(d, SDPTypeOffer), ErrMissingFingerprint)

	assert.ErrorIs(t, validateTransportAttributes(newDescription(), SDPTypeAnswer), ErrAnswerBundleOnly)
}

func TestValidateAnswer(t *testing.T) {
	s := newTestSession(t, "offerer", BundlePolicyBalanced)

	newAnswer := func(videoPort int) *sdp.SessionDescription {
		d := newTestDescription([][]string{{"0"}},
			testMsection{MediaTypeAudio, "0", 9, false},
			testMsection{MediaTypeVideo, "1", videoPort, false},
		)
		d.Attributes = setAttribute(d.Attributes, attrFingerprint, testFingerprint)
		d.Attributes = setAttribute(d.Attributes, attrICEUfrag, "ufrag")
		d.Attributes = setAttribute(d.Attributes, attrICEPwd, "pwd")

		return d
	}
	offer := newTestDescription([][]string{{"0"}},
		testMsection{MediaTypeAudio, "0", 9, false},
		testMsection{MediaTypeVideo, "1", 0, false},
	)

	assert.NoError(t, s.validateAnswer(offer, newAnswer(0)))
	assert.ErrorIs(t, s.validateAnswer(offer, newAnswer(9)), ErrAnswerEnablesSection)

	short := newAnswer(0)
	short.MediaDescriptions = short.MediaDescriptions[:1]
	assert.ErrorIs(t, s.validateAnswer(offer, short), ErrSectionCountChanged)
}
