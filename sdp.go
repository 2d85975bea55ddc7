// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"
)

// attributeKind is the closed set of SDP attributes the engine reads or
// writes. Everything else in a description is carried through untouched.
type attributeKind int

const (
	attrMid attributeKind = iota + 1
	attrICEUfrag
	attrICEPwd
	attrICEOptions
	attrICELite
	attrCandidate
	attrEndOfCandidates
	attrFingerprint
	attrSetup
	attrExtmap
	attrExtmapAllowMixed
	attrRTCPMux
	attrRTCPRsize
	attrRTCP
	attrMsid
	attrMsidSemantic
	attrGroup
	attrRid
	attrSimulcast
	attrBundleOnly
	attrIdentity
	attrSSRC
	attrRtpmap
	attrFmtp
	attrRTCPFb
	attrSCTPPort
	attrMaxMessageSize
)

func (k attributeKind) String() string {
	switch k {
	case attrMid:
		return sdp.AttrKeyMID
	case attrICEUfrag:
		return "ice-ufrag"
	case attrICEPwd:
		return "ice-pwd"
	case attrICEOptions:
		return "ice-options"
	case attrICELite:
		return sdp.AttrKeyICELite
	case attrCandidate:
		return sdp.AttrKeyCandidate
	case attrEndOfCandidates:
		return sdp.AttrKeyEndOfCandidates
	case attrFingerprint:
		return "fingerprint"
	case attrSetup:
		return sdp.AttrKeyConnectionSetup
	case attrExtmap:
		return sdp.AttrKeyExtMap
	case attrExtmapAllowMixed:
		return "extmap-allow-mixed"
	case attrRTCPMux:
		return sdp.AttrKeyRTCPMux
	case attrRTCPRsize:
		return sdp.AttrKeyRTCPRsize
	case attrRTCP:
		return "rtcp"
	case attrMsid:
		return sdp.AttrKeyMsid
	case attrMsidSemantic:
		return sdp.AttrKeyMsidSemantic
	case attrGroup:
		return sdp.AttrKeyGroup
	case attrRid:
		return "rid"
	case attrSimulcast:
		return "simulcast"
	case attrBundleOnly:
		return "bundle-only"
	case attrIdentity:
		return sdp.AttrKeyIdentity
	case attrSSRC:
		return sdp.AttrKeySSRC
	case attrRtpmap:
		return "rtpmap"
	case attrFmtp:
		return "fmtp"
	case attrRTCPFb:
		return "rtcp-fb"
	case attrSCTPPort:
		return "sctp-port"
	case attrMaxMessageSize:
		return "max-message-size"
	default:
		return unknownStr
	}
}

func hasAttribute(attributes []sdp.Attribute, k attributeKind) bool {
	_, ok := attributeValue(attributes, k)

	return ok
}

func attributeValue(attributes []sdp.Attribute, k attributeKind) (string, bool) {
	key := k.String()
	for _, a := range attributes {
		if a.Key == key {
			return a.Value, true
		}
	}

	return "", false
}

func attributeValues(attributes []sdp.Attribute, k attributeKind) []string {
	key := k.String()
	var values []string
	for _, a := range attributes {
		if a.Key == key {
			values = append(values, a.Value)
		}
	}

	return values
}

func removeAttribute(attributes []sdp.Attribute, k attributeKind) []sdp.Attribute {
	key := k.String()
	out := attributes[:0:0]
	for _, a := range attributes {
		if a.Key != key {
			out = append(out, a)
		}
	}

	return out
}

// setAttribute replaces every occurrence of k with a single value.
func setAttribute(attributes []sdp.Attribute, k attributeKind, value string) []sdp.Attribute {
	return append(removeAttribute(attributes, k), sdp.NewAttribute(k.String(), value))
}

func setFlag(attributes []sdp.Attribute, k attributeKind) []sdp.Attribute {
	if hasAttribute(attributes, k) {
		return attributes
	}

	return append(attributes, sdp.NewPropertyAttribute(k.String()))
}

func addAttribute(attributes []sdp.Attribute, k attributeKind, value string) []sdp.Attribute {
	return append(attributes, sdp.NewAttribute(k.String(), value))
}

func getMid(m *sdp.MediaDescription) string {
	mid, _ := attributeValue(m.Attributes, attrMid)

	return mid
}

func mediaTypeOf(m *sdp.MediaDescription) MediaType {
	return NewMediaType(m.MediaName.Media)
}

func mediaSectionProtocol(m *sdp.MediaDescription) string {
	return strings.Join(m.MediaName.Protos, "/")
}

func protocolHasRTCP(protocol string) bool {
	return strings.Contains(protocol, "RTP")
}

func isBundleOnly(m *sdp.MediaDescription) bool {
	return hasAttribute(m.Attributes, attrBundleOnly)
}

// msectionIsDisabled is true for port 0 sections that are not bundle-only.
func msectionIsDisabled(m *sdp.MediaDescription) bool {
	return m.MediaName.Port.Value == 0 && !isBundleOnly(m)
}

// msectionDirection reads the direction attribute. RFC 4566 defaults to
// sendrecv when none is present.
func msectionDirection(m *sdp.MediaDescription) RTPTransceiverDirection {
	for _, a := range m.Attributes {
		if a.Value != "" {
			continue
		}
		if d := NewRTPTransceiverDirection(a.Key); d != RTPTransceiverDirection(Unknown) {
			return d
		}
	}

	return RTPTransceiverDirectionSendrecv
}

func setMsectionDirection(m *sdp.MediaDescription, d RTPTransceiverDirection) {
	out := m.Attributes[:0:0]
	for _, a := range m.Attributes {
		if a.Value == "" && NewRTPTransceiverDirection(a.Key) != RTPTransceiverDirection(Unknown) {
			continue
		}
		out = append(out, a)
	}
	m.Attributes = append(out, sdp.NewPropertyAttribute(d.String()))
}

func newMediaSection(mediaType MediaType, protocol string) *sdp.MediaDescription {
	m := &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:  mediaType.String(),
			Port:   sdp.RangedPort{Value: discardPort},
			Protos: strings.Split(protocol, "/"),
		},
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     &sdp.Address{Address: "0.0.0.0"},
		},
	}

	return m
}

func hasFormat(m *sdp.MediaDescription, format string) bool {
	for _, f := range m.MediaName.Formats {
		if f == format {
			return true
		}
	}

	return false
}

// disableMsection rejects a section: port 0, inactive, only the mid kept,
// and a single placeholder format so the m= line stays well formed.
func disableMsection(d *sdp.SessionDescription, m *sdp.MediaDescription) {
	mid := getMid(m)
	if mid != "" {
		d.Attributes = removeMidFromGroups(d.Attributes, mid)
	}

	m.Attributes = nil
	setMsectionDirection(m, RTPTransceiverDirectionInactive)
	m.MediaName.Port = sdp.RangedPort{Value: 0}
	if mid != "" {
		m.Attributes = setAttribute(m.Attributes, attrMid, mid)
	}

	switch mediaTypeOf(m) {
	case MediaTypeAudio:
		m.MediaName.Formats = []string{"0"}
		m.Attributes = addAttribute(m.Attributes, attrRtpmap, "0 PCMU/8000")
	case MediaTypeVideo:
		m.MediaName.Formats = []string{"120"}
		m.Attributes = addAttribute(m.Attributes, attrRtpmap, "120 VP8/90000")
	default:
		m.MediaName.Formats = []string{dataChannelFormat}
	}
}

// copyStickyParams carries attributes that must not change across a
// renegotiation from src to dst.
func copyStickyParams(src, dst *sdp.MediaDescription) {
	if hasAttribute(src.Attributes, attrRTCPMux) {
		dst.Attributes = setFlag(dst.Attributes, attrRTCPMux)
	}
	if mid, ok := attributeValue(src.Attributes, attrMid); ok {
		dst.Attributes = setAttribute(dst.Attributes, attrMid, mid)
	}
	if hasAttribute(src.Attributes, attrRTCPRsize) {
		dst.Attributes = setFlag(dst.Attributes, attrRTCPRsize)
	}
}

func iceCredentials(m *sdp.MediaDescription) (ufrag, pwd string) {
	ufrag, _ = attributeValue(m.Attributes, attrICEUfrag)
	pwd, _ = attributeValue(m.Attributes, attrICEPwd)

	return ufrag, pwd
}

func iceCredentialsDiffer(a, b *sdp.MediaDescription) bool {
	aUfrag, aPwd := iceCredentials(a)
	bUfrag, bPwd := iceCredentials(b)

	return aUfrag != bUfrag || aPwd != bPwd
}

func setupRole(m *sdp.MediaDescription) sdp.ConnectionRole {
	raw, _ := attributeValue(m.Attributes, attrSetup)

	return newConnectionRole(raw)
}

// fingerprintsFor returns the fingerprints that apply to m, media level
// first and session level otherwise.
func fingerprintsFor(d *sdp.SessionDescription, m *sdp.MediaDescription) []DTLSFingerprint {
	values := attributeValues(m.Attributes, attrFingerprint)
	if len(values) == 0 {
		values = attributeValues(d.Attributes, attrFingerprint)
	}

	fingerprints := make([]DTLSFingerprint, 0, len(values))
	for _, v := range values {
		parts := strings.Fields(v)
		if len(parts) != 2 {
			continue
		}
		fingerprints = append(fingerprints, DTLSFingerprint{Algorithm: parts[0], Value: parts[1]})
	}

	return fingerprints
}

func sessionICEOptions(d *sdp.SessionDescription) []string {
	raw, ok := attributeValue(d.Attributes, attrICEOptions)
	if !ok {
		return nil
	}

	return strings.Fields(raw)
}

func midsOf(d *sdp.SessionDescription) []string {
	mids := make([]string, 0, len(d.MediaDescriptions))
	for _, m := range d.MediaDescriptions {
		mids = append(mids, getMid(m))
	}

	return mids
}

func findMsectionByMid(d *sdp.SessionDescription, mid string) (int, *sdp.MediaDescription) {
	for i, m := range d.MediaDescriptions {
		if getMid(m) == mid {
			return i, m
		}
	}

	return -1, nil
}

// copyTransportParams carries candidates, default address and end of
// candidates from a previous local section into a regenerated one.
func copyTransportParams(numComponents int, oldLocal, newLocal *sdp.MediaDescription) error {
	if !isBundleOnly(oldLocal) {
		// Port 0 from a bundle-only section would reject the new one.
		newLocal.MediaName.Port = oldLocal.MediaName.Port
	}
	if oldLocal.ConnectionInformation != nil {
		ci := *oldLocal.ConnectionInformation
		if ci.Address != nil {
			addr := *ci.Address
			ci.Address = &addr
		}
		newLocal.ConnectionInformation = &ci
	}

	if numComponents > 0 {
		for _, c := range attributeValues(oldLocal.Attributes, attrCandidate) {
			component, err := candidateComponent(c)
			if err != nil {
				return err
			}
			if int(component) <= numComponents {
				newLocal.Attributes = addAttribute(newLocal.Attributes, attrCandidate, c)
			}
		}
	}

	if hasAttribute(oldLocal.Attributes, attrEndOfCandidates) {
		newLocal.Attributes = setFlag(newLocal.Attributes, attrEndOfCandidates)
	}

	if rtcp, ok := attributeValue(oldLocal.Attributes, attrRTCP); ok && numComponents == 2 {
		newLocal.Attributes = setAttribute(newLocal.Attributes, attrRTCP, rtcp)
	}

	return nil
}

// addCandidateToSDP appends a trickled candidate to the section at level.
// An empty candidate marks gathering complete for that section.
func addCandidateToSDP(d *sdp.SessionDescription, candidate string, level int, ufrag string) error {
	if level < 0 || level >= len(d.MediaDescriptions) {
		return fmt.Errorf("%w: %d", ErrLevelOutOfRange, level)
	}
	m := d.MediaDescriptions[level]

	if ufrag != "" {
		if ours, _ := iceCredentials(m); ours != ufrag {
			return fmt.Errorf("%w: %s", ErrUnknownUfrag, ufrag)
		}
	}

	if candidate == "" {
		setIceGatheringComplete(m)

		return nil
	}

	m.Attributes = addAttribute(m.Attributes, attrCandidate, trimCandidatePrefix(candidate))

	return nil
}

// setAllIceGatheringComplete marks every section carrying ufrag (or every
// enabled section when ufrag is empty) as done gathering.
func setAllIceGatheringComplete(d *sdp.SessionDescription, ufrag string) {
	for _, m := range d.MediaDescriptions {
		if msectionIsDisabled(m) {
			continue
		}
		if ours, _ := iceCredentials(m); ufrag != "" && ours != ufrag {
			continue
		}
		setIceGatheringComplete(m)
	}
}

func setIceGatheringComplete(m *sdp.MediaDescription) {
	m.Attributes = setFlag(m.Attributes, attrEndOfCandidates)
	m.Attributes = removeAttribute(m.Attributes, attrICEOptions)
}

func setDefaultAddresses(defaultAddr string, defaultPort uint16, defaultRTCPAddr string, defaultRTCPPort uint16,
	m *sdp.MediaDescription,
) {
	m.MediaName.Port = sdp.RangedPort{Value: int(defaultPort)}
	m.ConnectionInformation = &sdp.ConnectionInformation{
		NetworkType: "IN",
		AddressType: addressType(defaultAddr),
		Address:     &sdp.Address{Address: defaultAddr},
	}

	if defaultRTCPAddr == "" {
		return
	}
	m.Attributes = setAttribute(m.Attributes, attrRTCP,
		strconv.Itoa(int(defaultRTCPPort))+" IN "+addressType(defaultRTCPAddr)+" "+defaultRTCPAddr)
}

func addressType(addr string) string {
	if strings.Contains(addr, ":") {
		return "IP6"
	}

	return "IP4"
}

func removeMidFromGroups(attributes []sdp.Attribute, mid string) []sdp.Attribute {
	out := attributes[:0:0]
	for _, a := range attributes {
		if a.Key != attrGroup.String() {
			out = append(out, a)

			continue
		}
		fields := strings.Fields(a.Value)
		kept := fields[:0:0]
		for i, f := range fields {
			if i == 0 || f != mid {
				kept = append(kept, f)
			}
		}
		if len(kept) > 1 {
			out = append(out, sdp.NewAttribute(a.Key, strings.Join(kept, " ")))
		}
	}

	return out
}

func cloneMediaDescription(m *sdp.MediaDescription) *sdp.MediaDescription {
	c := *m
	c.MediaName.Protos = append([]string(nil), m.MediaName.Protos...)
	c.MediaName.Formats = append([]string(nil), m.MediaName.Formats...)
	c.Attributes = append([]sdp.Attribute(nil), m.Attributes...)
	c.Bandwidth = append([]sdp.Bandwidth(nil), m.Bandwidth...)
	if m.ConnectionInformation != nil {
		ci := *m.ConnectionInformation
		if ci.Address != nil {
			addr := *ci.Address
			ci.Address = &addr
		}
		c.ConnectionInformation = &ci
	}

	return &c
}

// cloneSessionDescription copies everything the engine may later mutate.
func cloneSessionDescription(d *sdp.SessionDescription) *sdp.SessionDescription {
	if d == nil {
		return nil
	}
	c := *d
	c.Attributes = append([]sdp.Attribute(nil), d.Attributes...)
	c.MediaDescriptions = make([]*sdp.MediaDescription, len(d.MediaDescriptions))
	for i, m := range d.MediaDescriptions {
		c.MediaDescriptions[i] = cloneMediaDescription(m)
	}

	return &c
}

func marshalSessionDescription(d *sdp.SessionDescription) (string, error) {
	raw, err := d.Marshal()
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
