// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"fmt"
	"strings"

	"github.com/pion/sdp/v3"
)

// setupBundle marks sections bundle-only as policy demands and writes the
// single BUNDLE group of a generated description.
func setupBundle(d *sdp.SessionDescription, policy BundlePolicy) {
	var mids []string
	observed := map[MediaType]struct{}{}

	for _, m := range d.MediaDescriptions {
		mid := getMid(m)
		if m.MediaName.Port.Value == 0 || mid == "" {
			continue
		}

		useBundleOnly := false
		switch policy {
		case BundlePolicyBalanced:
			_, useBundleOnly = observed[mediaTypeOf(m)]
			observed[mediaTypeOf(m)] = struct{}{}
		case BundlePolicyMaxBundle:
			useBundleOnly = len(mids) != 0
		default:
		}

		if useBundleOnly {
			m.Attributes = setFlag(m.Attributes, attrBundleOnly)
			m.MediaName.Port = sdp.RangedPort{Value: 0}
		}
		mids = append(mids, mid)
	}

	if len(mids) != 0 {
		d.Attributes = addAttribute(d.Attributes, attrGroup, bundleSemantic+" "+strings.Join(mids, " "))
	}
}

// getBundleGroups returns the mids of every a=group:BUNDLE line.
func getBundleGroups(d *sdp.SessionDescription) [][]string {
	var groups [][]string
	for _, v := range attributeValues(d.Attributes, attrGroup) {
		fields := strings.Fields(v)
		if len(fields) == 0 || fields[0] != bundleSemantic {
			continue
		}
		groups = append(groups, fields[1:])
	}

	return groups
}

// getBundledMids maps every bundled mid to the level of the section that
// carries the group's transport. That is the first mid of the group whose
// section is enabled and not bundle-only; a group without one is ignored.
func getBundledMids(d *sdp.SessionDescription) (map[string]int, error) {
	bundled := map[string]int{}

	for _, group := range getBundleGroups(d) {
		owner := -1
		for _, mid := range group {
			level, m := findMsectionByMid(d, mid)
			if m != nil && !msectionIsDisabled(m) && !isBundleOnly(m) {
				owner = level

				break
			}
		}
		if owner < 0 {
			continue
		}

		for _, mid := range group {
			if _, ok := bundled[mid]; ok {
				return nil, fmt.Errorf("%w: %s", ErrBundleMidDuplicate, mid)
			}
			bundled[mid] = owner
		}
	}

	return bundled, nil
}

// ownsTransport reports whether the section at level carries its own
// transport in a description of sdpType with the given bundled mids. In an
// offer only bundle-only sections defer to the group.
func ownsTransport(m *sdp.MediaDescription, level int, bundled map[string]int, sdpType SDPType) bool {
	if msectionIsDisabled(m) {
		return false
	}

	mid := getMid(m)
	if mid == "" {
		return true
	}

	if sdpType == SDPTypeOffer && !isBundleOnly(m) {
		return true
	}

	owner, ok := bundled[mid]
	if !ok {
		return true
	}

	return owner == level
}

// pruneAnswerBundleGroups reorders each group copied from an offer so its
// first mid can carry the transport, dropping groups where none can.
func pruneAnswerBundleGroups(answer, offer *sdp.SessionDescription) {
	var groups [][]string
	for _, group := range getBundleGroups(answer) {
		kept := make([]string, 0, len(group))
		for _, mid := range group {
			if _, m := findMsectionByMid(answer, mid); m != nil && !msectionIsDisabled(m) {
				kept = append(kept, mid)
			}
		}

		owner := -1
		for i, mid := range kept {
			if _, m := findMsectionByMid(offer, mid); m != nil && !isBundleOnly(m) {
				owner = i

				break
			}
		}
		if owner < 0 {
			continue
		}
		kept[0], kept[owner] = kept[owner], kept[0]
		groups = append(groups, kept)
	}

	out := answer.Attributes[:0:0]
	for _, a := range answer.Attributes {
		if a.Key == attrGroup.String() && strings.HasPrefix(a.Value, bundleSemantic) {
			continue
		}
		out = append(out, a)
	}
	for _, group := range groups {
		out = addAttribute(out, attrGroup, bundleSemantic+" "+strings.Join(group, " "))
	}
	answer.Attributes = out
}

// copyBundleGroups copies the BUNDLE groups of src into dst.
func copyBundleGroups(src, dst *sdp.SessionDescription) {
	for _, group := range getBundleGroups(src) {
		if len(group) == 0 {
			continue
		}
		dst.Attributes = addAttribute(dst.Attributes, attrGroup, bundleSemantic+" "+strings.Join(group, " "))
	}
}

// negotiatedAnswer returns the answer of the last completed negotiation.
func (s *Session) negotiatedAnswer() *sdp.SessionDescription {
	if s.st.isCurrentOfferer == nil {
		return nil
	}
	if *s.st.isCurrentOfferer {
		return s.st.currentRemote
	}

	return s.st.currentLocal
}

func (s *Session) getNegotiatedBundledMids() (map[string]int, error) {
	answer := s.negotiatedAnswer()
	if answer == nil {
		return map[string]int{}, nil
	}

	return getBundledMids(answer)
}
