// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

// BundlePolicy affects which media sections are marked bundle-only when an
// offer is generated, and so how many transports the remote endpoint sees
// if it is not bundle-aware.
type BundlePolicy int

const (
	// BundlePolicyBalanced offers a full transport for the first section of
	// each media type (audio, video, data) and bundle-only for the rest.
	BundlePolicyBalanced BundlePolicy = iota + 1

	// BundlePolicyMaxCompat offers a full transport for every section.
	BundlePolicyMaxCompat

	// BundlePolicyMaxBundle offers a full transport for the first section
	// only.
	BundlePolicyMaxBundle
)

// This is done this way because of a linter.
const (
	bundlePolicyBalancedStr  = "balanced"
	bundlePolicyMaxCompatStr = "max-compat"
	bundlePolicyMaxBundleStr = "max-bundle"
)

func newBundlePolicy(raw string) BundlePolicy {
	switch raw {
	case bundlePolicyBalancedStr:
		return BundlePolicyBalanced
	case bundlePolicyMaxCompatStr:
		return BundlePolicyMaxCompat
	case bundlePolicyMaxBundleStr:
		return BundlePolicyMaxBundle
	default:
		return BundlePolicy(Unknown)
	}
}

func (t BundlePolicy) String() string {
	switch t {
	case BundlePolicyBalanced:
		return bundlePolicyBalancedStr
	case BundlePolicyMaxCompat:
		return bundlePolicyMaxCompatStr
	case BundlePolicyMaxBundle:
		return bundlePolicyMaxBundleStr
	default:
		return ErrUnknownType.Error()
	}
}
