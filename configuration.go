// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

// Configuration defines a set of parameters to configure how a Session
// negotiates.
type Configuration struct {
	// Name prefixes every log line of the Session.
	Name string

	// BundlePolicy indicates which media-bundling policy to use when
	// generating offers. The zero value is balanced.
	BundlePolicy BundlePolicy

	// Certificates describes a set of certificates whose fingerprints are
	// written into every description. When empty a certificate is
	// generated.
	Certificates []Certificate
}

func (c Configuration) getBundlePolicy() BundlePolicy {
	if c.BundlePolicy == BundlePolicy(Unknown) {
		return BundlePolicyBalanced
	}

	return c.BundlePolicy
}
