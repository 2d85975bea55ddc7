// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package util provides auxiliary functions internally used in jsep package
package util

import (
	"fmt"
	"strings"

	"github.com/pion/randutil"
)

// RandHex returns words 32 bit random words rendered as lower case hex,
// eight characters per word.
func RandHex(words int) (string, error) {
	var b strings.Builder
	for i := 0; i < words; i++ {
		v, err := randutil.CryptoUint64()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%08x", uint32(v))
	}

	return b.String(), nil
}

// RandSessionID returns a random origin session id. The top bit is always
// cleared so the value fits a signed 64 bit integer.
func RandSessionID() (uint64, error) {
	v, err := randutil.CryptoUint64()
	if err != nil {
		return 0, err
	}

	return v >> 1, nil
}
