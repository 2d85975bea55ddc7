// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"github.com/pion/sdp/v3"
)

// DTLSRole indicates the role of the DTLS transport.
type DTLSRole byte

const (
	// DTLSRoleAuto defines the DTLS role is not decided yet.
	DTLSRoleAuto DTLSRole = iota + 1

	// DTLSRoleClient defines the DTLS client role.
	DTLSRoleClient

	// DTLSRoleServer defines the DTLS server role.
	DTLSRoleServer
)

func (r DTLSRole) String() string {
	switch r {
	case DTLSRoleAuto:
		return "auto"
	case DTLSRoleClient:
		return "client"
	case DTLSRoleServer:
		return "server"
	default:
		return unknownStr
	}
}

// connectionRole is the a=setup value that advertises r.
func (r DTLSRole) connectionRole() sdp.ConnectionRole {
	switch r {
	case DTLSRoleClient:
		return sdp.ConnectionRoleActive
	case DTLSRoleServer:
		return sdp.ConnectionRolePassive
	default:
		return sdp.ConnectionRoleActpass
	}
}

func newConnectionRole(raw string) sdp.ConnectionRole {
	switch raw {
	case sdp.ConnectionRoleActive.String():
		return sdp.ConnectionRoleActive
	case sdp.ConnectionRolePassive.String():
		return sdp.ConnectionRolePassive
	case sdp.ConnectionRoleActpass.String():
		return sdp.ConnectionRoleActpass
	case sdp.ConnectionRoleHoldconn.String():
		return sdp.ConnectionRoleHoldconn
	default:
		return sdp.ConnectionRole(Unknown)
	}
}

// answererSetupRole picks the a=setup value of an answer from the one
// offered. A missing or unrecognized offer value is treated as actpass.
func answererSetupRole(offered sdp.ConnectionRole) (sdp.ConnectionRole, error) {
	switch offered {
	case sdp.ConnectionRoleActive:
		return sdp.ConnectionRolePassive, nil
	case sdp.ConnectionRoleHoldconn:
		return sdp.ConnectionRole(Unknown), ErrSetupHoldconn
	default:
		return sdp.ConnectionRoleActive, nil
	}
}

// dtlsRoleFromAnswer derives our DTLS role once the answer is known.
func dtlsRoleFromAnswer(answered sdp.ConnectionRole, isOfferer bool) DTLSRole {
	if answered == sdp.ConnectionRole(Unknown) {
		// Nothing in the answer to go by.
		if isOfferer {
			return DTLSRoleServer
		}

		return DTLSRoleClient
	}

	if isOfferer {
		if answered == sdp.ConnectionRoleActive {
			return DTLSRoleServer
		}

		return DTLSRoleClient
	}

	if answered == sdp.ConnectionRoleActive {
		return DTLSRoleClient
	}

	return DTLSRoleServer
}
