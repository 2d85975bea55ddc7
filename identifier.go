// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/randutil"
)

// UUIDGenerator mints transceiver ids, the session CNAME and the default
// remote stream id.
type UUIDGenerator interface {
	Generate() (string, error)
}

// SSRCGenerator mints SSRCs for send tracks.
type SSRCGenerator interface {
	Generate() (uint32, error)
}

type defaultUUIDGenerator struct{}

func (defaultUUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	return "{" + id.String() + "}", nil
}

// defaultSSRCGenerator never hands out zero or the same SSRC twice.
type defaultSSRCGenerator struct {
	mu   sync.Mutex
	rng  randutil.MathRandomGenerator
	used map[uint32]struct{}
}

func newDefaultSSRCGenerator() *defaultSSRCGenerator {
	return &defaultSSRCGenerator{
		rng:  randutil.NewMathRandomGenerator(),
		used: map[uint32]struct{}{},
	}
}

func (g *defaultSSRCGenerator) Generate() (uint32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		ssrc := g.rng.Uint32()
		if _, ok := g.used[ssrc]; ssrc == 0 || ok {
			continue
		}
		g.used[ssrc] = struct{}{}

		return ssrc, nil
	}
}

// getNewMid returns the next counter value not already claimed by a mid,
// including mids chosen by the remote side.
func (s *Session) getNewMid() string {
	for {
		mid := strconv.Itoa(s.st.midCounter)
		s.st.midCounter++
		if _, ok := s.st.usedMids[mid]; !ok {
			s.st.usedMids[mid] = struct{}{}

			return mid
		}
	}
}

func (s *Session) getNewTransportID() string {
	id := transportIDPrefix + strconv.Itoa(s.st.transportIDCounter)
	s.st.transportIDCounter++

	return id
}
