// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

// Transceiver is one logical media line: a send track, a receive track
// and the transport they share. It is bound to a media section by its
// level and, once associated, by its mid.
type Transceiver struct {
	id          string
	mediaType   MediaType
	jsDirection RTPTransceiverDirection

	sendTrack *Track
	recvTrack *Track
	transport Transport

	mid            string
	level          int
	hasLevel       bool
	bundleLevel    int
	hasBundleLevel bool

	stopping   bool
	stopped    bool
	removed    bool
	negotiated bool
	canRecycle bool

	// onlyExistsBecauseOfSetRemote is set on transceivers made up to
	// receive an unmatched remote section.
	onlyExistsBecauseOfSetRemote bool
	addTrackMagic                bool
}

func newTransceiver(id string, mediaType MediaType, direction RTPTransceiverDirection) *Transceiver {
	return &Transceiver{
		id:          id,
		mediaType:   mediaType,
		jsDirection: direction,
		sendTrack:   newTrack(mediaType, trackDirectionSend),
		recvTrack:   newTrack(mediaType, trackDirectionRecv),
	}
}

// ID returns the UUID of the transceiver.
func (t *Transceiver) ID() string { return t.id }

// Kind returns the media type of the transceiver.
func (t *Transceiver) Kind() MediaType { return t.mediaType }

// Mid returns the mid once the transceiver is associated.
func (t *Transceiver) Mid() (string, bool) { return t.mid, t.mid != "" }

// Level returns the index of the media section assigned to the transceiver.
func (t *Transceiver) Level() (int, bool) { return t.level, t.hasLevel }

// BundleLevel returns the level of the transceiver whose transport this
// one shares.
func (t *Transceiver) BundleLevel() (int, bool) { return t.bundleLevel, t.hasBundleLevel }

// JsDirection returns the direction the application asked for.
func (t *Transceiver) JsDirection() RTPTransceiverDirection { return t.jsDirection }

// SetDirection changes the requested direction. The change is sent with
// the next offer or answer.
func (t *Transceiver) SetDirection(d RTPTransceiverDirection) { t.jsDirection = d }

// Stop marks the transceiver as stopping. It is rejected by the next
// negotiation and stopped once that completes.
func (t *Transceiver) Stop() { t.stopping = true }

// IsStopping reports whether Stop was called.
func (t *Transceiver) IsStopping() bool { return t.stopping }

// IsStopped reports whether the transceiver takes no further part in
// negotiation.
func (t *Transceiver) IsStopped() bool { return t.stopped }

// IsRemoved reports whether the transceiver was removed after being
// rejected in a local description.
func (t *Transceiver) IsRemoved() bool { return t.removed }

// IsAssociated reports whether the transceiver has a mid.
func (t *Transceiver) IsAssociated() bool { return t.mid != "" }

// IsNegotiated reports whether an answer has ever covered the transceiver.
func (t *Transceiver) IsNegotiated() bool { return t.negotiated }

// HasAddTrackMagic reports whether the application attached a track to
// the transceiver, making it preferred when matching remote sections.
func (t *Transceiver) HasAddTrackMagic() bool { return t.addTrackMagic }

// SetAddTrackMagic sets the add-track flag.
func (t *Transceiver) SetAddTrackMagic() { t.addTrackMagic = true }

// OnlyExistsBecauseOfSetRemote reports whether the transceiver was
// created to receive an unmatched remote section.
func (t *Transceiver) OnlyExistsBecauseOfSetRemote() bool { return t.onlyExistsBecauseOfSetRemote }

// SendTrack returns the send side negotiator.
func (t *Transceiver) SendTrack() *Track { return t.sendTrack }

// RecvTrack returns the receive side negotiator.
func (t *Transceiver) RecvTrack() *Track { return t.recvTrack }

// Transport returns a copy of the transport of the transceiver.
func (t *Transceiver) Transport() Transport { return t.transport.clone() }

// HasOwnTransport reports whether the transceiver owns its transport
// rather than sharing one through bundle.
func (t *Transceiver) HasOwnTransport() bool {
	if t.transport.Components == 0 {
		return false
	}

	return !t.hasBundleLevel || (t.hasLevel && t.level == t.bundleLevel)
}

func (t *Transceiver) associate(mid string) {
	t.mid = mid
}

func (t *Transceiver) disassociate() {
	t.mid = ""
}

func (t *Transceiver) setLevel(level int) {
	t.level = level
	t.hasLevel = true
}

func (t *Transceiver) clearLevel() {
	t.level = 0
	t.hasLevel = false
	t.clearBundleLevel()
}

func (t *Transceiver) setBundleLevel(level int) {
	t.bundleLevel = level
	t.hasBundleLevel = true
}

func (t *Transceiver) clearBundleLevel() {
	t.bundleLevel = 0
	t.hasBundleLevel = false
}

func (t *Transceiver) setStopped() {
	t.stopping = true
	t.stopped = true
}

// setRemoved also stops the transceiver.
func (t *Transceiver) setRemoved() {
	t.setStopped()
	t.removed = true
}

func (t *Transceiver) setNegotiated() {
	t.negotiated = true
}

// setCanRecycle lets a later offer hand the level to another transceiver.
func (t *Transceiver) setCanRecycle() {
	t.canRecycle = true
}

func (t *Transceiver) canRecycleMsection() bool {
	return t.canRecycle
}

func (t *Transceiver) clearRids() {
	t.sendTrack.clearRids()
	t.recvTrack.clearRids()
}

// restartDatachannel brings a recycled application transceiver back.
func (t *Transceiver) restartDatachannel() {
	t.stopping = false
	t.stopped = false
	t.removed = false
	t.canRecycle = false
}

// isFreeToUse is true for transceivers that can be given a level.
func (t *Transceiver) isFreeToUse() bool {
	return !t.stopping && !t.stopped && !t.hasLevel
}

func (t *Transceiver) clone() *Transceiver {
	c := *t
	c.sendTrack = t.sendTrack.Clone()
	c.recvTrack = t.recvTrack.Clone()
	c.transport = t.transport.clone()

	return &c
}

// rollback restores what an offer may have changed from old. Levels are
// only restored for a remote offer, a local one got them from CreateOffer.
// Rolling back a remote offer also restores the send track, which the
// remote offer may have given rids and SSRCs.
func (t *Transceiver) rollback(old *Transceiver, remote bool) {
	t.transport = old.transport.clone()
	t.bundleLevel = old.bundleLevel
	t.hasBundleLevel = old.hasBundleLevel
	t.recvTrack = old.recvTrack.Clone()
	if remote {
		t.level = old.level
		t.hasLevel = old.hasLevel
		t.sendTrack = old.sendTrack.Clone()
	}

	if !old.IsAssociated() {
		t.disassociate()
	}
}
