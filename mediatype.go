// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

// MediaType is the kind of media a transceiver negotiates.
type MediaType int

const (
	// MediaTypeAudio is an audio media section.
	MediaTypeAudio MediaType = iota + 1

	// MediaTypeVideo is a video media section.
	MediaTypeVideo

	// MediaTypeApplication is a data channel media section.
	MediaTypeApplication
)

// This is done this way because of a linter.
const (
	mediaTypeAudioStr       = "audio"
	mediaTypeVideoStr       = "video"
	mediaTypeApplicationStr = "application"
)

// NewMediaType creates a MediaType from the media field of an m= line.
func NewMediaType(raw string) MediaType {
	switch raw {
	case mediaTypeAudioStr:
		return MediaTypeAudio
	case mediaTypeVideoStr:
		return MediaTypeVideo
	case mediaTypeApplicationStr:
		return MediaTypeApplication
	default:
		return MediaType(Unknown)
	}
}

func (t MediaType) String() string {
	switch t {
	case MediaTypeAudio:
		return mediaTypeAudioStr
	case MediaTypeVideo:
		return mediaTypeVideoStr
	case MediaTypeApplication:
		return mediaTypeApplicationStr
	default:
		return ErrUnknownType.Error()
	}
}

func (t MediaType) protocol() string {
	if t == MediaTypeApplication {
		return mediaSectionProtocolSCTP
	}

	return mediaSectionProtocolRTP
}

// extensionMediaType scopes an RTP header extension registration.
type extensionMediaType int

const (
	extensionMediaTypeAudio extensionMediaType = iota + 1
	extensionMediaTypeVideo
	extensionMediaTypeAudioVideo
)

func (t extensionMediaType) String() string {
	switch t {
	case extensionMediaTypeAudio:
		return mediaTypeAudioStr
	case extensionMediaTypeVideo:
		return mediaTypeVideoStr
	case extensionMediaTypeAudioVideo:
		return "audio+video"
	default:
		return ErrUnknownType.Error()
	}
}

func (t extensionMediaType) matches(m MediaType) bool {
	switch t {
	case extensionMediaTypeAudio:
		return m == MediaTypeAudio
	case extensionMediaTypeVideo:
		return m == MediaTypeVideo
	case extensionMediaTypeAudioVideo:
		return m == MediaTypeAudio || m == MediaTypeVideo
	default:
		return false
	}
}
