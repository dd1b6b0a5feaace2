// Package mimeext maps media MIME types to file extensions.
package mimeext

import (
	"strings"
)

const (
	// DefaultExt is the extension used when MIME is unknown or empty.
	DefaultExt = "mp4"

	// ExtM4A is the file extension for MP4 audio.
	ExtM4A = "m4a"
	// ExtWebM is the file extension for WebM media.
	ExtWebM = "webm"
	// ExtOpus is the container used for audio-only WebM (Opus) streams.
	ExtOpus = "opus"

	// MimeVideoMP4 is the MIME type for MP4 video.
	MimeVideoMP4 = "video/mp4"
	// MimeAudioMP4 is the MIME type for MP4 audio.
	MimeAudioMP4 = "audio/mp4"
	// MimeVideoWebM is the MIME type for WebM video.
	MimeVideoWebM = "video/webm"
	// MimeAudioWebM is the MIME type for WebM audio.
	MimeAudioWebM = "audio/webm"
)

func mimeBase(mime string) string {
	mime = strings.TrimSpace(mime)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

// ExtFromMime returns the file extension (without dot) for a given MIME type.
// Falls back to the subtype or mp4 if unknown.
func ExtFromMime(mime string) string {
	base := mimeBase(mime)
	if base == "" {
		return DefaultExt
	}
	switch base {
	case MimeVideoMP4:
		return DefaultExt
	case MimeAudioMP4:
		return ExtM4A
	case MimeVideoWebM, MimeAudioWebM:
		return ExtWebM
	}
	parts := strings.Split(base, "/")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return DefaultExt
}

// AudioExtFromMime returns the container extension for an audio-only stream.
// WebM audio is carried as bare Opus.
func AudioExtFromMime(mime string) string {
	switch mimeBase(mime) {
	case MimeAudioWebM:
		return ExtOpus
	case MimeAudioMP4:
		return ExtM4A
	}
	return ExtFromMime(mime)
}
