package types

import (
	"fmt"

	"github.com/ytget/ytresolve/internal/sanitize"
)

// AudioTrack describes the audio-track metadata attached to a variant that
// belongs to a multi-language (dubbed) video.
type AudioTrack struct {
	ID             string
	DisplayName    string
	AudioIsDefault bool
}

// StreamVariant is one encoded representation of a video, either progressive
// (audio and video combined) or adaptive (audio-only or video-only).
type StreamVariant struct {
	Itag            int
	URL             string
	SignatureCipher string
	MimeType        string
	Bitrate         int
	// ContentLength is the media size in bytes. Zero means the upstream did
	// not report a size and the variant cannot be planned.
	ContentLength int64
	QualityLabel  string
	Width         int
	Height        int
	HasVideo      bool
	HasAudio      bool
	Language      string
	IsOriginal    bool
	AudioTrack    *AudioTrack
}

// ErrorScreen carries the reason texts from an upstream playability error screen.
type ErrorScreen struct {
	Reason    string
	Subreason string
}

// PlayabilityStatus is the upstream playability verdict for a video.
type PlayabilityStatus struct {
	Status      string
	Reason      string
	ErrorScreen *ErrorScreen
}

// VideoInfo contains basic video metadata, playability state, and the full
// list of available stream variants.
type VideoInfo struct {
	ID               string
	Title            string
	Author           string
	Duration         int
	IsLive           bool
	ShortDescription string
	Playability      PlayabilityStatus
	Variants         []StreamVariant
}

// PlanType identifies the shape of a media plan.
type PlanType string

const (
	// PlanAudio is a single audio-only download.
	PlanAudio PlanType = "audio"
	// PlanMerge is a video plus audio pair that must be muxed client-side.
	PlanMerge PlanType = "merge"
)

// FilenameAttributes holds the pieces a downstream stage combines into an
// output filename.
type FilenameAttributes struct {
	Service        string `json:"service"`
	ID             string `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	YoutubeDubName string `json:"youtubeDubName,omitempty"`
	QualityLabel   string `json:"qualityLabel,omitempty"`
	Resolution     string `json:"resolution,omitempty"`
	Extension      string `json:"extension,omitempty"`
	YoutubeFormat  string `json:"youtubeFormat,omitempty"`
}

// FileMetadata holds display metadata to be embedded into the output file.
type FileMetadata struct {
	Title     string `json:"title,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	Copyright string `json:"copyright,omitempty"`
	Date      string `json:"date,omitempty"`
}

// MediaPlan is the resolved download plan for a single video. For PlanMerge,
// URLs holds [video, audio]; for PlanAudio, a single audio URL. A plan is
// immutable once produced.
type MediaPlan struct {
	Type      PlanType           `json:"type"`
	URLs      []string           `json:"urls"`
	Filename  FilenameAttributes `json:"filenameAttributes"`
	Metadata  FileMetadata       `json:"fileMetadata"`
	BestAudio string             `json:"bestAudio,omitempty"`
}

// SuggestedFilename derives a safe output filename from the plan's filename
// attributes.
func (p *MediaPlan) SuggestedFilename() string {
	name := p.Filename.Title
	if p.Filename.Author != "" {
		name = fmt.Sprintf("%s - %s", p.Filename.Author, p.Filename.Title)
	}
	ext := p.Filename.Extension
	if ext == "" {
		ext = p.BestAudio
	}
	return sanitize.ToSafeFilename(name, ext)
}
