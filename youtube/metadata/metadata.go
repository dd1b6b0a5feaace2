// Package metadata derives file tags from video info, including the
// structured block auto-generated descriptions carry for label uploads.
package metadata

import (
	"strings"

	"github.com/ytget/ytresolve/internal/sanitize"
	"github.com/ytget/ytresolve/types"
)

// autoGenMarker opens the structured block of auto-generated descriptions on
// label-uploaded music ("Provided to YouTube by ...").
const autoGenMarker = "Provided to YouTube by"

// topicSuffix decorates auto-generated artist channels.
const topicSuffix = " - Topic"

// releasedOnPrefix labels the release date segment of the structured block.
const releasedOnPrefix = "Released on:"

// Extract builds file metadata from video info. Title and artist are always
// set; album, copyright, and date come from the structured description block
// when one is present.
func Extract(info *types.VideoInfo) types.FileMetadata {
	md := types.FileMetadata{
		Title:  sanitize.Clean(info.Title),
		Artist: sanitize.Clean(strings.TrimSuffix(info.Author, topicSuffix)),
	}

	if !strings.HasPrefix(info.ShortDescription, autoGenMarker) {
		return md
	}
	segments := strings.Split(info.ShortDescription, "\n\n")
	if len(segments) > 5 {
		segments = segments[:5]
	}
	// The structured block is exactly five segments: provider, title-artist,
	// album, copyright, release date. Anything else is free-form text.
	if len(segments) != 5 {
		return md
	}
	md.Album = segments[2]
	md.Copyright = segments[3]
	if strings.HasPrefix(segments[4], releasedOnPrefix) {
		md.Date = strings.TrimSpace(strings.TrimPrefix(segments[4], releasedOnPrefix))
	}
	return md
}
