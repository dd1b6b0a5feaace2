// Package formats selects the best video and audio streams for a requested
// codec family, quality, and dub language.
package formats

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/ytget/ytresolve/errs"
	"github.com/ytget/ytresolve/internal/logger"
	"github.com/ytget/ytresolve/types"
)

// Codec is a codec family preference.
type Codec string

const (
	// CodecH264 selects avc1 video with mp4a audio in an mp4 container.
	CodecH264 Codec = "h264"
	// CodecAV1 selects av01 video with opus audio in a webm container.
	CodecAV1 Codec = "av1"
	// CodecVP9 selects vp9 video with opus audio in a webm container.
	CodecVP9 Codec = "vp9"
)

// maxQuality is the sentinel for "best available".
const maxQuality = 9000

type family struct {
	videoTag  string
	audioTag  string
	container string
}

var families = map[Codec]family{
	CodecH264: {videoTag: "avc1", audioTag: "mp4a", container: "mp4"},
	CodecAV1:  {videoTag: "av01", audioTag: "opus", container: "webm"},
	CodecVP9:  {videoTag: "vp9", audioTag: "opus", container: "webm"},
}

// Container returns the container name of a codec family.
func (c Codec) Container() string {
	if f, ok := families[c]; ok {
		return f.container
	}
	return families[CodecH264].container
}

// Options steer stream selection.
type Options struct {
	// Codec is the preferred codec family. Unknown values fall back to h264.
	Codec Codec
	// Quality is the requested vertical resolution ("720", "1080p", "max").
	Quality string
	// DubLang requests a dubbed audio track in the given language code.
	DubLang string
	// AudioOnly skips video selection entirely.
	AudioOnly bool
}

// Selection is the outcome of stream selection. Video is nil for audio-only
// requests.
type Selection struct {
	Video  *types.StreamVariant
	Audio  *types.StreamVariant
	Codec  Codec
	Dubbed bool
}

// Select picks streams from variants per opts. It returns a typed fetch.empty
// error when no variant in the codec family is usable, and fetch.fail when
// the family has streams but no coherent pair can be formed.
func Select(variants []types.StreamVariant, opts Options) (*Selection, error) {
	codec := opts.Codec
	if _, ok := families[codec]; !ok {
		codec = CodecH264
	}

	pool := familyPool(variants, codec)
	if codec != CodecH264 && len(pool) == 0 {
		logger.For(logger.ComponentFormat).
			WithField("codec", codec).
			Debug("requested family has no streams; falling back to h264")
		codec = CodecH264
		pool = familyPool(variants, codec)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Bitrate > pool[j].Bitrate
	})

	anyVideo := lo.ContainsBy(pool, func(v types.StreamVariant) bool {
		return v.HasVideo && v.ContentLength > 0
	})
	videos := lo.Filter(pool, func(v types.StreamVariant, _ int) bool {
		return v.HasVideo && !v.HasAudio && v.ContentLength > 0
	})
	audios := lo.Filter(pool, func(v types.StreamVariant, _ int) bool {
		return v.HasAudio && !v.HasVideo && v.ContentLength > 0
	})
	if (opts.AudioOnly && len(audios) == 0) || (!opts.AudioOnly && !anyVideo) {
		return nil, errs.New(errs.KindFetchEmpty)
	}

	sel := &Selection{Codec: codec}
	audio, dubbed := pickAudio(audios, opts.DubLang)
	if audio == nil {
		return nil, errs.Wrap(errs.KindFetchFail, errors.New("no usable audio stream"))
	}
	sel.Audio = audio
	sel.Dubbed = dubbed
	if opts.AudioOnly {
		return sel, nil
	}

	target := clampQuality(parseQuality(opts.Quality), videos)
	video := pickVideo(videos, target)
	if video == nil {
		return nil, errs.Wrap(errs.KindFetchFail, fmt.Errorf("no adaptive video at %dp", target))
	}
	sel.Video = video
	return sel, nil
}

// familyPool keeps the variants whose mime type names the family's video or
// audio codec.
func familyPool(variants []types.StreamVariant, codec Codec) []types.StreamVariant {
	f := families[codec]
	return lo.Filter(variants, func(v types.StreamVariant, _ int) bool {
		return strings.Contains(v.MimeType, f.videoTag) || strings.Contains(v.MimeType, f.audioTag)
	})
}

// pickAudio prefers the original audio track, lets a matching dub override
// it, and otherwise takes the highest-bitrate audio stream.
func pickAudio(audios []types.StreamVariant, dubLang string) (*types.StreamVariant, bool) {
	if dubLang != "" {
		if dub, ok := lo.Find(audios, func(v types.StreamVariant) bool {
			return v.Language == dubLang && v.AudioTrack != nil && !v.AudioTrack.AudioIsDefault
		}); ok {
			return &dub, true
		}
	}
	if orig, ok := lo.Find(audios, func(v types.StreamVariant) bool {
		return v.IsOriginal
	}); ok {
		return &orig, false
	}
	if len(audios) > 0 {
		return &audios[0], false
	}
	return nil, false
}

// pickVideo returns the first adaptive video at exactly the target quality,
// in descending bitrate order. No near-miss substitution: a gap in the
// ladder is a failure, not a silent downgrade.
func pickVideo(videos []types.StreamVariant, target int) *types.StreamVariant {
	for i := range videos {
		if variantQuality(videos[i]) == target {
			return &videos[i]
		}
	}
	return nil
}

// parseQuality reads the leading digits of a requested quality string.
// "max", empty, and unparsable values mean best available.
func parseQuality(s string) int {
	n := leadingDigits(s)
	if n <= 0 {
		return maxQuality
	}
	return n
}

// clampQuality lowers the requested quality to the best one on offer.
func clampQuality(target int, videos []types.StreamVariant) int {
	best := 0
	for _, v := range videos {
		if q := variantQuality(v); q > best {
			best = q
		}
	}
	if best > 0 && target > best {
		return best
	}
	return target
}

// variantQuality derives a numeric quality from the label ("1080p60" -> 1080)
// or falls back to the reported frame height.
func variantQuality(v types.StreamVariant) int {
	if n := leadingDigits(v.QualityLabel); n > 0 {
		return n
	}
	return v.Height
}

func leadingDigits(s string) int {
	n := 0
	seen := false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		seen = true
		n = n*10 + int(r-'0')
	}
	if !seen {
		return 0
	}
	return n
}
