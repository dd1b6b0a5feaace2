package ytresolve

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ytget/ytresolve/config"
	"github.com/ytget/ytresolve/errs"
	"github.com/ytget/ytresolve/internal/logger"
	"github.com/ytget/ytresolve/internal/mimeext"
	"github.com/ytget/ytresolve/pkg/client"
	"github.com/ytget/ytresolve/types"
	"github.com/ytget/ytresolve/youtube/cipher"
	"github.com/ytget/ytresolve/youtube/formats"
	"github.com/ytget/ytresolve/youtube/innertube"
	"github.com/ytget/ytresolve/youtube/metadata"
	"github.com/ytget/ytresolve/youtube/playability"
	"github.com/ytget/ytresolve/youtube/session"
)

// ServiceName identifies the upstream in filename attributes.
const ServiceName = "youtube"

// Resolver turns a video id into a media plan. Configure it with the
// chainable With* methods before calling Resolve. A Resolver is not safe for
// concurrent reconfiguration, but Resolve may be called concurrently once
// configured.
type Resolver struct {
	manager    *session.Manager
	httpClient *client.Client
	cipher     *cipher.Resolver

	codec         formats.Codec
	quality       string
	dubLang       string
	audioOnly     bool
	durationLimit int

	// base overrides the InnerTube endpoint. Tests only.
	base string
}

// New creates a Resolver with configuration defaults and no credential
// store; resolution runs unauthenticated until WithStore is called.
func New() *Resolver {
	hc := client.New()
	return &Resolver{
		manager:       session.NewManager(nil),
		httpClient:    hc,
		cipher:        cipher.New(hc.HTTPClient),
		codec:         formats.Codec(config.String(config.DefaultCodec)),
		quality:       config.String(config.DefaultQuality),
		durationLimit: config.Int(config.DurationLimit),
	}
}

// WithStore attaches a credential store holding the OAuth bundle. Resolutions
// authenticate when the stored bundle is usable.
func (r *Resolver) WithStore(store session.CredentialStore) *Resolver {
	r.manager = session.NewManager(store)
	return r
}

// WithHTTPClient replaces the HTTP client used for all network traffic.
func (r *Resolver) WithHTTPClient(c *client.Client) *Resolver {
	if c != nil {
		r.httpClient = c
		r.cipher = cipher.New(c.HTTPClient)
	}
	return r
}

// WithRequestDecorator applies d to every outgoing request, e.g. to inject
// proxy or tracing headers.
func (r *Resolver) WithRequestDecorator(d client.Decorator) *Resolver {
	r.httpClient = r.httpClient.WithDecorator(d)
	r.cipher = cipher.New(r.httpClient.HTTPClient)
	return r
}

// WithCodec sets the preferred codec family ("h264", "av1", "vp9").
func (r *Resolver) WithCodec(codec string) *Resolver {
	r.codec = formats.Codec(codec)
	return r
}

// WithQuality sets the requested video quality ("720", "1080", "max").
func (r *Resolver) WithQuality(quality string) *Resolver {
	r.quality = quality
	return r
}

// WithDubLang requests a dubbed audio track by language code ("es", "de").
func (r *Resolver) WithDubLang(lang string) *Resolver {
	r.dubLang = lang
	return r
}

// WithAudioOnly plans a single audio download instead of a merge pair.
func (r *Resolver) WithAudioOnly(audioOnly bool) *Resolver {
	r.audioOnly = audioOnly
	return r
}

// WithDurationLimit caps playable duration in seconds. Zero disables the cap.
func (r *Resolver) WithDurationLimit(seconds int) *Resolver {
	r.durationLimit = seconds
	return r
}

func (r *Resolver) withBase(base string) *Resolver {
	r.base = base
	return r
}

// Resolve produces a media plan for videoID, or a typed *errs.Error
// describing why the video cannot be planned.
func (r *Resolver) Resolve(ctx context.Context, videoID string) (*types.MediaPlan, error) {
	sess, err := r.manager.Acquire(ctx, r.httpClient.HTTPClient)
	if err != nil {
		return nil, translateSessionError(err)
	}
	if r.base != "" {
		sess.Client.WithBase(r.base)
	}

	persona := innertube.PersonaIOS
	if sess.LoggedIn {
		persona = innertube.PersonaAndroid
	}

	info, err := sess.Client.GetBasicInfo(ctx, videoID, persona)
	if err != nil {
		return nil, translateFetchError(err)
	}
	if info == nil {
		return nil, errs.Wrap(errs.KindFetchFail, errors.New("empty player response"))
	}

	if err := playability.Evaluate(info, videoID, r.durationLimit); err != nil {
		return nil, err
	}

	sel, err := formats.Select(info.Variants, formats.Options{
		Codec:     r.codec,
		Quality:   r.quality,
		DubLang:   r.dubLang,
		AudioOnly: r.audioOnly,
	})
	if err != nil {
		return nil, err
	}

	plan, err := r.buildPlan(ctx, videoID, info, sel)
	if err != nil {
		return nil, err
	}

	logger.For(logger.ComponentResolver).
		WithField("video_id", videoID).
		WithField("type", string(plan.Type)).
		WithField("logged_in", sess.LoggedIn).
		Debug("media plan resolved")
	return plan, nil
}

// buildPlan assembles the final plan from the selected streams, resolving
// protected URLs against player.js where needed.
func (r *Resolver) buildPlan(ctx context.Context, videoID string, info *types.VideoInfo, sel *formats.Selection) (*types.MediaPlan, error) {
	var playerJSURL string

	audioURL, err := r.finalURL(ctx, videoID, &playerJSURL, *sel.Audio)
	if err != nil {
		return nil, err
	}

	md := metadata.Extract(info)
	fa := types.FilenameAttributes{
		Service: ServiceName,
		ID:      info.ID,
		Title:   md.Title,
		Author:  md.Artist,
	}
	if sel.Dubbed {
		fa.YoutubeDubName = sel.Audio.Language
	}

	plan := &types.MediaPlan{
		Metadata:  md,
		BestAudio: mimeext.AudioExtFromMime(sel.Audio.MimeType),
	}

	if sel.Video == nil {
		plan.Type = types.PlanAudio
		plan.URLs = []string{audioURL}
		plan.Filename = fa
		return plan, nil
	}

	videoURL, err := r.finalURL(ctx, videoID, &playerJSURL, *sel.Video)
	if err != nil {
		return nil, err
	}

	fa.QualityLabel = sel.Video.QualityLabel
	fa.Resolution = fmt.Sprintf("%dx%d", sel.Video.Width, sel.Video.Height)
	fa.Extension = mimeext.ExtFromMime(sel.Video.MimeType)
	fa.YoutubeFormat = string(sel.Codec)

	plan.Type = types.PlanMerge
	plan.URLs = []string{videoURL, audioURL}
	plan.Filename = fa
	return plan, nil
}

// finalURL returns the downloadable URL for a variant, engaging the cipher
// only when the variant is protected. The player.js URL is scraped at most
// once per resolution.
func (r *Resolver) finalURL(ctx context.Context, videoID string, playerJSURL *string, v types.StreamVariant) (string, error) {
	if v.SignatureCipher == "" && !hasThrottleParam(v.URL) {
		return v.URL, nil
	}
	if *playerJSURL == "" {
		u, err := r.cipher.PlayerJSURL(ctx, videoID)
		if err != nil {
			return "", errs.Wrap(errs.KindDecipher, err)
		}
		*playerJSURL = u
	}
	u, err := r.cipher.ResolveVariantURL(ctx, *playerJSURL, v)
	if err != nil {
		return "", errs.Wrap(errs.KindDecipher, err)
	}
	return u, nil
}

func hasThrottleParam(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Query().Get("n") != ""
}

// translateSessionError maps session construction failures onto typed kinds.
// Typed errors pass through; a failure naming the signature algorithm is a
// decipher problem; anything else propagates as-is.
func translateSessionError(err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "decipher") || strings.Contains(msg, "signature") {
		return errs.Wrap(errs.KindDecipher, err)
	}
	return err
}

// translateFetchError maps raw player request failures onto typed kinds.
// This is the only place fetch failures are classified by message text.
func translateFetchError(err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "private video"):
		return errs.Wrap(errs.KindVideoPrivate, err)
	case strings.Contains(msg, "unavailable"):
		return errs.Wrap(errs.KindVideoUnavailable, err)
	default:
		return errs.Wrap(errs.KindFetchFail, err)
	}
}
