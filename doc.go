// Package ytresolve resolves YouTube video ids into downloadable media
// plans: direct stream URLs, file metadata, and filename attributes, with
// typed errors for everything that can go wrong along the way.
//
// Basic usage:
//
//	r := ytresolve.New().WithQuality("1080").WithCodec("h264")
//	plan, err := r.Resolve(ctx, "dQw4w9WgXcQ")
//	if err != nil {
//		if kind, ok := errs.KindOf(err); ok {
//			// react to kind: youtube.login, content.video.age, ...
//		}
//		return err
//	}
//	// plan.URLs holds one audio URL or a [video, audio] pair to merge
//
// Attach a session.CredentialStore via WithStore to resolve with an OAuth
// session; authenticated resolutions unlock higher-quality streams and use
// a different client persona.
package ytresolve
