// Package playability turns the upstream playability verdict into a typed
// go/no-go decision before any stream selection happens.
package playability

import (
	"fmt"
	"strings"

	"github.com/ytget/ytresolve/errs"
	"github.com/ytget/ytresolve/types"
)

// Upstream status values.
const (
	statusOK              = "OK"
	statusLoginRequired   = "LOGIN_REQUIRED"
	statusUnplayable      = "UNPLAYABLE"
	statusAgeVerification = "AGE_VERIFICATION_REQUIRED"
)

const privateVideoScreen = "Private video"

// Evaluate checks whether info is playable. requestedID is the video id the
// caller asked for; a mismatch means the upstream silently substituted
// another video. durationLimit is in seconds, zero disables the length check.
// A nil return means resolution may proceed.
func Evaluate(info *types.VideoInfo, requestedID string, durationLimit int) error {
	ps := info.Playability

	switch ps.Status {
	case statusLoginRequired:
		if strings.HasSuffix(ps.Reason, "bot") {
			return errs.New(errs.KindLogin)
		}
		if strings.HasSuffix(ps.Reason, "age") {
			return errs.New(errs.KindVideoAge)
		}
		if screenReason(ps) == privateVideoScreen {
			return errs.New(errs.KindVideoPrivate)
		}
		return errs.Wrap(errs.KindVideoUnavailable, fmt.Errorf("login wall: %s", ps.Reason))

	case statusUnplayable:
		if strings.HasSuffix(ps.Reason, "request limit.") {
			return errs.New(errs.KindFetchRate)
		}
		if strings.HasSuffix(screenSubreason(ps), "in your country") {
			return errs.New(errs.KindVideoRegion)
		}
		if screenReason(ps) == privateVideoScreen {
			return errs.New(errs.KindVideoPrivate)
		}
		return errs.Wrap(errs.KindVideoUnavailable, fmt.Errorf("unplayable: %s", ps.Reason))

	case statusAgeVerification:
		return errs.New(errs.KindVideoAge)

	case statusOK, "":
		// fall through to content checks

	default:
		return errs.Wrap(errs.KindVideoUnavailable, fmt.Errorf("status %s: %s", ps.Status, ps.Reason))
	}

	if info.IsLive {
		return errs.New(errs.KindVideoLive)
	}
	if durationLimit > 0 && info.Duration > durationLimit {
		return errs.New(errs.KindTooLong)
	}
	if requestedID != "" && info.ID != requestedID {
		return errs.WrapCritical(errs.KindFetchFail, fmt.Errorf("requested %s, got %s", requestedID, info.ID))
	}
	return nil
}

func screenReason(ps types.PlayabilityStatus) string {
	if ps.ErrorScreen == nil {
		return ""
	}
	return ps.ErrorScreen.Reason
}

func screenSubreason(ps types.PlayabilityStatus) string {
	if ps.ErrorScreen == nil {
		return ""
	}
	return ps.ErrorScreen.Subreason
}
