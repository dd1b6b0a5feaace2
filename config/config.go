// Package config provides module settings with factory defaults and
// environment variable overrides via the Viper engine.
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "YTRESOLVE"

// Configuration keys.
const (
	// DurationLimit is the maximum playable duration in seconds. Zero disables the check.
	DurationLimit = "limits.duration"
	// SessionRefreshWindow is how long a warmed shared client is reused.
	SessionRefreshWindow = "session.refresh_window"
	// TokenRefreshMargin is how close to expiry an access token is refreshed.
	TokenRefreshMargin = "session.token_margin"
	// CredentialSlot is the credential store slot holding the OAuth bundle.
	CredentialSlot = "session.credential_slot"
	// DefaultQuality is the requested video quality when the caller sets none.
	DefaultQuality = "resolve.quality"
	// DefaultCodec is the requested codec family when the caller sets none.
	DefaultCodec = "resolve.codec"
)

// EnvKeyReplacer normalizes configuration keys into environment variable
// naming conventions (limits.duration -> YTRESOLVE_LIMITS_DURATION).
var EnvKeyReplacer = strings.NewReplacer(".", "_")

var defaults = map[string]any{
	DurationLimit:        10800,
	SessionRefreshWindow: 15 * time.Minute,
	TokenRefreshMargin:   5 * time.Minute,
	CredentialSlot:       "youtube_oauth",
	DefaultQuality:       "1080",
	DefaultCodec:         "h264",
}

var setupOnce sync.Once

// Setup registers factory defaults and environment bindings. It is safe to
// call from multiple goroutines; only the first call does work.
func Setup() {
	setupOnce.Do(func() {
		viper.SetEnvPrefix(envPrefix)
		viper.SetEnvKeyReplacer(EnvKeyReplacer)
		viper.AutomaticEnv()
		viper.SetTypeByDefaultValue(true)
		for name, value := range defaults {
			viper.SetDefault(name, value)
		}
	})
}

// Int returns an integer setting.
func Int(key string) int {
	Setup()
	return viper.GetInt(key)
}

// String returns a string setting.
func String(key string) string {
	Setup()
	return viper.GetString(key)
}

// Duration returns a duration setting.
func Duration(key string) time.Duration {
	Setup()
	return viper.GetDuration(key)
}
