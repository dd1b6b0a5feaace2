package session

import (
	"strconv"
	"time"
)

// Field names used in raw credential maps.
const (
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldClientID     = "client_id"
	fieldClientSecret = "client_secret"
	fieldExpiry       = "expiry_date"
	// fieldExpires is a legacy alias, normalized to expiry_date.
	fieldExpires = "expires"
)

// Bundle holds one OAuth credential set.
type Bundle struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// ParseBundle validates a raw credential map. ok is false when the bundle is
// unusable; resolution then proceeds unauthenticated.
func ParseBundle(raw map[string]string) (Bundle, bool) {
	if raw == nil {
		return Bundle{}, false
	}
	b := Bundle{
		ClientID:     raw[fieldClientID],
		ClientSecret: raw[fieldClientSecret],
		AccessToken:  raw[fieldAccessToken],
		RefreshToken: raw[fieldRefreshToken],
	}
	if b.AccessToken == "" || b.RefreshToken == "" {
		return Bundle{}, false
	}
	exp := raw[fieldExpiry]
	if exp == "" {
		exp = raw[fieldExpires]
	}
	if exp == "" {
		return Bundle{}, false
	}
	t, ok := parseExpiry(exp)
	if !ok {
		return Bundle{}, false
	}
	b.Expiry = t
	return b, true
}

// parseExpiry accepts RFC 3339 timestamps and epoch milliseconds.
func parseExpiry(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}

// raw returns the map persisted back to the credential store.
func (b Bundle) raw() map[string]string {
	m := map[string]string{
		fieldAccessToken:  b.AccessToken,
		fieldRefreshToken: b.RefreshToken,
		fieldExpiry:       b.Expiry.UTC().Format(time.RFC3339),
	}
	if b.ClientID != "" {
		m[fieldClientID] = b.ClientID
	}
	if b.ClientSecret != "" {
		m[fieldClientSecret] = b.ClientSecret
	}
	return m
}
