// Package session maintains a shared warmed InnerTube client and the OAuth
// credential bundle used to authenticate it.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ytget/ytresolve/config"
	"github.com/ytget/ytresolve/errs"
	"github.com/ytget/ytresolve/internal/logger"
	"github.com/ytget/ytresolve/youtube/innertube"
)

// Session is a per-resolution view of the shared client. LoggedIn reports
// whether an OAuth access token is attached.
type Session struct {
	Client   *innertube.Client
	LoggedIn bool
}

// Manager owns the shared InnerTube client and rebuilds it periodically so
// scraped API keys do not go stale. One Manager is safe for concurrent use.
type Manager struct {
	store         CredentialStore
	slot          string
	refreshWindow time.Duration
	tokenMargin   time.Duration
	tokenURL      string
	now           func() time.Time

	mu          sync.Mutex
	shared      *innertube.Client
	lastRefresh time.Time
	rebuilds    int
}

// NewManager creates a Manager reading the credential bundle from store.
// Pass nil to always resolve unauthenticated.
func NewManager(store CredentialStore) *Manager {
	return &Manager{
		store:         store,
		slot:          config.String(config.CredentialSlot),
		refreshWindow: config.Duration(config.SessionRefreshWindow),
		tokenMargin:   config.Duration(config.TokenRefreshMargin),
		tokenURL:      defaultTokenURL,
		now:           time.Now,
	}
}

// WithClock overrides the time source. Used in tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// WithTokenURL overrides the OAuth token endpoint. Used in tests.
func (m *Manager) WithTokenURL(url string) *Manager {
	if url != "" {
		m.tokenURL = url
	}
	return m
}

// WithSlot overrides the credential store slot.
func (m *Manager) WithSlot(slot string) *Manager {
	if slot != "" {
		m.slot = slot
	}
	return m
}

// Acquire returns a Session backed by a clone of the shared client, rebuilt
// when the refresh window has elapsed. Credential problems short of a failed
// token refresh degrade to an unauthenticated session rather than an error.
func (m *Manager) Acquire(ctx context.Context, httpClient *http.Client) (*Session, error) {
	base := m.sharedClient()
	sess := &Session{Client: base.Clone(httpClient)}

	if m.store == nil {
		return sess, nil
	}

	log := logger.For(logger.ComponentSession)

	raw, ok, err := m.store.Get(m.slot)
	if err != nil {
		log.WithError(err).Warn("credential store read failed; resolving unauthenticated")
		return sess, nil
	}
	if !ok {
		return sess, nil
	}
	b, ok := ParseBundle(raw)
	if !ok {
		log.Warn("credential bundle incomplete; resolving unauthenticated")
		return sess, nil
	}

	now := m.now()
	if !now.Before(b.Expiry.Add(-m.tokenMargin)) {
		hc := httpClient
		if hc == nil {
			hc = http.DefaultClient
		}
		nb, err := refreshAccessToken(ctx, hc, m.tokenURL, b, now)
		if err != nil {
			return nil, errs.Wrap(errs.KindTokenExpired, err)
		}
		if !nb.Expiry.Equal(b.Expiry) {
			if err := m.store.Update(m.slot, nb.raw()); err != nil {
				log.WithError(err).Warn("credential write-back failed")
			}
		}
		b = nb
	}

	sess.Client.WithAccessToken(b.AccessToken)
	sess.LoggedIn = true
	return sess, nil
}

// sharedClient returns the warmed shared client, rebuilding it once per
// refresh window.
func (m *Manager) sharedClient() *innertube.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if m.shared == nil || now.Sub(m.lastRefresh) >= m.refreshWindow {
		m.shared = innertube.New(nil)
		m.lastRefresh = now
		m.rebuilds++
		logger.For(logger.ComponentSession).WithField("rebuilds", m.rebuilds).Debug("rebuilt shared client")
	}
	return m.shared
}
