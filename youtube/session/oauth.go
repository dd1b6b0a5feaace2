package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTokenURL = "https://www.youtube.com/o/oauth2/token"

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	ErrorCode    string `json:"error"`
}

// refreshAccessToken exchanges the refresh token for a fresh access token.
// The returned bundle keeps the previous refresh token unless the endpoint
// rotated it.
func refreshAccessToken(ctx context.Context, httpClient *http.Client, tokenURL string, b Bundle, now time.Time) (Bundle, error) {
	if b.RefreshToken == "" {
		return b, errors.New("bundle has no refresh token")
	}
	payload, err := json.Marshal(map[string]string{
		"client_id":     b.ClientID,
		"client_secret": b.ClientSecret,
		"refresh_token": b.RefreshToken,
		"grant_type":    "refresh_token",
	})
	if err != nil {
		return b, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(payload))
	if err != nil {
		return b, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return b, fmt.Errorf("refresh token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return b, err
	}
	if resp.StatusCode != http.StatusOK {
		return b, fmt.Errorf("refresh token request failed: status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return b, fmt.Errorf("refresh token response: %w", err)
	}
	if tr.ErrorCode != "" {
		return b, fmt.Errorf("refresh token rejected: %s", tr.ErrorCode)
	}
	if tr.AccessToken == "" {
		return b, errors.New("refresh token response missing access_token")
	}

	nb := b
	nb.AccessToken = tr.AccessToken
	if tr.RefreshToken != "" {
		nb.RefreshToken = tr.RefreshToken
	}
	nb.Expiry = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	return nb, nil
}
