// Package cipher resolves protected stream URLs by running the relevant
// player.js transforms: signature deciphering and n-parameter decoding.
package cipher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/robertkrimen/otto"

	"github.com/ytget/ytresolve/internal/logger"
	"github.com/ytget/ytresolve/types"
)

const (
	ytBase         = "https://www.youtube.com"
	userAgentValue = "Mozilla/5.0"

	decipherFuncName = "decipher"
	ncodeFuncName    = "ncode"

	playerJSTTL = 10 * time.Minute
)

var playerJSURLRegex = regexp.MustCompile(`"jsUrl":"([^"]+)"`)

type cacheEntry struct {
	body  []byte
	expAt time.Time
}

// Resolver deciphers stream signatures against a cached player.js build.
type Resolver struct {
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New creates a Resolver bound to the given HTTP client.
func New(httpClient *http.Client) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Resolver{
		httpClient: httpClient,
		cache:      make(map[string]cacheEntry),
	}
}

// PlayerJSURL finds the player.js URL by requesting the video's watch page
// and scraping the "jsUrl" field.
func (r *Resolver) PlayerJSURL(ctx context.Context, videoID string) (string, error) {
	watchURL := ytBase + "/watch?v=" + url.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return "", newError(ErrCodePlayerJSNotFound, "build request", err)
	}
	req.Header.Set("User-Agent", userAgentValue)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", newError(ErrCodePlayerJSNotFound, "fetch watch page", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(ErrCodePlayerJSNotFound, "read watch page", err)
	}

	m := playerJSURLRegex.FindSubmatch(body)
	if len(m) < 2 || len(m[1]) == 0 {
		return "", newError(ErrCodePlayerJSNotFound, "scrape jsUrl", nil)
	}
	return ytBase + strings.ReplaceAll(string(m[1]), `\/`, `/`), nil
}

func (r *Resolver) playerJS(ctx context.Context, playerJSURL string) ([]byte, error) {
	r.mu.Lock()
	entry, ok := r.cache[playerJSURL]
	r.mu.Unlock()
	if ok && time.Now().Before(entry.expAt) {
		return entry.body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playerJSURL, nil)
	if err != nil {
		return nil, newError(ErrCodePlayerJSDownload, "build request", err)
	}
	req.Header.Set("User-Agent", userAgentValue)
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, newError(ErrCodePlayerJSDownload, "download", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(ErrCodePlayerJSDownload, "read body", err)
	}

	r.mu.Lock()
	r.cache[playerJSURL] = cacheEntry{body: body, expAt: time.Now().Add(playerJSTTL)}
	r.mu.Unlock()
	return body, nil
}

// Decipher decrypts a stream signature. It tries a regex transform plan
// first and falls back to executing player.js.
func (r *Resolver) Decipher(ctx context.Context, playerJSURL, signature string) (string, error) {
	src, err := r.playerJS(ctx, playerJSURL)
	if err != nil {
		return "", err
	}
	if plan, ok := parsePlan(string(src)); ok {
		return applyPlan(plan, signature), nil
	}
	logger.For(logger.ComponentCipher).Debug("regex plan not found, executing player.js")
	return callJS(string(src), decipherFuncName, signature)
}

// TransformN decodes the throttling n-parameter. If player.js carries no
// decoder the value is returned unchanged.
func (r *Resolver) TransformN(ctx context.Context, playerJSURL, nval string) (string, error) {
	src, err := r.playerJS(ctx, playerJSURL)
	if err != nil {
		return "", err
	}
	out, err := callJS(string(src), ncodeFuncName, nval)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Op == "missing function" {
			return nval, nil
		}
		return "", err
	}
	return out, nil
}

// ResolveVariantURL builds the final downloadable URL for a variant. Direct
// URLs get n-parameter decoding; signatureCipher variants are deciphered.
func (r *Resolver) ResolveVariantURL(ctx context.Context, playerJSURL string, v types.StreamVariant) (string, error) {
	if strings.TrimSpace(v.URL) != "" {
		u, err := url.Parse(v.URL)
		if err != nil {
			return "", newError(ErrCodeDecipherFailed, "parse direct url", err)
		}
		return r.finishURL(ctx, playerJSURL, u)
	}

	if strings.TrimSpace(v.SignatureCipher) == "" {
		return "", newError(ErrCodeDecipherFailed, "variant has no url or signatureCipher", nil)
	}
	parsed, err := url.ParseQuery(v.SignatureCipher)
	if err != nil {
		return "", newError(ErrCodeDecipherFailed, "parse signatureCipher", err)
	}
	sig := parsed.Get("s")
	sp := parsed.Get("sp")
	if sp == "" {
		sp = "signature"
	}
	cipherURL := parsed.Get("url")
	if cipherURL == "" || sig == "" {
		return "", newError(ErrCodeDecipherFailed, "signatureCipher missing signature or url", nil)
	}

	decoded, err := r.Decipher(ctx, playerJSURL, sig)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(cipherURL)
	if err != nil {
		return "", newError(ErrCodeDecipherFailed, "parse cipher url", err)
	}
	q := u.Query()
	q.Set(sp, decoded)
	u.RawQuery = q.Encode()
	return r.finishURL(ctx, playerJSURL, u)
}

// finishURL applies n-parameter decoding and rate-bypass hints.
func (r *Resolver) finishURL(ctx context.Context, playerJSURL string, u *url.URL) (string, error) {
	q := u.Query()
	if nval := q.Get("n"); nval != "" {
		nout, err := r.TransformN(ctx, playerJSURL, nval)
		if err != nil {
			return "", err
		}
		if nout != "" {
			q.Set("n", nout)
		}
	}
	if q.Get("ratebypass") == "" {
		q.Set("ratebypass", "yes")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// callJS executes player.js and invokes a named global function with one
// string argument. goja is the primary engine; otto is kept as a fallback
// for sources goja rejects.
func callJS(src, fn, arg string) (string, error) {
	out, gojaErr := callGoja(src, fn, arg)
	if gojaErr == nil {
		return out, nil
	}
	var e *Error
	if errors.As(gojaErr, &e) && e.Op == "missing function" {
		return "", gojaErr
	}
	out, ottoErr := callOtto(src, fn, arg)
	if ottoErr == nil {
		logger.For(logger.ComponentCipher).WithField("fn", fn).Debug("goja failed, otto succeeded")
		return out, nil
	}
	return "", gojaErr
}

func callGoja(src, fn, arg string) (string, error) {
	vm := goja.New()
	if _, err := vm.RunString(src); err != nil {
		return "", newError(ErrCodeJSExecutionFailed, "run player.js", err)
	}
	callable, ok := goja.AssertFunction(vm.Get(fn))
	if !ok {
		return "", newError(ErrCodeJSExecutionFailed, "missing function", nil)
	}
	res, err := callable(goja.Undefined(), vm.ToValue(arg))
	if err != nil {
		return "", newError(ErrCodeJSExecutionFailed, "call "+fn, err)
	}
	return res.String(), nil
}

func callOtto(src, fn, arg string) (string, error) {
	vm := otto.New()
	if _, err := vm.Run(src); err != nil {
		return "", newError(ErrCodeJSExecutionFailed, "run player.js", err)
	}
	val, err := vm.Call(fn, nil, arg)
	if err != nil {
		return "", newError(ErrCodeJSExecutionFailed, "call "+fn, err)
	}
	out, err := val.ToString()
	if err != nil {
		return "", newError(ErrCodeJSExecutionFailed, fn+" did not return a string", err)
	}
	return out, nil
}
