package innertube

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePlayerResponse = `{
	"playabilityStatus": {"status": "OK"},
	"videoDetails": {
		"videoId": "abc12345678",
		"title": "Test Video",
		"author": "Test Channel - Topic",
		"lengthSeconds": "213",
		"shortDescription": "Provided to YouTube by Test"
	},
	"streamingData": {
		"formats": [
			{"itag": 18, "url": "https://media.example/prog", "mimeType": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"", "bitrate": 500000, "contentLength": "1000", "qualityLabel": "360p", "width": 640, "height": 360}
		],
		"adaptiveFormats": [
			{"itag": 137, "url": "https://media.example/v1080", "mimeType": "video/mp4; codecs=\"avc1.640028\"", "bitrate": 4000000, "contentLength": "5000", "qualityLabel": "1080p", "width": 1920, "height": 1080},
			{"itag": 140, "url": "https://media.example/a-orig", "mimeType": "audio/mp4; codecs=\"mp4a.40.2\"", "bitrate": 128000, "contentLength": "800",
				"audioTrack": {"id": "en.4", "displayName": "English original", "audioIsDefault": true}},
			{"itag": 140, "url": "https://media.example/a-es", "mimeType": "audio/mp4; codecs=\"mp4a.40.2\"", "bitrate": 160000, "contentLength": "900",
				"audioTrack": {"id": "es.3", "displayName": "Spanish", "audioIsDefault": false}}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.Client()).WithBase(srv.URL)
}

func TestGetBasicInfo(t *testing.T) {
	var gotHeader http.Header
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// API key scrape request; force the default-key fallback.
			return
		}
		gotHeader = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(samplePlayerResponse))
	})

	info, err := c.GetBasicInfo(context.Background(), "abc12345678", PersonaIOS)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if info.ID != "abc12345678" {
		t.Errorf("Expected ID 'abc12345678', got '%s'", info.ID)
	}
	if info.Title != "Test Video" {
		t.Errorf("Expected title 'Test Video', got '%s'", info.Title)
	}
	if info.Duration != 213 {
		t.Errorf("Expected duration 213, got %d", info.Duration)
	}
	if len(info.Variants) != 4 {
		t.Fatalf("Expected 4 variants, got %d", len(info.Variants))
	}

	if gotHeader.Get("X-YouTube-Client-Name") != "5" {
		t.Errorf("Expected IOS client code '5', got '%s'", gotHeader.Get("X-YouTube-Client-Name"))
	}
	ctxMap, _ := gotBody["context"].(map[string]any)
	clientMap, _ := ctxMap["client"].(map[string]any)
	if clientMap["clientName"] != "IOS" {
		t.Errorf("Expected clientName 'IOS', got '%v'", clientMap["clientName"])
	}
}

func TestGetBasicInfo_VariantParsing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			return
		}
		_, _ = w.Write([]byte(samplePlayerResponse))
	})

	info, err := c.GetBasicInfo(context.Background(), "abc12345678", PersonaAndroid)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	prog := info.Variants[0]
	if !prog.HasVideo || !prog.HasAudio {
		t.Errorf("Expected progressive variant to have video and audio, got video=%v audio=%v", prog.HasVideo, prog.HasAudio)
	}

	adaptive := info.Variants[1]
	if !adaptive.HasVideo || adaptive.HasAudio {
		t.Errorf("Expected adaptive video-only, got video=%v audio=%v", adaptive.HasVideo, adaptive.HasAudio)
	}
	if adaptive.ContentLength != 5000 {
		t.Errorf("Expected content length 5000, got %d", adaptive.ContentLength)
	}

	orig := info.Variants[2]
	if orig.HasVideo || !orig.HasAudio {
		t.Errorf("Expected audio-only, got video=%v audio=%v", orig.HasVideo, orig.HasAudio)
	}
	if !orig.IsOriginal {
		t.Error("Expected original track to be marked original")
	}
	if orig.Language != "en" {
		t.Errorf("Expected language 'en' from track id, got '%s'", orig.Language)
	}

	dub := info.Variants[3]
	if dub.IsOriginal {
		t.Error("Expected dub track not to be marked original")
	}
	if dub.Language != "es" {
		t.Errorf("Expected language 'es', got '%s'", dub.Language)
	}
	if dub.AudioTrack == nil || dub.AudioTrack.AudioIsDefault {
		t.Error("Expected dub track metadata with audioIsDefault=false")
	}
}

func TestGetBasicInfo_AuthHeader(t *testing.T) {
	var auth string
	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			return
		}
		auth = r.Header.Get("Authorization")
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(samplePlayerResponse))
	})
	c.WithAccessToken("tok123")

	if _, err := c.GetBasicInfo(context.Background(), "abc12345678", PersonaAndroid); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if auth != "Bearer tok123" {
		t.Errorf("Expected bearer token header, got '%s'", auth)
	}
	if strings.Contains(rawQuery, "key=") {
		t.Errorf("Expected no api key with OAuth, got query '%s'", rawQuery)
	}
}

func TestGetBasicInfo_GzipBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(samplePlayerResponse))
		_ = gz.Close()
	})

	info, err := c.GetBasicInfo(context.Background(), "abc12345678", PersonaWeb)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if info.Title != "Test Video" {
		t.Errorf("Expected title from gzip body, got '%s'", info.Title)
	}
}

func TestGetBasicInfo_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "The video is unavailable"}}`))
	})

	_, err := c.GetBasicInfo(context.Background(), "abc12345678", PersonaWeb)
	if err == nil {
		t.Fatal("Expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "unavailable") {
		t.Errorf("Expected upstream message in error, got '%v'", err)
	}
}

func TestClone(t *testing.T) {
	c := New(nil)
	c.keys.key = "warmed"
	c.WithAccessToken("secret")

	clone := c.Clone(nil)
	if clone.keys != c.keys {
		t.Error("Expected clone to share the key cache")
	}
	if clone.accessToken != "" {
		t.Error("Expected OAuth state not to carry over to clones")
	}
	if clone.HTTPClient != c.HTTPClient {
		t.Error("Expected clone to fall back to the shared transport")
	}
}

func TestCloneWarmsSharedKey(t *testing.T) {
	var scrapes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			scrapes++
			_, _ = w.Write([]byte(`"INNERTUBE_API_KEY":"scraped-key-123"`))
			return
		}
		if got := r.URL.Query().Get("key"); got != "scraped-key-123" {
			t.Errorf("Expected scraped key on request, got '%s'", got)
		}
		_, _ = w.Write([]byte(samplePlayerResponse))
	}))
	t.Cleanup(srv.Close)
	base := New(srv.Client()).WithBase(srv.URL)

	for i := 0; i < 2; i++ {
		clone := base.Clone(nil)
		if _, err := clone.GetBasicInfo(context.Background(), "abc12345678", PersonaIOS); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	if scrapes != 1 {
		t.Errorf("Expected one key scrape across clones, got %d", scrapes)
	}
}

func TestErrorScreenParsing(t *testing.T) {
	body := `{
		"playabilityStatus": {
			"status": "UNPLAYABLE",
			"reason": "Video unavailable",
			"errorScreen": {"playerErrorMessageRenderer": {
				"reason": {"simpleText": "Private video"},
				"subreason": {"runs": [{"text": "The uploader has not made this video available "}, {"text": "in your country"}]}
			}}
		},
		"videoDetails": {"videoId": "abc12345678", "title": "x", "lengthSeconds": "1"}
	}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			return
		}
		_, _ = w.Write([]byte(body))
	})

	info, err := c.GetBasicInfo(context.Background(), "abc12345678", PersonaWeb)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if info.Playability.ErrorScreen == nil {
		t.Fatal("Expected error screen to be parsed")
	}
	if info.Playability.ErrorScreen.Reason != "Private video" {
		t.Errorf("Expected reason 'Private video', got '%s'", info.Playability.ErrorScreen.Reason)
	}
	if !strings.HasSuffix(info.Playability.ErrorScreen.Subreason, "in your country") {
		t.Errorf("Expected subreason joined from runs, got '%s'", info.Playability.ErrorScreen.Subreason)
	}
}
