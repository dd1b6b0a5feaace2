//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/ytget/ytresolve"
)

func TestE2E_Resolve(t *testing.T) {
	if os.Getenv("YTRESOLVE_E2E") == "" {
		t.Skip("YTRESOLVE_E2E not set")
	}
	videoID := os.Getenv("YTRESOLVE_E2E_VIDEO_ID")
	if videoID == "" {
		videoID = "dQw4w9WgXcQ"
	}
	r := ytresolve.New().WithQuality("720")
	plan, err := r.Resolve(context.Background(), videoID)
	if err != nil {
		t.Fatalf("e2e resolve failed: %v", err)
	}
	if len(plan.URLs) == 0 {
		t.Fatal("e2e resolve returned no URLs")
	}
	t.Logf("plan: type=%s urls=%d file=%s", plan.Type, len(plan.URLs), plan.SuggestedFilename())
}
