package cipher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ytget/ytresolve/types"
)

const testPlayerJS = `
var Xk = {
wA:function(a){a.reverse()},
t9:function(a,b){a.splice(0,b)},
q4:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}
};
function decipher(a){a=a.split("");Xk.wA(a,3);Xk.t9(a,2);Xk.q4(a,1);return a.join("")}
function ncode(n){return n+"_dec"}
`

func TestParsePlan(t *testing.T) {
	plan, ok := parsePlan(testPlayerJS)
	if !ok {
		t.Fatal("Expected plan to be parsed")
	}
	expected := []step{{op: "rev"}, {op: "spl", arg: 2}, {op: "swp", arg: 1}}
	if len(plan) != len(expected) {
		t.Fatalf("Expected %d steps, got %d", len(expected), len(plan))
	}
	for i, s := range expected {
		if plan[i].op != s.op || plan[i].arg != s.arg {
			t.Errorf("Step %d: expected %+v, got %+v", i, s, plan[i])
		}
	}
}

func TestParsePlan_NoMatch(t *testing.T) {
	if _, ok := parsePlan(`function f(x){return x*2}`); ok {
		t.Error("Expected no plan for unrelated source")
	}
}

func TestApplyPlan(t *testing.T) {
	plan := []step{{op: "rev"}, {op: "spl", arg: 2}, {op: "swp", arg: 1}}
	if got := applyPlan(plan, "abcdefg"); got != "decba" {
		t.Errorf("Expected 'decba', got '%s'", got)
	}
}

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testPlayerJS))
	}))
	t.Cleanup(srv.Close)
	return New(srv.Client()), srv.URL + "/player.js"
}

func TestDecipher(t *testing.T) {
	r, jsURL := newTestResolver(t)

	got, err := r.Decipher(context.Background(), jsURL, "abcdefg")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "decba" {
		t.Errorf("Expected 'decba', got '%s'", got)
	}
}

func TestTransformN(t *testing.T) {
	r, jsURL := newTestResolver(t)

	got, err := r.TransformN(context.Background(), jsURL, "abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "abc_dec" {
		t.Errorf("Expected 'abc_dec', got '%s'", got)
	}
}

func TestTransformN_MissingDecoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`function unrelated(a){return a}`))
	}))
	defer srv.Close()

	r := New(srv.Client())
	got, err := r.TransformN(context.Background(), srv.URL+"/player.js", "keepme")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "keepme" {
		t.Errorf("Expected 'keepme' unchanged, got '%s'", got)
	}
}

func TestResolveVariantURL_SignatureCipher(t *testing.T) {
	r, jsURL := newTestResolver(t)

	v := types.StreamVariant{
		SignatureCipher: "s=abcdefg&sp=sig&url=" + "https%3A%2F%2Fmedia.example%2Fvideo%3Fitag%3D137",
	}
	got, err := r.ResolveVariantURL(context.Background(), jsURL, v)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	u := got
	for _, want := range []string{"sig=decba", "ratebypass=yes", "itag=137"} {
		if !strings.Contains(u, want) {
			t.Errorf("Expected URL to contain '%s', got '%s'", want, u)
		}
	}
}

func TestResolveVariantURL_DirectURL(t *testing.T) {
	r, jsURL := newTestResolver(t)

	v := types.StreamVariant{URL: "https://media.example/video?itag=140&n=abc"}
	got, err := r.ResolveVariantURL(context.Background(), jsURL, v)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(got, "n=abc_dec") {
		t.Errorf("Expected n-parameter to be decoded, got '%s'", got)
	}
}

func TestResolveVariantURL_Empty(t *testing.T) {
	r, jsURL := newTestResolver(t)

	if _, err := r.ResolveVariantURL(context.Background(), jsURL, types.StreamVariant{}); err == nil {
		t.Error("Expected error for variant without url or signatureCipher")
	}
}
