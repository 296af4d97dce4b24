package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Coping with anxiety</title></head>
<body>
<article>
<h1>Coping with anxiety</h1>
<p>Anxiety is a normal response to stress, and there are practical techniques that help.
Slow breathing, grounding exercises, and keeping a worry journal are good starting points.
Regular movement and a consistent sleep schedule reduce baseline arousal over time.</p>
<p>If anxiety interferes with daily life, consider reaching out to a qualified professional.</p>
</article>
</body>
</html>`

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := Fetch{MaxChars: 120}
	res, err := f.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Title != "Coping with anxiety" {
		t.Fatalf("unexpected title: %q", res.Title)
	}
	if res.Excerpt == "" {
		t.Fatalf("expected an excerpt")
	}
	if len(res.Excerpt) > 120 {
		t.Fatalf("excerpt exceeds max chars: %d", len(res.Excerpt))
	}
	if !strings.Contains(res.Excerpt, "Anxiety") {
		t.Fatalf("excerpt missing article text: %q", res.Excerpt)
	}
}

func TestExtractBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	f := Fetch{}
	if _, err := f.Extract(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestExtractEmptyURL(t *testing.T) {
	f := Fetch{}
	if _, err := f.Extract(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
