// Package webfetch retrieves a page over plain HTTP and extracts its
// readable content, used to attach short notes to web-search hits.
package webfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

type Fetch struct {
	Timeout  time.Duration
	MaxChars int // maximum characters of extracted text to return
	Client   *http.Client
}

func (f Fetch) Extract(ctx context.Context, rawURL string) (Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Result{}, errors.New("invalid url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("parse url: %w", err)
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("User-Agent", "MindMateAI/1.0")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fetch status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return Result{}, fmt.Errorf("extract: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	max := f.MaxChars
	if max <= 0 {
		max = 400
	}
	if len(text) > max {
		text = text[:max]
	}

	return Result{
		URL:     rawURL,
		Title:   strings.TrimSpace(article.Title),
		Excerpt: text,
	}, nil
}
