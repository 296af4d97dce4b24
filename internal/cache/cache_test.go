package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Nithin218/MindMate-AI/config"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "memory", TTL: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatalf("expected hit after Set")
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Fatalf("expected v, got %q", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "memory", TTL: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestUnsupportedBackend(t *testing.T) {
	if _, err := New(config.CacheConfig{Backend: "memcached"}); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}
