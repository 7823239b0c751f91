package downloader

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastEngine() *Simulated {
	e := NewSimulatedEngine("/tmp/dl")
	e.minDelay = time.Millisecond
	e.maxDelay = 5 * time.Millisecond
	return e
}

func TestSimulatedFetch(t *testing.T) {
	e := fastEngine()

	res, err := e.Fetch(context.Background(), "https://youtu.be/abc", "720p")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasPrefix(res.FilePath, "/tmp/dl/") {
		t.Fatalf("FilePath = %q", res.FilePath)
	}
	if !strings.Contains(res.FilePath, "720p") {
		t.Fatalf("FilePath %q does not carry the quality", res.FilePath)
	}
	if res.SizeMB < 10 || res.SizeMB > 500 {
		t.Fatalf("SizeMB = %v, want within [10, 500]", res.SizeMB)
	}
	if res.Format != "mp4" {
		t.Fatalf("Format = %q", res.Format)
	}
}

func TestSimulatedFetchDefaultQuality(t *testing.T) {
	e := fastEngine()

	res, err := e.Fetch(context.Background(), "https://vimeo.com/1", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(res.FilePath, "default") {
		t.Fatalf("FilePath = %q, want the default quality tag", res.FilePath)
	}
}

func TestSimulatedFetchCancellation(t *testing.T) {
	e := NewSimulatedEngine("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Fetch(ctx, "https://youtu.be/abc", "720p")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch on a canceled context err = %v", err)
	}
}
