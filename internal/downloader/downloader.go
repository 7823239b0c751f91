// Package downloader defines the contract to the external
// video-download engine and ships a simulated implementation used in
// place of a real fetcher.
package downloader

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"time"
)

type Result struct {
	FilePath string
	SizeMB   float64
	Format   string
}

// Engine fetches a media payload for a URL at the requested quality,
// or reports a failure reason. Implementations are opaque to the rest
// of the system.
type Engine interface {
	Fetch(ctx context.Context, url, quality string) (*Result, error)
}

// Simulated mimics a download: it waits a little and fabricates a
// result, honoring context cancellation.
type Simulated struct {
	baseDir  string
	minDelay time.Duration
	maxDelay time.Duration
}

func NewSimulatedEngine(baseDir string) *Simulated {
	if baseDir == "" {
		baseDir = "/downloads"
	}
	return &Simulated{
		baseDir:  baseDir,
		minDelay: 500 * time.Millisecond,
		maxDelay: 3 * time.Second,
	}
}

func (e *Simulated) Fetch(ctx context.Context, url, quality string) (*Result, error) {
	delay := e.minDelay + time.Duration(rand.Int63n(int64(e.maxDelay-e.minDelay)))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}

	if quality == "" {
		quality = "default"
	}
	name := fmt.Sprintf("%d_%s.mp4", time.Now().UnixNano(), quality)
	return &Result{
		FilePath: path.Join(e.baseDir, name),
		SizeMB:   10 + rand.Float64()*490,
		Format:   "mp4",
	}, nil
}
