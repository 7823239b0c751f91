package services

import (
	"errors"
	"testing"
	"time"

	"github.com/vidgrab/vidgrab-bot/types"
)

func TestClassifyPlatform(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		url      string
		platform string
		err      error
	}{
		{"https://www.youtube.com/watch?v=abc", "YouTube", nil},
		{"https://youtu.be/abc", "YouTube", nil},
		{"HTTPS://YOUTU.BE/ABC", "YouTube", nil},
		{"http://instagram.com/p/xyz", "Instagram", nil},
		{"https://instagr.am/p/xyz", "Instagram", nil},
		{"https://www.tiktok.com/@user/video/1", "TikTok", nil},
		{"https://x.com/user/status/1", "Twitter", nil},
		{"https://twitter.com/user/status/1", "Twitter", nil},
		{"https://fb.watch/abc", "Facebook", nil},
		{"https://www.reddit.com/r/videos/1", "Reddit", nil},
		{"https://vimeo.com/12345", "Vimeo", nil},
		{"https://www.twitch.tv/clip/1", "Twitch", nil},
		{"https://dailymotion.com/video/1", "Dailymotion", nil},
		{"ftp://youtube.com/watch", "", ErrUnsupportedScheme},
		{"youtube.com/watch?v=abc", "", ErrUnsupportedScheme},
		{"https://example.com/video", "", ErrUnsupportedPlatform},
	}

	for _, tt := range tests {
		platform, err := m.Downloads.ClassifyPlatform(tt.url)
		if !errors.Is(err, tt.err) {
			t.Errorf("ClassifyPlatform(%q) err = %v, want %v", tt.url, err, tt.err)
			continue
		}
		if platform != tt.platform {
			t.Errorf("ClassifyPlatform(%q) = %q, want %q", tt.url, platform, tt.platform)
		}
	}
}

func TestCreateRequestEnforcesQuota(t *testing.T) {
	m := newTestManager(t)
	registerUser(t, m, "700")

	for i := 0; i < 3; i++ {
		res := m.Downloads.CreateRequest("700", "https://youtu.be/abc", true)
		if res.Request == nil {
			t.Fatalf("request %d rejected: %s", i+1, res.Reason)
		}
		if res.Request.Status != types.DownloadPending {
			t.Fatalf("new request status = %q", res.Request.Status)
		}
	}

	res := m.Downloads.CreateRequest("700", "https://youtu.be/abc", true)
	if res.Request != nil {
		t.Fatal("request accepted over the quota")
	}
	if res.Reason != QuotaDeniedMessage {
		t.Fatalf("Reason = %q", res.Reason)
	}
}

func TestCreateRequestInvalidURL(t *testing.T) {
	m := newTestManager(t)
	registerUser(t, m, "701")

	res := m.Downloads.CreateRequest("701", "https://example.com/clip", true)
	if res.Request != nil {
		t.Fatal("unsupported platform accepted")
	}
	if res.Reason == "" {
		t.Fatal("rejection carries no reason")
	}
}

func TestQuotaStatus(t *testing.T) {
	m := newTestManager(t)
	registerUser(t, m, "702")

	q := m.Downloads.QuotaStatus("702")
	if !q.Allowed || q.Remaining != 3 {
		t.Fatalf("QuotaStatus = %+v", q)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status types.DownloadStatus
		want   string
	}{
		{types.DownloadPending, "Waiting in queue"},
		{types.DownloadProcessing, "Downloading"},
		{types.DownloadCompleted, "Completed"},
		{types.DownloadFailed, "Failed"},
		{types.DownloadStatus("bogus"), "Unknown"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.status); got != tt.want {
			t.Errorf("StatusText(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestElapsedText(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	done := start.Add(42 * time.Second)
	req := &types.DownloadRequest{
		Status:      types.DownloadCompleted,
		RequestedAt: start,
		CompletedAt: &done,
	}
	if got := ElapsedText(req); got != "42 seconds" {
		t.Fatalf("ElapsedText = %q", got)
	}

	done = start.Add(3*time.Minute + 10*time.Second)
	req.CompletedAt = &done
	if got := ElapsedText(req); got != "3 minutes" {
		t.Fatalf("ElapsedText = %q", got)
	}

	pending := &types.DownloadRequest{Status: types.DownloadPending, RequestedAt: start}
	if got := ElapsedText(pending); got != "" {
		t.Fatalf("ElapsedText for pending = %q", got)
	}
}

func TestAvailableFormats(t *testing.T) {
	m := newTestManager(t)

	if got := len(m.Downloads.AvailableFormats("YouTube")); got != 5 {
		t.Fatalf("YouTube formats = %d, want 5", got)
	}
	if got := len(m.Downloads.AvailableFormats("TikTok")); got != 2 {
		t.Fatalf("TikTok formats = %d, want 2", got)
	}

	fallback := m.Downloads.AvailableFormats("Reddit")
	if len(fallback) != 1 || fallback[0].ID != "default" {
		t.Fatalf("fallback formats = %+v", fallback)
	}
}
