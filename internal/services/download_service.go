package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidgrab/vidgrab-bot/types"
)

var (
	ErrUnsupportedScheme   = errors.New("url must start with http:// or https://")
	ErrUnsupportedPlatform = errors.New("this platform is not supported")
)

// supportedPlatforms maps a host fragment to the platform's display
// name. Matching is a case-insensitive substring check, so mobile and
// short-link hosts resolve too.
var supportedPlatforms = map[string]string{
	"youtube.com":     "YouTube",
	"youtu.be":        "YouTube",
	"instagram.com":   "Instagram",
	"instagr.am":      "Instagram",
	"tiktok.com":      "TikTok",
	"twitter.com":     "Twitter",
	"x.com":           "Twitter",
	"facebook.com":    "Facebook",
	"fb.watch":        "Facebook",
	"reddit.com":      "Reddit",
	"dailymotion.com": "Dailymotion",
	"vimeo.com":       "Vimeo",
	"twitch.tv":       "Twitch",
}

type DownloadService struct {
	downloads types.DownloadStore
	users     *UserService
	maxFree   int
	log       zerolog.Logger
}

func NewDownloadService(downloads types.DownloadStore, users *UserService, maxFree int, log zerolog.Logger) *DownloadService {
	return &DownloadService{
		downloads: downloads,
		users:     users,
		maxFree:   maxFree,
		log:       log.With().Str("service", "downloads").Logger(),
	}
}

// ClassifyPlatform validates the scheme and resolves the platform name
// from the fixed table.
func (s *DownloadService) ClassifyPlatform(rawURL string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return "", ErrUnsupportedScheme
	}
	for host, platform := range supportedPlatforms {
		if strings.Contains(u, host) {
			return platform, nil
		}
	}
	return "", ErrUnsupportedPlatform
}

type CreateRequestResult struct {
	Request *types.DownloadRequest
	Reason  string
}

// CreateRequest validates the URL, optionally enforces the quota, and
// records a pending request. A nil Request means the submission was
// rejected and Reason carries the user-facing explanation.
func (s *DownloadService) CreateRequest(userID, url string, enforceQuota bool) CreateRequestResult {
	platform, err := s.ClassifyPlatform(url)
	if err != nil {
		return CreateRequestResult{Reason: err.Error()}
	}

	if enforceQuota {
		quota := s.users.CheckDownloadQuota(userID, s.maxFree)
		if !quota.Allowed {
			return CreateRequestResult{Reason: quota.Message}
		}
	}

	req := s.downloads.Create(userID, url, platform)
	s.log.Info().Str("download_id", req.ID).Str("user_id", userID).Str("platform", platform).Msg("download request created")
	return CreateRequestResult{Request: req}
}

// QuotaStatus reports the caller's remaining allowance without
// creating a request.
func (s *DownloadService) QuotaStatus(userID string) QuotaResult {
	return s.users.CheckDownloadQuota(userID, s.maxFree)
}

func (s *DownloadService) Get(downloadID string) *types.DownloadRequest {
	return s.downloads.Get(downloadID)
}

func (s *DownloadService) UserDownloads(userID string) []*types.DownloadRequest {
	return s.downloads.ByUser(userID)
}

func StatusText(status types.DownloadStatus) string {
	switch status {
	case types.DownloadPending:
		return "Waiting in queue"
	case types.DownloadProcessing:
		return "Downloading"
	case types.DownloadCompleted:
		return "Completed"
	case types.DownloadFailed:
		return "Failed"
	}
	return "Unknown"
}

// ElapsedText renders how long a completed request took: under a
// minute in seconds, otherwise in whole minutes.
func ElapsedText(req *types.DownloadRequest) string {
	if req.Status != types.DownloadCompleted || req.CompletedAt == nil {
		return ""
	}
	elapsed := req.CompletedAt.Sub(req.RequestedAt)
	if elapsed < time.Minute {
		return fmt.Sprintf("%d seconds", int(elapsed.Seconds()))
	}
	return fmt.Sprintf("%d minutes", int(elapsed.Minutes()))
}

type DownloadInfo struct {
	Request    *types.DownloadRequest
	StatusText string
	Elapsed    string
}

func (s *DownloadService) Info(downloadID string) *DownloadInfo {
	req := s.downloads.Get(downloadID)
	if req == nil {
		return nil
	}
	return &DownloadInfo{
		Request:    req,
		StatusText: StatusText(req.Status),
		Elapsed:    ElapsedText(req),
	}
}

type Format struct {
	ID    string
	Label string
}

// AvailableFormats lists the quality options offered per platform.
func (s *DownloadService) AvailableFormats(platform string) []Format {
	switch platform {
	case "YouTube":
		return []Format{
			{ID: "360p", Label: "360p"},
			{ID: "480p", Label: "480p"},
			{ID: "720p", Label: "720p (HD)"},
			{ID: "1080p", Label: "1080p (Full HD)"},
			{ID: "mp3", Label: "MP3 (audio only)"},
		}
	case "Instagram":
		return []Format{
			{ID: "sd", Label: "SD"},
			{ID: "hd", Label: "HD"},
		}
	case "TikTok":
		return []Format{
			{ID: "watermark", Label: "With watermark"},
			{ID: "nowatermark", Label: "No watermark"},
		}
	}
	return []Format{{ID: "default", Label: "Best available"}}
}
