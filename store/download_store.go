package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidgrab/vidgrab-bot/types"
)

const downloadsCollection = "downloads"

type JSONDownloadStore struct {
	mu        sync.RWMutex
	col       *Collections
	downloads map[string]*types.DownloadRequest
	log       zerolog.Logger
}

func NewDownloadStore(col *Collections, log zerolog.Logger) *JSONDownloadStore {
	s := &JSONDownloadStore{
		col:       col,
		downloads: make(map[string]*types.DownloadRequest),
		log:       log.With().Str("store", downloadsCollection).Logger(),
	}
	for id, raw := range col.Load(downloadsCollection) {
		var d types.DownloadRequest
		if err := json.Unmarshal(raw, &d); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("skipping malformed download record")
			continue
		}
		s.downloads[id] = &d
	}
	s.log.Info().Int("records", len(s.downloads)).Msg("collection loaded")
	return s
}

func (s *JSONDownloadStore) persist() {
	records := make(map[string]json.RawMessage, len(s.downloads))
	for id, d := range s.downloads {
		raw, err := json.Marshal(d)
		if err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("failed to encode download record")
			continue
		}
		records[id] = raw
	}
	if err := s.col.Save(downloadsCollection, records); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist collection, in-memory state stays authoritative")
	}
}

func (s *JSONDownloadStore) newID() string {
	for {
		id := "DL_" + randomID(10)
		if _, exists := s.downloads[id]; !exists {
			return id
		}
	}
}

func (s *JSONDownloadStore) Create(userID, url, platform string) *types.DownloadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &types.DownloadRequest{
		ID:          s.newID(),
		UserID:      userID,
		URL:         url,
		Platform:    platform,
		Status:      types.DownloadPending,
		RequestedAt: time.Now(),
	}
	s.downloads[d.ID] = d
	s.persist()

	out := *d
	return &out
}

func (s *JSONDownloadStore) Get(downloadID string) *types.DownloadRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.downloads[downloadID]
	if !ok {
		return nil
	}
	out := *d
	return &out
}

func (s *JSONDownloadStore) ByUser(userID string) []*types.DownloadRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.DownloadRequest
	for _, d := range s.downloads {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out
}

func (s *JSONDownloadStore) CountByUser(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, d := range s.downloads {
		if d.UserID == userID {
			n++
		}
	}
	return n
}

func (s *JSONDownloadStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.downloads)
}

// Status transitions are forward-only: pending -> processing ->
// completed|failed. A request in the wrong state is left untouched.

func (s *JSONDownloadStore) MarkProcessing(downloadID string) *types.DownloadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.downloads[downloadID]
	if !ok || d.Status != types.DownloadPending {
		return nil
	}
	d.Status = types.DownloadProcessing
	s.persist()

	out := *d
	return &out
}

func (s *JSONDownloadStore) MarkCompleted(downloadID, filePath string, sizeMB float64, quality, format string) *types.DownloadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.downloads[downloadID]
	if !ok || d.Status != types.DownloadProcessing {
		return nil
	}
	now := time.Now()
	d.Status = types.DownloadCompleted
	d.CompletedAt = &now
	d.FilePath = filePath
	d.FileSizeMB = sizeMB
	d.Quality = quality
	d.Format = format
	s.persist()

	out := *d
	return &out
}

func (s *JSONDownloadStore) MarkFailed(downloadID, reason string) *types.DownloadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.downloads[downloadID]
	if !ok || d.Status == types.DownloadCompleted || d.Status == types.DownloadFailed {
		return nil
	}
	now := time.Now()
	d.Status = types.DownloadFailed
	d.CompletedAt = &now
	d.ErrorMessage = reason
	s.persist()

	out := *d
	return &out
}

// DeleteCompletedBefore is the retention sweep: completed requests
// older than the cutoff are dropped. Other statuses are never swept.
func (s *JSONDownloadStore) DeleteCompletedBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, d := range s.downloads {
		if d.Status == types.DownloadCompleted && d.RequestedAt.Before(cutoff) {
			delete(s.downloads, id)
			removed++
		}
	}
	if removed > 0 {
		s.persist()
	}
	return removed
}

func (s *JSONDownloadStore) SaveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
	return nil
}
