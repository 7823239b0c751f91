// Package scheduler drives download requests through the external
// engine with a small worker pool and runs the periodic persistence
// flush.
package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/vidgrab/vidgrab-bot/internal/downloader"
	"github.com/vidgrab/vidgrab-bot/internal/messages"
	"github.com/vidgrab/vidgrab-bot/internal/services"
	"github.com/vidgrab/vidgrab-bot/types"
)

type job struct {
	downloadID string
	chatID     int64
	quality    string
}

type Scheduler struct {
	manager   *services.Manager
	engine    downloader.Engine
	botClient *bot.Bot

	workers       int
	flushInterval time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	queue   chan job

	log zerolog.Logger
}

type Config struct {
	Workers       int
	FlushInterval time.Duration
}

func NewScheduler(manager *services.Manager, engine downloader.Engine, botClient *bot.Bot, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	queueSize := cfg.Workers * 2
	if queueSize < 10 {
		queueSize = 10
	}

	return &Scheduler{
		manager:       manager,
		engine:        engine,
		botClient:     botClient,
		workers:       cfg.Workers,
		flushInterval: cfg.FlushInterval,
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan job, queueSize),
		log:           log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info().Int("workers", s.workers).Msg("scheduler started")

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go s.flushLoop()

	go s.recoverProcessing()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.log.Info().Msg("stopping scheduler")
	s.cancel()
	s.wg.Wait()
	s.manager.FlushAll()
	s.log.Info().Msg("scheduler stopped")
}

// EnqueueDownload hands a request to the worker pool. The chat id is
// where the outcome is reported; for private chats it equals the
// user's id.
func (s *Scheduler) EnqueueDownload(downloadID string, chatID int64, quality string) {
	j := job{downloadID: downloadID, chatID: chatID, quality: quality}
	go func() {
		select {
		case s.queue <- j:
		case <-s.ctx.Done():
		}
	}()
}

// recoverProcessing re-enqueues requests that were mid-flight when the
// process last stopped.
func (s *Scheduler) recoverProcessing() {
	enqueued := 0
	for _, u := range s.manager.UserStore().All() {
		for _, d := range s.manager.DownloadStore().ByUser(u.ID) {
			if d.Status != types.DownloadProcessing {
				continue
			}
			chatID, err := strconv.ParseInt(d.UserID, 10, 64)
			if err != nil {
				continue
			}
			s.EnqueueDownload(d.ID, chatID, d.Quality)
			enqueued++
		}
	}
	if enqueued > 0 {
		s.log.Info().Int("enqueued", enqueued).Msg("recovered in-flight downloads")
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case j := <-s.queue:
			if err := s.process(j); err != nil {
				s.log.Error().Err(err).Int("worker", id).Str("download_id", j.downloadID).Msg("download failed")
			}
		}
	}
}

func (s *Scheduler) process(j job) error {
	downloads := s.manager.DownloadStore()

	req := downloads.Get(j.downloadID)
	if req == nil {
		s.log.Warn().Str("download_id", j.downloadID).Msg("queued download no longer exists")
		return nil
	}
	if req.Status == types.DownloadPending {
		req = downloads.MarkProcessing(j.downloadID)
		if req == nil {
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Minute)
	defer cancel()

	result, err := s.engine.Fetch(ctx, req.URL, j.quality)
	if err != nil {
		downloads.MarkFailed(j.downloadID, err.Error())
		s.send(j.chatID, messages.DownloadFailed(req.Platform))
		return err
	}

	done := downloads.MarkCompleted(j.downloadID, result.FilePath, result.SizeMB, j.quality, result.Format)
	if done == nil {
		return nil
	}

	s.send(j.chatID, messages.DownloadCompleted(done.Platform, done.FileSizeMB, services.ElapsedText(done)))
	s.serveAd(j.chatID, done.UserID)
	return nil
}

// serveAd shows a random campaign to non-premium users after a
// finished download.
func (s *Scheduler) serveAd(chatID int64, userID string) {
	user := s.manager.Users.Get(userID)
	if user == nil || user.IsAdmin() || user.IsPremium(time.Now()) {
		return
	}

	ad := s.manager.Ads.ServeRandomAd()
	if ad == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      messages.AdBlock(ad.Title, ad.Text),
		ParseMode: messages.ParseModeHTML,
	}
	if ad.Link != "" {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: ad.CTA, CallbackData: "ad_" + ad.CampaignID},
			}},
		}
	}
	if _, err := s.botClient.SendMessage(ctx, params); err != nil {
		s.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to deliver ad")
	}
}

func (s *Scheduler) send(chatID int64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.botClient.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		s.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

// flushLoop re-persists every collection on a timer. Best effort: a
// request-triggered save and this one may interleave with
// last-write-wins semantics.
func (s *Scheduler) flushLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.manager.FlushAll()
		}
	}
}
