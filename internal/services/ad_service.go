package services

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

type AdService struct {
	campaigns types.CampaignStore
	log       zerolog.Logger
}

func NewAdService(campaigns types.CampaignStore, log zerolog.Logger) *AdService {
	return &AdService{
		campaigns: campaigns,
		log:       log.With().Str("service", "ads").Logger(),
	}
}

func (s *AdService) CreateCampaign(campaign *types.AdCampaign) (*types.AdCampaign, error) {
	return s.campaigns.Create(campaign)
}

type AdPayload struct {
	CampaignID string
	Title      string
	Type       types.AdType
	Text       string
	ImageURL   string
	VideoURL   string
	Link       string
	CTA        string
}

// ServeRandomAd picks one running campaign uniformly at random and
// counts the impression. Returns nil when nothing is running.
func (s *AdService) ServeRandomAd() *AdPayload {
	now := time.Now()
	var running []*types.AdCampaign
	for _, c := range s.campaigns.Active() {
		if c.IsRunning(now) {
			running = append(running, c)
		}
	}
	if len(running) == 0 {
		return nil
	}

	c := running[rand.Intn(len(running))]
	s.campaigns.RecordImpression(c.ID)

	return &AdPayload{
		CampaignID: c.ID,
		Title:      c.Title,
		Type:       c.Type,
		Text:       c.Text,
		ImageURL:   c.ImageURL,
		VideoURL:   c.VideoURL,
		Link:       c.Link,
		CTA:        ctaText(c.Type),
	}
}

func ctaText(t types.AdType) string {
	switch t {
	case types.AdBanner:
		return "Tap for more"
	case types.AdInterstitial:
		return "Continue"
	case types.AdRewarded:
		return "Watch to earn a bonus"
	}
	return "Open"
}

// AddSpend charges delivered ads against the campaign budget.
func (s *AdService) AddSpend(campaignID string, amount decimal.Decimal) bool {
	return s.campaigns.AddSpend(campaignID, amount)
}

func (s *AdService) Campaign(campaignID string) *types.AdCampaign {
	return s.campaigns.Get(campaignID)
}

func (s *AdService) RecordClick(campaignID string) bool {
	ok := s.campaigns.RecordClick(campaignID)
	if ok {
		s.log.Info().Str("campaign_id", campaignID).Msg("ad click recorded")
	}
	return ok
}

type CampaignStats struct {
	Campaign        *types.AdCampaign
	CTR             float64
	CPC             decimal.Decimal
	DaysLeft        int
	BudgetRemaining decimal.Decimal
}

// CampaignStats derives click-through rate, cost per click and days
// remaining. Zero impressions or clicks yield zero, never an error.
func (s *AdService) CampaignStats(campaignID string) *CampaignStats {
	c := s.campaigns.Get(campaignID)
	if c == nil {
		return nil
	}

	stats := &CampaignStats{
		Campaign:        c,
		CPC:             decimal.Zero,
		BudgetRemaining: c.Budget.Sub(c.Spent),
	}
	if c.Impressions > 0 {
		stats.CTR = float64(c.Clicks) / float64(c.Impressions) * 100
	}
	if c.Clicks > 0 {
		stats.CPC = c.Spent.Div(decimal.NewFromInt(c.Clicks))
	}
	if c.EndAt != nil {
		days := int(time.Until(*c.EndAt).Hours() / 24)
		if days > 0 {
			stats.DaysLeft = days
		}
	}
	return stats
}
