package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

func createCampaign(t *testing.T, m *Manager, c *types.AdCampaign) *types.AdCampaign {
	t.Helper()
	created, err := m.Ads.CreateCampaign(c)
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	return created
}

func TestServeRandomAd(t *testing.T) {
	m := newTestManager(t)

	if m.Ads.ServeRandomAd() != nil {
		t.Fatal("ad served with no campaigns")
	}

	c := createCampaign(t, m, &types.AdCampaign{
		Title:  "Spring promo",
		Type:   types.AdBanner,
		Text:   "Half price this week",
		Link:   "https://example.com/promo",
		Budget: decimal.NewFromInt(100),
		Active: true,
	})

	ad := m.Ads.ServeRandomAd()
	if ad == nil {
		t.Fatal("no ad served from a running campaign")
	}
	if ad.CampaignID != c.ID {
		t.Fatalf("served campaign %q, want %q", ad.CampaignID, c.ID)
	}
	if ad.CTA != "Tap for more" {
		t.Fatalf("banner CTA = %q", ad.CTA)
	}

	if got := m.Ads.Campaign(c.ID).Impressions; got != 1 {
		t.Fatalf("impressions = %d, want 1", got)
	}
}

func TestServeRandomAdSkipsStoppedCampaigns(t *testing.T) {
	m := newTestManager(t)

	createCampaign(t, m, &types.AdCampaign{
		Title:  "Disabled",
		Type:   types.AdBanner,
		Budget: decimal.NewFromInt(10),
		Active: false,
	})

	ended := time.Now().Add(-time.Hour)
	createCampaign(t, m, &types.AdCampaign{
		Title:  "Ended",
		Type:   types.AdInterstitial,
		Budget: decimal.NewFromInt(10),
		Active: true,
		EndAt:  &ended,
	})

	if ad := m.Ads.ServeRandomAd(); ad != nil {
		t.Fatalf("served %q from a stopped campaign", ad.Title)
	}
}

func TestRecordClick(t *testing.T) {
	m := newTestManager(t)
	c := createCampaign(t, m, &types.AdCampaign{
		Title:  "Clicks",
		Type:   types.AdRewarded,
		Budget: decimal.NewFromInt(10),
		Active: true,
	})

	if !m.Ads.RecordClick(c.ID) {
		t.Fatal("click on a known campaign refused")
	}
	if m.Ads.RecordClick("AD_missing123") {
		t.Fatal("click on an unknown campaign recorded")
	}
	if got := m.Ads.Campaign(c.ID).Clicks; got != 1 {
		t.Fatalf("clicks = %d, want 1", got)
	}
}

func TestCampaignStatsZeroGuards(t *testing.T) {
	m := newTestManager(t)
	c := createCampaign(t, m, &types.AdCampaign{
		Title:  "Fresh",
		Type:   types.AdBanner,
		Budget: decimal.NewFromInt(50),
		Active: true,
	})

	stats := m.Ads.CampaignStats(c.ID)
	if stats == nil {
		t.Fatal("stats nil for a known campaign")
	}
	if stats.CTR != 0 {
		t.Fatalf("CTR with no impressions = %v", stats.CTR)
	}
	if !stats.CPC.Equal(decimal.Zero) {
		t.Fatalf("CPC with no clicks = %s", stats.CPC)
	}
	if !stats.BudgetRemaining.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("BudgetRemaining = %s", stats.BudgetRemaining)
	}

	if m.Ads.CampaignStats("AD_missing123") != nil {
		t.Fatal("stats for an unknown campaign")
	}
}

func TestCampaignStats(t *testing.T) {
	m := newTestManager(t)
	c := createCampaign(t, m, &types.AdCampaign{
		Title:  "Running",
		Type:   types.AdBanner,
		Budget: decimal.NewFromInt(50),
		Active: true,
	})

	for i := 0; i < 4; i++ {
		m.Ads.ServeRandomAd()
	}
	m.Ads.RecordClick(c.ID)
	m.Ads.AddSpend(c.ID, decimal.NewFromInt(10))

	stats := m.Ads.CampaignStats(c.ID)
	if stats.CTR != 25 {
		t.Fatalf("CTR = %v, want 25", stats.CTR)
	}
	if !stats.CPC.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("CPC = %s, want 10", stats.CPC)
	}
	if !stats.BudgetRemaining.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("BudgetRemaining = %s, want 40", stats.BudgetRemaining)
	}
}
