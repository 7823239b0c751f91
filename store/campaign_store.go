package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

const adsCollection = "ads"

type JSONCampaignStore struct {
	mu        sync.RWMutex
	col       *Collections
	campaigns map[string]*types.AdCampaign
	log       zerolog.Logger
}

func NewCampaignStore(col *Collections, log zerolog.Logger) *JSONCampaignStore {
	s := &JSONCampaignStore{
		col:       col,
		campaigns: make(map[string]*types.AdCampaign),
		log:       log.With().Str("store", adsCollection).Logger(),
	}
	for id, raw := range col.Load(adsCollection) {
		var c types.AdCampaign
		if err := json.Unmarshal(raw, &c); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("skipping malformed campaign record")
			continue
		}
		s.campaigns[id] = &c
	}
	s.log.Info().Int("records", len(s.campaigns)).Msg("collection loaded")
	return s
}

func (s *JSONCampaignStore) persist() {
	records := make(map[string]json.RawMessage, len(s.campaigns))
	for id, c := range s.campaigns {
		raw, err := json.Marshal(c)
		if err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("failed to encode campaign record")
			continue
		}
		records[id] = raw
	}
	if err := s.col.Save(adsCollection, records); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist collection, in-memory state stays authoritative")
	}
}

func (s *JSONCampaignStore) Create(campaign *types.AdCampaign) (*types.AdCampaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if campaign.ID == "" {
		for {
			id := "AD_" + randomID(10)
			if _, exists := s.campaigns[id]; !exists {
				campaign.ID = id
				break
			}
		}
	} else if _, exists := s.campaigns[campaign.ID]; exists {
		return nil, ErrDuplicateID
	}
	if campaign.StartAt.IsZero() {
		campaign.StartAt = time.Now()
	}

	c := *campaign
	s.campaigns[c.ID] = &c
	s.persist()

	out := c
	return &out, nil
}

func (s *JSONCampaignStore) Get(campaignID string) *types.AdCampaign {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil
	}
	out := *c
	return &out
}

func (s *JSONCampaignStore) All() []*types.AdCampaign {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.AdCampaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		cp := *c
		out = append(out, &cp)
	}
	return out
}

func (s *JSONCampaignStore) Active() []*types.AdCampaign {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.AdCampaign
	for _, c := range s.campaigns {
		if c.Active {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out
}

func (s *JSONCampaignStore) RecordImpression(campaignID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return false
	}
	c.Impressions++
	s.persist()
	return true
}

func (s *JSONCampaignStore) RecordClick(campaignID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return false
	}
	c.Clicks++
	s.persist()
	return true
}

func (s *JSONCampaignStore) AddSpend(campaignID string, amount decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return false
	}
	c.Spent = c.Spent.Add(amount)
	s.persist()
	return true
}

func (s *JSONCampaignStore) Deactivate(campaignID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[campaignID]
	if !ok {
		return false
	}
	c.Active = false
	s.persist()
	return true
}

func (s *JSONCampaignStore) SaveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
	return nil
}
