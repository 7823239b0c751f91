package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

const usersCollection = "users"

type JSONUserStore struct {
	mu    sync.RWMutex
	col   *Collections
	users map[string]*types.User
	log   zerolog.Logger
}

func NewUserStore(col *Collections, log zerolog.Logger) *JSONUserStore {
	s := &JSONUserStore{
		col:   col,
		users: make(map[string]*types.User),
		log:   log.With().Str("store", usersCollection).Logger(),
	}
	for id, raw := range col.Load(usersCollection) {
		var u types.User
		if err := json.Unmarshal(raw, &u); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("skipping malformed user record")
			continue
		}
		s.users[id] = &u
	}
	s.log.Info().Int("records", len(s.users)).Msg("collection loaded")
	return s
}

func (s *JSONUserStore) persist() {
	records := make(map[string]json.RawMessage, len(s.users))
	for id, u := range s.users {
		raw, err := json.Marshal(u)
		if err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("failed to encode user record")
			continue
		}
		records[id] = raw
	}
	if err := s.col.Save(usersCollection, records); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist collection, in-memory state stays authoritative")
	}
}

func (s *JSONUserStore) Create(user *types.User) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = randomID(10)
	}
	if _, exists := s.users[user.ID]; exists {
		return nil, ErrDuplicateID
	}

	u := *user
	s.users[u.ID] = &u
	s.persist()

	out := u
	return &out, nil
}

func (s *JSONUserStore) Get(userID string) *types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	out := *u
	return &out
}

func (s *JSONUserStore) All() []*types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out
}

func (s *JSONUserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *JSONUserStore) PremiumUsers(now time.Time) []*types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.User
	for _, u := range s.users {
		if u.IsPremium(now) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out
}

func (s *JSONUserStore) TouchLastSeen(userID string, at time.Time) *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.LastSeen = at
	s.persist()

	out := *u
	return &out
}

func (s *JSONUserStore) SetStatus(userID string, status types.UserStatus) *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.Status = status
	s.persist()

	out := *u
	return &out
}

func (s *JSONUserStore) SetPremium(userID string, until time.Time) *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.Status = types.UserStatusPremium
	u.PremiumUntil = &until
	s.persist()

	out := *u
	return &out
}

func (s *JSONUserStore) AddBalance(userID string, delta decimal.Decimal) *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.Balance = u.Balance.Add(delta)
	s.persist()

	out := *u
	return &out
}

func (s *JSONUserStore) SaveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
	return nil
}
