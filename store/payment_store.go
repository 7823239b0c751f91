package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

const paymentsCollection = "payments"

type JSONPaymentStore struct {
	mu       sync.RWMutex
	col      *Collections
	payments map[string]*types.Payment
	log      zerolog.Logger
}

func NewPaymentStore(col *Collections, log zerolog.Logger) *JSONPaymentStore {
	s := &JSONPaymentStore{
		col:      col,
		payments: make(map[string]*types.Payment),
		log:      log.With().Str("store", paymentsCollection).Logger(),
	}
	for id, raw := range col.Load(paymentsCollection) {
		var p types.Payment
		if err := json.Unmarshal(raw, &p); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("skipping malformed payment record")
			continue
		}
		s.payments[id] = &p
	}
	s.log.Info().Int("records", len(s.payments)).Msg("collection loaded")
	return s
}

func (s *JSONPaymentStore) persist() {
	records := make(map[string]json.RawMessage, len(s.payments))
	for id, p := range s.payments {
		raw, err := json.Marshal(p)
		if err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("failed to encode payment record")
			continue
		}
		records[id] = raw
	}
	if err := s.col.Save(paymentsCollection, records); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist collection, in-memory state stays authoritative")
	}
}

func (s *JSONPaymentStore) newID() string {
	for {
		id := "PAY_" + randomID(10)
		if _, exists := s.payments[id]; !exists {
			return id
		}
	}
}

func (s *JSONPaymentStore) Create(userID, planID string, amount decimal.Decimal, walletAddress string) *types.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &types.Payment{
		ID:            s.newID(),
		UserID:        userID,
		PlanID:        planID,
		Amount:        amount,
		Status:        types.PaymentPending,
		WalletAddress: walletAddress,
		CreatedAt:     time.Now(),
	}
	s.payments[p.ID] = p
	s.persist()

	out := *p
	return &out
}

func (s *JSONPaymentStore) Get(paymentID string) *types.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return nil
	}
	out := *p
	return &out
}

func (s *JSONPaymentStore) ByUser(userID string) []*types.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

func (s *JSONPaymentStore) All() []*types.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// Confirm attaches the transaction id and moves the payment to
// confirmed. Only a pending payment can be confirmed, and a txid, once
// attached, is immutable.
func (s *JSONPaymentStore) Confirm(paymentID, txid string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return ErrNotFound
	}
	if p.Status != types.PaymentPending {
		return fmt.Errorf("%w: payment %s is %s", ErrConflict, paymentID, p.Status)
	}
	p.Status = types.PaymentConfirmed
	p.TxID = txid
	p.ConfirmedAt = &at
	s.persist()
	return nil
}

func (s *JSONPaymentStore) Complete(paymentID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return ErrNotFound
	}
	if p.Status != types.PaymentConfirmed {
		return fmt.Errorf("%w: payment %s is %s", ErrConflict, paymentID, p.Status)
	}
	p.Status = types.PaymentCompleted
	p.ExpiresAt = &expiresAt
	s.persist()
	return nil
}

func (s *JSONPaymentStore) MarkFailed(paymentID string) error {
	return s.finalize(paymentID, types.PaymentFailed)
}

func (s *JSONPaymentStore) MarkRefunded(paymentID string) error {
	return s.finalize(paymentID, types.PaymentRefunded)
}

func (s *JSONPaymentStore) finalize(paymentID string, status types.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return ErrNotFound
	}
	if p.Status != types.PaymentPending && p.Status != types.PaymentConfirmed {
		return fmt.Errorf("%w: payment %s is %s", ErrConflict, paymentID, p.Status)
	}
	p.Status = status
	s.persist()
	return nil
}

func (s *JSONPaymentStore) SaveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
	return nil
}
