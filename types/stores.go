package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store contracts. Each store exclusively owns the in-memory mapping
// for its collection; mutations rewrite the backing document before
// returning. Reads return copies, and a missing id yields nil rather
// than an error.

type UserStore interface {
	Create(user *User) (*User, error)
	Get(userID string) *User
	All() []*User
	Count() int
	PremiumUsers(now time.Time) []*User
	TouchLastSeen(userID string, at time.Time) *User
	SetStatus(userID string, status UserStatus) *User
	SetPremium(userID string, until time.Time) *User
	AddBalance(userID string, delta decimal.Decimal) *User
	SaveAll() error
}

type DownloadStore interface {
	Create(userID, url, platform string) *DownloadRequest
	Get(downloadID string) *DownloadRequest
	ByUser(userID string) []*DownloadRequest
	CountByUser(userID string) int
	Count() int
	MarkProcessing(downloadID string) *DownloadRequest
	MarkCompleted(downloadID, filePath string, sizeMB float64, quality, format string) *DownloadRequest
	MarkFailed(downloadID, reason string) *DownloadRequest
	DeleteCompletedBefore(cutoff time.Time) int
	SaveAll() error
}

type PaymentStore interface {
	Create(userID, planID string, amount decimal.Decimal, walletAddress string) *Payment
	Get(paymentID string) *Payment
	ByUser(userID string) []*Payment
	All() []*Payment
	Confirm(paymentID, txid string, at time.Time) error
	Complete(paymentID string, expiresAt time.Time) error
	MarkFailed(paymentID string) error
	MarkRefunded(paymentID string) error
	SaveAll() error
}

type CampaignStore interface {
	Create(campaign *AdCampaign) (*AdCampaign, error)
	Get(campaignID string) *AdCampaign
	All() []*AdCampaign
	Active() []*AdCampaign
	RecordImpression(campaignID string) bool
	RecordClick(campaignID string) bool
	AddSpend(campaignID string, amount decimal.Decimal) bool
	Deactivate(campaignID string) bool
	SaveAll() error
}

// ConversationStore keeps the pending step of a user's multi-step
// flow. Entries expire on their own; Clear is the /cancel path.
type ConversationStore interface {
	Get(userID string) (*Conversation, error)
	Set(conv *Conversation) error
	Clear(userID string) error
}
