package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string          `json:"id"`
	Username     string          `json:"username,omitempty"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name,omitempty"`
	JoinedAt     time.Time       `json:"join_date"`
	Status       UserStatus      `json:"status"`
	LastSeen     time.Time       `json:"last_seen"`
	Language     string          `json:"language"`
	ReferredBy   string          `json:"referred_by,omitempty"`
	Balance      decimal.Decimal `json:"balance"`
	PremiumUntil *time.Time      `json:"premium_until,omitempty"`
}

// IsPremium is time-bounded: a premium status without a future expiry
// does not count.
func (u *User) IsPremium(now time.Time) bool {
	if u.Status != UserStatusPremium {
		return false
	}
	return u.PremiumUntil != nil && now.Before(*u.PremiumUntil)
}

func (u *User) IsAdmin() bool {
	return u.Status == UserStatusAdmin
}

func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}

// PremiumPlan is a catalog entry defined in configuration, never
// persisted per user.
type PremiumPlan struct {
	ID              string
	Name            string
	DurationDays    int
	Price           decimal.Decimal
	DiscountPercent int
	Features        []string
	Active          bool
}

func (p *PremiumPlan) DiscountedPrice() decimal.Decimal {
	if p.DiscountPercent <= 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(int64(100 - p.DiscountPercent))
	return p.Price.Mul(factor).Div(decimal.NewFromInt(100))
}

type DownloadRequest struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	URL          string         `json:"url"`
	Platform     string         `json:"platform"`
	Status       DownloadStatus `json:"status"`
	RequestedAt  time.Time      `json:"requested_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	Quality      string         `json:"quality,omitempty"`
	Format       string         `json:"format,omitempty"`
	FileSizeMB   float64        `json:"file_size,omitempty"`
	FilePath     string         `json:"file_path,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

type Payment struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	PlanID        string          `json:"plan_id"`
	Amount        decimal.Decimal `json:"amount_usdt"`
	Status        PaymentStatus   `json:"status"`
	TxID          string          `json:"txid,omitempty"`
	WalletAddress string          `json:"wallet_address,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
}

type AdCampaign struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Type        AdType          `json:"ad_type"`
	ImageURL    string          `json:"image_url,omitempty"`
	VideoURL    string          `json:"video_url,omitempty"`
	Text        string          `json:"text,omitempty"`
	Link        string          `json:"link,omitempty"`
	Budget      decimal.Decimal `json:"budget_usdt"`
	Spent       decimal.Decimal `json:"spent_usdt"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Active      bool            `json:"is_active"`
	StartAt     time.Time       `json:"start_date"`
	EndAt       *time.Time      `json:"end_date,omitempty"`
}

// IsRunning applies the read-time end-date check; a past end date
// disables a campaign without flipping its Active flag.
func (c *AdCampaign) IsRunning(now time.Time) bool {
	if !c.Active {
		return false
	}
	return c.EndAt == nil || c.EndAt.After(now)
}

// Conversation is the pending state of the two linear flows: waiting
// for a link after "Download Video", or waiting for a transaction id
// after a plan was selected.
type ConversationStep string

const (
	StepAwaitLink ConversationStep = "await_link"
	StepAwaitTxID ConversationStep = "await_txid"
)

type Conversation struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	ChatID    int64            `json:"chat_id"`
	Step      ConversationStep `json:"step"`
	PaymentID string           `json:"payment_id,omitempty"`
	StartedAt time.Time        `json:"started_at"`
}
