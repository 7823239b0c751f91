// Package services holds the domain layer: user accounts and quotas,
// download requests, premium payments and ad campaigns. Services
// orchestrate the stores and return user-facing results; transport
// concerns stay in the handlers.
package services

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

const QuotaDeniedMessage = "You have used all your free downloads. Buy a premium plan to continue."

type UserService struct {
	users     types.UserStore
	downloads types.DownloadStore
	payments  types.PaymentStore
	log       zerolog.Logger
}

func NewUserService(users types.UserStore, downloads types.DownloadStore, payments types.PaymentStore, log zerolog.Logger) *UserService {
	return &UserService{
		users:     users,
		downloads: downloads,
		payments:  payments,
		log:       log.With().Str("service", "users").Logger(),
	}
}

// Register is idempotent: a known user only gets their last-seen
// refreshed, a new one is created as a free-tier account.
func (s *UserService) Register(id, username, firstName, lastName string) (*types.User, error) {
	if existing := s.users.Get(id); existing != nil {
		return s.users.TouchLastSeen(id, time.Now()), nil
	}

	now := time.Now()
	user, err := s.users.Create(&types.User{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		JoinedAt:  now,
		Status:    types.UserStatusFree,
		LastSeen:  now,
		Language:  "en",
		Balance:   decimal.Zero,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Str("username", username).Msg("user registered")
	return user, nil
}

func (s *UserService) Get(userID string) *types.User {
	return s.users.Get(userID)
}

type QuotaResult struct {
	Allowed   bool
	Remaining int
	Message   string
}

// CheckDownloadQuota allows premium (time-bounded) and admin users
// unconditionally; free and trial users are allowed while their total
// request count is below maxFree.
func (s *UserService) CheckDownloadQuota(userID string, maxFree int) QuotaResult {
	user := s.users.Get(userID)
	if user == nil {
		return QuotaResult{Message: "User not found. Send /start first."}
	}

	if user.IsAdmin() || user.IsPremium(time.Now()) {
		return QuotaResult{Allowed: true, Remaining: -1, Message: "Unlimited downloads."}
	}

	count := s.downloads.CountByUser(userID)
	if count < maxFree {
		remaining := maxFree - count
		return QuotaResult{
			Allowed:   true,
			Remaining: remaining,
			Message:   fmt.Sprintf("You have %d free downloads left.", remaining),
		}
	}
	return QuotaResult{Message: QuotaDeniedMessage}
}

// UpgradeToPremium sets the user's status and persists the expiry, so
// premium is bounded by the paid plan's duration.
func (s *UserService) UpgradeToPremium(userID, planID string, until time.Time) error {
	if s.users.SetPremium(userID, until) == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	s.log.Info().Str("user_id", userID).Str("plan_id", planID).Time("until", until).Msg("user upgraded to premium")
	return nil
}

type Profile struct {
	User      *types.User
	Downloads int
	Payments  int
	Balance   decimal.Decimal
}

func (s *UserService) Profile(userID string) *Profile {
	user := s.users.Get(userID)
	if user == nil {
		return nil
	}
	return &Profile{
		User:      user,
		Downloads: s.downloads.CountByUser(userID),
		Payments:  len(s.payments.ByUser(userID)),
		Balance:   user.Balance,
	}
}

type SystemStats struct {
	TotalUsers     int
	PremiumUsers   int
	TotalDownloads int
	TotalRevenue   decimal.Decimal
	TodayUsers     int
	PremiumPercent float64
}

func (s *UserService) SystemStats() SystemStats {
	now := time.Now()
	stats := SystemStats{
		TotalUsers:     s.users.Count(),
		PremiumUsers:   len(s.users.PremiumUsers(now)),
		TotalDownloads: s.downloads.Count(),
		TotalRevenue:   decimal.Zero,
	}

	for _, p := range s.payments.All() {
		if p.Status == types.PaymentCompleted {
			stats.TotalRevenue = stats.TotalRevenue.Add(p.Amount)
		}
	}

	y, m, d := now.Date()
	for _, u := range s.users.All() {
		uy, um, ud := u.JoinedAt.Date()
		if uy == y && um == m && ud == d {
			stats.TodayUsers++
		}
	}

	if stats.TotalUsers > 0 {
		stats.PremiumPercent = float64(stats.PremiumUsers) / float64(stats.TotalUsers) * 100
	}
	return stats
}
