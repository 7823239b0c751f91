package services

import (
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

// txid is checked by format only: hex, 10 to 64 characters. There is
// no ledger lookup.
var txidPattern = regexp.MustCompile(`^[a-fA-F0-9]{10,64}$`)

type PaymentService struct {
	payments types.PaymentStore
	users    *UserService
	wallet   string
	plans    []*types.PremiumPlan
	planByID map[string]*types.PremiumPlan
	log      zerolog.Logger
}

func NewPaymentService(payments types.PaymentStore, users *UserService, wallet string, log zerolog.Logger) *PaymentService {
	s := &PaymentService{
		payments: payments,
		users:    users,
		wallet:   wallet,
		plans:    defaultPlans(),
		planByID: make(map[string]*types.PremiumPlan),
		log:      log.With().Str("service", "payments").Logger(),
	}
	for _, p := range s.plans {
		s.planByID[p.ID] = p
	}
	return s
}

func defaultPlans() []*types.PremiumPlan {
	return []*types.PremiumPlan{
		{
			ID:           "monthly",
			Name:         "Monthly",
			DurationDays: 30,
			Price:        decimal.NewFromInt(5),
			Features: []string{
				"Unlimited downloads",
				"Up to 4K quality",
				"No ads",
			},
			Active: true,
		},
		{
			ID:              "quarterly",
			Name:            "Quarterly",
			DurationDays:    90,
			Price:           decimal.NewFromInt(12),
			DiscountPercent: 20,
			Features: []string{
				"Unlimited downloads",
				"Up to 4K quality",
				"No ads",
				"Priority queue",
			},
			Active: true,
		},
		{
			ID:              "semi_annual",
			Name:            "Half-year",
			DurationDays:    180,
			Price:           decimal.NewFromInt(20),
			DiscountPercent: 33,
			Features: []string{
				"Unlimited downloads",
				"Up to 4K quality",
				"No ads",
				"Priority queue",
				"Playlist downloads",
			},
			Active: true,
		},
		{
			ID:              "annual",
			Name:            "Annual",
			DurationDays:    365,
			Price:           decimal.NewFromInt(35),
			DiscountPercent: 42,
			Features: []string{
				"Unlimited downloads",
				"Up to 4K quality",
				"No ads",
				"Priority queue",
				"Playlist downloads",
				"VIP support",
			},
			Active: true,
		},
	}
}

func (s *PaymentService) Plans() []*types.PremiumPlan {
	out := make([]*types.PremiumPlan, 0, len(s.plans))
	for _, p := range s.plans {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

func (s *PaymentService) Plan(planID string) *types.PremiumPlan {
	return s.planByID[planID]
}

func (s *PaymentService) WalletAddress() string { return s.wallet }

// CreatePayment opens a pending payment for the plan's discounted
// price against the configured receiving wallet.
func (s *PaymentService) CreatePayment(userID, planID string) (*types.Payment, error) {
	plan := s.Plan(planID)
	if plan == nil {
		return nil, fmt.Errorf("unknown plan %q", planID)
	}
	if s.users.Get(userID) == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	payment := s.payments.Create(userID, planID, plan.DiscountedPrice(), s.wallet)
	s.log.Info().Str("payment_id", payment.ID).Str("user_id", userID).Str("plan_id", planID).
		Str("amount", payment.Amount.String()).Msg("payment created")
	return payment, nil
}

func (s *PaymentService) ValidateTxID(txid string) bool {
	return txidPattern.MatchString(txid)
}

type ConfirmResult struct {
	OK      bool
	Message string
}

// ConfirmPayment runs the straight-line transition: validate the txid,
// confirm the pending payment, activate premium for the plan's
// duration, complete the payment. If the upgrade step fails the
// payment stays confirmed but not completed and an operator has to
// step in; nothing is retried or rolled back.
func (s *PaymentService) ConfirmPayment(paymentID, txid string) ConfirmResult {
	if !s.ValidateTxID(txid) {
		return ConfirmResult{Message: "Invalid transaction id. It must be 10 to 64 hex characters."}
	}

	payment := s.payments.Get(paymentID)
	if payment == nil {
		return ConfirmResult{Message: "Payment not found."}
	}
	if payment.Status != types.PaymentPending {
		return ConfirmResult{Message: fmt.Sprintf("This payment is already %s.", payment.Status)}
	}

	if err := s.payments.Confirm(paymentID, txid, time.Now()); err != nil {
		s.log.Warn().Err(err).Str("payment_id", paymentID).Msg("payment confirmation refused")
		return ConfirmResult{Message: "Could not confirm the payment. Please contact support."}
	}

	plan := s.Plan(payment.PlanID)
	if plan == nil {
		s.log.Error().Str("payment_id", paymentID).Str("plan_id", payment.PlanID).Msg("confirmed payment references unknown plan")
		return ConfirmResult{Message: "Payment confirmed, but the plan no longer exists. Please contact support."}
	}

	until := time.Now().AddDate(0, 0, plan.DurationDays)
	if err := s.users.UpgradeToPremium(payment.UserID, plan.ID, until); err != nil {
		s.log.Error().Err(err).Str("payment_id", paymentID).Msg("premium upgrade failed after confirmation")
		return ConfirmResult{Message: "Payment confirmed, but activation failed. Please contact support."}
	}

	if err := s.payments.Complete(paymentID, until); err != nil {
		s.log.Error().Err(err).Str("payment_id", paymentID).Msg("failed to complete confirmed payment")
	}

	s.log.Info().Str("payment_id", paymentID).Str("user_id", payment.UserID).Time("until", until).Msg("payment completed, premium activated")
	return ConfirmResult{
		OK:      true,
		Message: fmt.Sprintf("Payment confirmed! Premium is active until %s.", until.Format("2006-01-02")),
	}
}

// PaymentInstructions renders the manual USDT transfer steps for a
// plan.
func (s *PaymentService) PaymentInstructions(planID string) []string {
	plan := s.Plan(planID)
	if plan == nil {
		return nil
	}
	amount := plan.DiscountedPrice()
	return []string{
		fmt.Sprintf("1. Send exactly %s USDT to this address:", amount.String()),
		s.wallet,
		"2. Use the TRC20 network only.",
		"3. Copy the transaction id (TXID) after the transfer.",
		"4. Send the TXID here to activate your subscription.",
	}
}

func PaymentStatusText(status types.PaymentStatus) string {
	switch status {
	case types.PaymentPending:
		return "Awaiting payment"
	case types.PaymentConfirmed:
		return "Confirming"
	case types.PaymentCompleted:
		return "Completed"
	case types.PaymentFailed:
		return "Failed"
	case types.PaymentRefunded:
		return "Refunded"
	}
	return "Unknown"
}

type PaymentSummary struct {
	Payment    *types.Payment
	PlanName   string
	StatusText string
}

func (s *PaymentService) UserPayments(userID string) []PaymentSummary {
	payments := s.payments.ByUser(userID)
	out := make([]PaymentSummary, 0, len(payments))
	for _, p := range payments {
		name := ""
		if plan := s.Plan(p.PlanID); plan != nil {
			name = plan.Name
		}
		out = append(out, PaymentSummary{
			Payment:    p,
			PlanName:   name,
			StatusText: PaymentStatusText(p.Status),
		})
	}
	return out
}
