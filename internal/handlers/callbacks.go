package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/vidgrab/vidgrab-bot/internal/contextkeys"
	"github.com/vidgrab/vidgrab-bot/internal/messages"
	"github.com/vidgrab/vidgrab-bot/types"
)

func (bh *Handlers) HandleClickButton(ctx context.Context, b *bot.Bot, update *models.Update, userID string) {
	chatID := bh.getChatIDFromUpdate(update)
	callbackID := update.CallbackQuery.ID
	data, ok := contextkeys.GetCallbackData(ctx)
	if !ok {
		data = update.CallbackQuery.Data
	}

	switch {
	case strings.HasPrefix(data, "plan_"):
		bh.answerCallback(ctx, b, callbackID, "")
		bh.selectPlan(ctx, b, chatID, userID, strings.TrimPrefix(data, "plan_"))
	case strings.HasPrefix(data, "quality_"):
		bh.answerCallback(ctx, b, callbackID, "")
		bh.selectQuality(ctx, b, chatID, userID, strings.TrimPrefix(data, "quality_"))
	case strings.HasPrefix(data, "ad_"):
		bh.adClick(ctx, b, callbackID, chatID, strings.TrimPrefix(data, "ad_"))
	case data == "admin_stats":
		bh.answerCallback(ctx, b, callbackID, "")
		bh.adminStats(ctx, b, chatID, userID)
	case data == "admin_cleanup":
		bh.answerCallback(ctx, b, callbackID, "")
		bh.adminCleanup(ctx, b, chatID, userID)
	case data == "admin_backup":
		bh.answerCallback(ctx, b, callbackID, "")
		bh.adminBackup(ctx, b, chatID, userID)
	default:
		bh.answerCallback(ctx, b, callbackID, "")
		bh.log.Debug().Str("data", data).Msg("unknown callback")
	}
}

// selectPlan opens a pending payment for the chosen plan and moves the
// conversation to the txid step.
func (bh *Handlers) selectPlan(ctx context.Context, b *bot.Bot, chatID int64, userID, planID string) {
	plan := bh.manager.Payments.Plan(planID)
	if plan == nil {
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}

	payment, err := bh.manager.Payments.CreatePayment(userID, planID)
	if err != nil {
		bh.log.Warn().Err(err).Str("user_id", userID).Str("plan_id", planID).Msg("failed to create payment")
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}

	err = bh.conv.Set(&types.Conversation{
		UserID:    userID,
		ChatID:    chatID,
		Step:      types.StepAwaitTxID,
		PaymentID: payment.ID,
	})
	if err != nil {
		bh.log.Warn().Err(err).Str("user_id", userID).Msg("failed to store conversation")
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}

	instructions := bh.manager.Payments.PaymentInstructions(planID)
	bh.sendWithKeyboard(ctx, b, chatID, messages.PlanDetails(plan, instructions), cancelKeyboard())
}

// selectQuality hands a pending request to the scheduler. The payload
// is "<downloadID>_<tag>" and download ids contain an underscore, so
// the tag is everything after the last one.
func (bh *Handlers) selectQuality(ctx context.Context, b *bot.Bot, chatID int64, userID, payload string) {
	sep := strings.LastIndex(payload, "_")
	if sep <= 0 || sep == len(payload)-1 {
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}
	downloadID, quality := payload[:sep], payload[sep+1:]

	req := bh.manager.Downloads.Get(downloadID)
	if req == nil || req.UserID != userID {
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}
	if req.Status != types.DownloadPending {
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}

	bh.scheduler.EnqueueDownload(downloadID, chatID, quality)

	quota := bh.manager.Downloads.QuotaStatus(userID)
	bh.sendWithKeyboard(ctx, b, chatID,
		messages.DownloadQueued(req.Platform, quota.Message),
		bh.mainKeyboard(userID))
}

// adClick counts the click and hands out the campaign link.
func (bh *Handlers) adClick(ctx context.Context, b *bot.Bot, callbackID string, chatID int64, campaignID string) {
	if !bh.manager.Ads.RecordClick(campaignID) {
		bh.answerCallback(ctx, b, callbackID, "This offer has ended.")
		return
	}
	bh.answerCallback(ctx, b, callbackID, "")
	if c := bh.manager.Ads.Campaign(campaignID); c != nil && c.Link != "" {
		bh.send(ctx, b, chatID, c.Link)
	}
}

func (bh *Handlers) adminStats(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	if !bh.isAdmin(userID) {
		bh.send(ctx, b, chatID, messages.NotAdmin())
		return
	}
	stats := bh.manager.SystemStats()
	var sb strings.Builder
	sb.WriteString("<b>📊 System stats</b>\n\n")
	fmt.Fprintf(&sb, "👥 Users: %d (%d new today)\n", stats.TotalUsers, stats.TodayUsers)
	fmt.Fprintf(&sb, "💎 Premium: %d (%.1f%%)\n", stats.PremiumUsers, stats.PremiumPercent)
	fmt.Fprintf(&sb, "📥 Downloads: %d\n", stats.TotalDownloads)
	fmt.Fprintf(&sb, "💵 Revenue: %s USDT\n", stats.TotalRevenue.StringFixed(2))
	fmt.Fprintf(&sb, "📣 Active campaigns: %d\n", stats.ActiveCampaigns)
	fmt.Fprintf(&sb, "💸 Ad spend: %s USDT", stats.TotalAdSpend.StringFixed(2))
	bh.send(ctx, b, chatID, sb.String())
}

func (bh *Handlers) adminCleanup(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	if !bh.isAdmin(userID) {
		bh.send(ctx, b, chatID, messages.NotAdmin())
		return
	}
	age := time.Duration(bh.cfg.RetentionDays) * 24 * time.Hour
	removed := bh.manager.CleanupOldData(age)
	bh.send(ctx, b, chatID, messages.CleanupDone(removed))
}

func (bh *Handlers) adminBackup(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	if !bh.isAdmin(userID) {
		bh.send(ctx, b, chatID, messages.NotAdmin())
		return
	}
	if err := bh.manager.Backup(bh.cfg.BackupDir); err != nil {
		bh.log.Error().Err(err).Msg("backup failed")
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}
	bh.send(ctx, b, chatID, messages.BackupDone(bh.cfg.BackupDir))
}
