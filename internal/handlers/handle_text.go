package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/vidgrab/vidgrab-bot/internal/messages"
	"github.com/vidgrab/vidgrab-bot/types"
)

func (bh *Handlers) HandleText(ctx context.Context, b *bot.Bot, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	text := update.Message.Text

	switch text {
	case btnDownload:
		bh.askForLink(ctx, b, chatID, userID)
		return
	case btnAccount:
		bh.showProfile(ctx, b, chatID, userID)
		return
	case btnPremium:
		bh.showPlans(ctx, b, chatID, userID)
		return
	case btnHelp:
		bh.send(ctx, b, chatID, messages.Help())
		return
	case btnSupport:
		bh.send(ctx, b, chatID, messages.Support())
		return
	case btnCancel:
		bh.cancelConversation(ctx, b, chatID, userID)
		return
	case btnAdmin:
		bh.showAdminPanel(ctx, b, chatID, userID)
		return
	}

	conv, err := bh.conv.Get(userID)
	if err != nil {
		bh.log.Warn().Err(err).Str("user_id", userID).Msg("failed to read conversation")
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}
	if conv == nil {
		bh.send(ctx, b, chatID, messages.UnknownCommand())
		return
	}

	switch conv.Step {
	case types.StepAwaitLink:
		bh.handleLink(ctx, b, chatID, userID, text)
	case types.StepAwaitTxID:
		bh.handleTxID(ctx, b, chatID, userID, conv, text)
	default:
		bh.send(ctx, b, chatID, messages.UnknownCommand())
	}
}

// handleLink runs the submitted URL through validation and the quota
// check, then offers the platform's quality options. The conversation
// stays open on rejection so the user can retry with another link.
func (bh *Handlers) handleLink(ctx context.Context, b *bot.Bot, chatID int64, userID, url string) {
	result := bh.manager.Downloads.CreateRequest(userID, url, true)
	if result.Request == nil {
		bh.send(ctx, b, chatID, messages.InvalidLink(result.Reason))
		return
	}
	if err := bh.conv.Clear(userID); err != nil {
		bh.log.Warn().Err(err).Str("user_id", userID).Msg("failed to clear conversation")
	}

	formats := bh.manager.Downloads.AvailableFormats(result.Request.Platform)
	rows := make([][]models.InlineKeyboardButton, 0, len(formats))
	for _, f := range formats {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         f.Label,
			CallbackData: "quality_" + result.Request.ID + "_" + f.ID,
		}})
	}
	bh.sendWithKeyboard(ctx, b, chatID,
		messages.ChooseQuality(result.Request.Platform),
		&models.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (bh *Handlers) handleTxID(ctx context.Context, b *bot.Bot, chatID int64, userID string, conv *types.Conversation, txid string) {
	if !bh.manager.Payments.ValidateTxID(txid) {
		bh.send(ctx, b, chatID, messages.PaymentResult(false,
			"That does not look like a transaction hash. Send the hexadecimal TXID from your wallet."))
		return
	}

	result := bh.manager.Payments.ConfirmPayment(conv.PaymentID, txid)
	if result.OK {
		if err := bh.conv.Clear(userID); err != nil {
			bh.log.Warn().Err(err).Str("user_id", userID).Msg("failed to clear conversation")
		}
		bh.sendWithKeyboard(ctx, b, chatID, messages.PaymentResult(true, result.Message), bh.mainKeyboard(userID))
		return
	}
	bh.send(ctx, b, chatID, messages.PaymentResult(false, result.Message))
}
