package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/vidgrab/vidgrab-bot/internal/messages"
	"github.com/vidgrab/vidgrab-bot/types"
)

func (bh *Handlers) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update, userID string) {
	chatID := update.Message.Chat.ID
	command := strings.ToLower(strings.Fields(update.Message.Text)[0])
	if at := strings.Index(command, "@"); at != -1 {
		command = command[:at]
	}

	switch command {
	case "/start":
		bh.commandStart(ctx, b, chatID, userID)
	case "/help":
		bh.send(ctx, b, chatID, messages.Help())
	case "/profile":
		bh.showProfile(ctx, b, chatID, userID)
	case "/download":
		bh.askForLink(ctx, b, chatID, userID)
	case "/premium":
		bh.showPlans(ctx, b, chatID, userID)
	case "/cancel":
		bh.cancelConversation(ctx, b, chatID, userID)
	case "/admin":
		bh.showAdminPanel(ctx, b, chatID, userID)
	default:
		bh.send(ctx, b, chatID, messages.UnknownCommand())
	}
}

func (bh *Handlers) commandStart(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	user := bh.manager.Users.Get(userID)
	if user == nil {
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}
	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	now := time.Now()
	bh.sendWithKeyboard(ctx, b, chatID,
		messages.StartWelcome(name, user.IsPremium(now), user.PremiumUntil),
		bh.mainKeyboard(userID))
}

func (bh *Handlers) showProfile(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	p := bh.manager.Users.Profile(userID)
	if p == nil {
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}
	bh.send(ctx, b, chatID, messages.Profile(p.User, p.Downloads, p.Payments, p.Balance))
}

func (bh *Handlers) askForLink(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	err := bh.conv.Set(&types.Conversation{
		UserID: userID,
		ChatID: chatID,
		Step:   types.StepAwaitLink,
	})
	if err != nil {
		bh.log.Warn().Err(err).Str("user_id", userID).Msg("failed to store conversation")
		bh.send(ctx, b, chatID, messages.ErrorDefault())
		return
	}
	bh.sendWithKeyboard(ctx, b, chatID, messages.AskLink(), cancelKeyboard())
}

func (bh *Handlers) showPlans(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	plans := bh.manager.Payments.Plans()
	rows := make([][]models.InlineKeyboardButton, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         messages.PlanButton(p),
			CallbackData: "plan_" + p.ID,
		}})
	}
	bh.sendWithKeyboard(ctx, b, chatID, messages.PremiumIntro(),
		&models.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (bh *Handlers) cancelConversation(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	conv, err := bh.conv.Get(userID)
	if err != nil {
		bh.log.Warn().Err(err).Str("user_id", userID).Msg("failed to read conversation")
	}
	if conv == nil {
		bh.sendWithKeyboard(ctx, b, chatID, messages.NothingToCancel(), bh.mainKeyboard(userID))
		return
	}
	if err := bh.conv.Clear(userID); err != nil {
		bh.log.Warn().Err(err).Str("user_id", userID).Msg("failed to clear conversation")
	}
	bh.sendWithKeyboard(ctx, b, chatID, messages.Cancelled(), bh.mainKeyboard(userID))
}

func (bh *Handlers) showAdminPanel(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	if !bh.isAdmin(userID) {
		bh.send(ctx, b, chatID, messages.NotAdmin())
		return
	}
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "📊 Stats", CallbackData: "admin_stats"}},
			{{Text: "🧹 Cleanup", CallbackData: "admin_cleanup"}, {Text: "💾 Backup", CallbackData: "admin_backup"}},
		},
	}
	bh.sendWithKeyboard(ctx, b, chatID, messages.AdminPanel(), keyboard)
}
