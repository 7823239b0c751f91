package handlers

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/vidgrab/vidgrab-bot/internal/contextkeys"
	"github.com/vidgrab/vidgrab-bot/internal/messages"
	"github.com/vidgrab/vidgrab-bot/internal/services"
	"github.com/vidgrab/vidgrab-bot/types"
)

// DownloadEnqueuer is what the handlers need from the scheduler.
type DownloadEnqueuer interface {
	EnqueueDownload(downloadID string, chatID int64, quality string)
}

type Config struct {
	AdminID       int64
	BackupDir     string
	RetentionDays int
}

type Handlers struct {
	manager   *services.Manager
	conv      types.ConversationStore
	scheduler DownloadEnqueuer
	cfg       Config
	log       zerolog.Logger
}

func NewHandlers(manager *services.Manager, conv types.ConversationStore, scheduler DownloadEnqueuer, cfg Config, log zerolog.Logger) *Handlers {
	return &Handlers{
		manager:   manager,
		conv:      conv,
		scheduler: scheduler,
		cfg:       cfg,
		log:       log.With().Str("component", "handlers").Logger(),
	}
}

func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := bh.getChatIDFromUpdate(update)
	messageType, _ := contextkeys.GetMessageType(ctx)

	userID, ok := contextkeys.GetUserID(ctx)
	if !ok {
		bh.log.Warn().Msg("update without a sender, dropping")
		return
	}

	switch messageType {
	case contextkeys.MessageTypeCommand:
		bh.HandleCommand(ctx, b, update, userID)
	case contextkeys.MessageTypeText:
		bh.HandleText(ctx, b, update, userID)
	case contextkeys.MessageTypeClickButton:
		bh.HandleClickButton(ctx, b, update, userID)
	default:
		if chatID != 0 {
			bh.send(ctx, b, chatID, messages.UnknownCommand())
		}
	}
}

func (bh *Handlers) getChatIDFromUpdate(update *models.Update) int64 {
	if update == nil {
		return 0
	}
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil {
		if update.CallbackQuery.Message.Message != nil {
			return update.CallbackQuery.Message.Message.Chat.ID
		}
		if update.CallbackQuery.Message.InaccessibleMessage != nil {
			return update.CallbackQuery.Message.InaccessibleMessage.Chat.ID
		}
	}
	return 0
}

func (bh *Handlers) isAdmin(userID string) bool {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return false
	}
	return bh.cfg.AdminID != 0 && id == bh.cfg.AdminID
}

func (bh *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		bh.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (bh *Handlers) sendWithKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		bh.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (bh *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		bh.log.Warn().Err(err).Msg("failed to answer callback")
	}
}

const (
	btnDownload = "📥 Download Video"
	btnAccount  = "👤 My Account"
	btnPremium  = "💎 Buy Premium"
	btnHelp     = "📋 Help"
	btnSupport  = "📞 Support"
	btnCancel   = "❌ Cancel"
	btnAdmin    = "🛠 Admin Panel"
)

func (bh *Handlers) mainKeyboard(userID string) *models.ReplyKeyboardMarkup {
	rows := [][]models.KeyboardButton{
		{{Text: btnDownload}},
		{{Text: btnAccount}, {Text: btnPremium}},
		{{Text: btnHelp}, {Text: btnSupport}},
	}
	if bh.isAdmin(userID) {
		rows = append(rows, []models.KeyboardButton{{Text: btnAdmin}})
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}

func cancelKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard:       [][]models.KeyboardButton{{{Text: btnCancel}}},
		ResizeKeyboard: true,
	}
}
