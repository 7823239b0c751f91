package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/vidgrab/vidgrab-bot/internal/contextkeys"
	"github.com/vidgrab/vidgrab-bot/internal/services"
)

// UpdateAnalyzer classifies every inbound update into a message type
// and registers (or refreshes) the sending user before the handler
// chain runs.
type UpdateAnalyzer struct {
	users *services.UserService
	log   zerolog.Logger
}

func NewUpdateAnalyzer(users *services.UserService, log zerolog.Logger) *UpdateAnalyzer {
	return &UpdateAnalyzer{
		users: users,
		log:   log.With().Str("component", "middleware").Logger(),
	}
}

func (m *UpdateAnalyzer) AnalyzeUpdateMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var from *models.User

		switch {
		case update.Message != nil:
			from = update.Message.From
			text := strings.TrimSpace(update.Message.Text)
			if strings.HasPrefix(text, "/") {
				ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeCommand)
			} else {
				ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeText)
			}
		case update.CallbackQuery != nil:
			from = &update.CallbackQuery.From
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeClickButton)
			ctx = contextkeys.WithCallbackData(ctx, update.CallbackQuery.Data)
		default:
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeUnknown)
		}

		if from != nil {
			userID := strconv.FormatInt(from.ID, 10)
			if _, err := m.users.Register(userID, from.Username, from.FirstName, from.LastName); err != nil {
				m.log.Warn().Err(err).Str("user_id", userID).Msg("failed to register user")
			}
			ctx = contextkeys.WithUserID(ctx, userID)
		}

		next(ctx, b, update)
	}
}
