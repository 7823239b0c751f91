package middleware

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/vidgrab/vidgrab-bot/internal/contextkeys"
	"github.com/vidgrab/vidgrab-bot/internal/services"
)

func newAnalyzer(t *testing.T) (*UpdateAnalyzer, *services.Manager) {
	t.Helper()
	m, err := services.NewManager(services.ManagerConfig{
		DataDir:          t.TempDir(),
		MaxFreeDownloads: 3,
		WalletAddress:    "TWallet",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return NewUpdateAnalyzer(m.Users, zerolog.Nop()), m
}

func capture(msgType *contextkeys.MessageType, userID *string, data *string) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		*msgType, _ = contextkeys.GetMessageType(ctx)
		*userID, _ = contextkeys.GetUserID(ctx)
		*data, _ = contextkeys.GetCallbackData(ctx)
	}
}

func TestAnalyzeUpdateClassification(t *testing.T) {
	analyzer, _ := newAnalyzer(t)

	tests := []struct {
		name   string
		update *models.Update
		want   contextkeys.MessageType
	}{
		{
			"command",
			&models.Update{Message: &models.Message{Text: "/start", From: &models.User{ID: 1}}},
			contextkeys.MessageTypeCommand,
		},
		{
			"plain text",
			&models.Update{Message: &models.Message{Text: "hello", From: &models.User{ID: 1}}},
			contextkeys.MessageTypeText,
		},
		{
			"callback",
			&models.Update{CallbackQuery: &models.CallbackQuery{From: models.User{ID: 1}, Data: "plan_monthly"}},
			contextkeys.MessageTypeClickButton,
		},
		{
			"empty update",
			&models.Update{},
			contextkeys.MessageTypeUnknown,
		},
	}

	for _, tt := range tests {
		var gotType contextkeys.MessageType
		var gotUser, gotData string
		handler := analyzer.AnalyzeUpdateMiddleware(capture(&gotType, &gotUser, &gotData))

		handler(context.Background(), nil, tt.update)
		if gotType != tt.want {
			t.Errorf("%s: message type = %q, want %q", tt.name, gotType, tt.want)
		}
		if tt.name == "callback" && gotData != "plan_monthly" {
			t.Errorf("callback data = %q", gotData)
		}
	}
}

func TestAnalyzeUpdateRegistersUser(t *testing.T) {
	analyzer, m := newAnalyzer(t)

	var gotType contextkeys.MessageType
	var gotUser, gotData string
	handler := analyzer.AnalyzeUpdateMiddleware(capture(&gotType, &gotUser, &gotData))

	update := &models.Update{Message: &models.Message{
		Text: "/start",
		From: &models.User{ID: 777, Username: "someone", FirstName: "Some"},
	}}
	handler(context.Background(), nil, update)

	if gotUser != "777" {
		t.Fatalf("user id in context = %q", gotUser)
	}
	user := m.Users.Get("777")
	if user == nil {
		t.Fatal("user not registered by the middleware")
	}
	if user.Username != "someone" || user.FirstName != "Some" {
		t.Fatalf("registered user = %+v", user)
	}
}
