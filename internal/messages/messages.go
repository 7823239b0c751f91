package messages

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/types"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func ErrorDefault() string {
	return "🚫 <b>Something went wrong</b>\nPlease try again."
}

func UnknownCommand() string {
	return "❓ <b>Command not found</b>\nSend /help to see what I can do."
}

func StartWelcome(name string, premium bool, premiumUntil *time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👋 <b>Hi, %s!</b>\n", Escape(name))
	b.WriteString("I download videos from YouTube, Instagram, TikTok and more.\n\n")
	if premium && premiumUntil != nil {
		fmt.Fprintf(&b, "💎 Premium active until <b>%s</b>.\n\n", premiumUntil.Format("2006-01-02"))
	}
	b.WriteString("📥 Tap <b>Download Video</b> and send me a link.")
	return b.String()
}

func AskLink() string {
	return "🔗 <b>Send me a video link</b>\nYouTube, Instagram, TikTok, Twitter/X, Facebook, Reddit, Dailymotion, Vimeo or Twitch."
}

func InvalidLink(reason string) string {
	return "⚠️ <b>That link won't work</b>\n" + Escape(reason)
}

func ChooseQuality(platform string) string {
	return fmt.Sprintf("🎬 <b>%s link accepted</b>\nPick a quality:", Escape(platform))
}

func DownloadQueued(platform, quota string) string {
	text := fmt.Sprintf("⏳ <b>Downloading from %s…</b>", Escape(platform))
	if quota != "" {
		text += "\n" + Escape(quota)
	}
	return text
}

func DownloadCompleted(platform string, sizeMB float64, elapsed string) string {
	text := fmt.Sprintf("✅ <b>Download finished</b>\n🌐 %s\n📦 %.1f MB", Escape(platform), sizeMB)
	if elapsed != "" {
		text += "\n⏱ " + Escape(elapsed)
	}
	return text
}

func DownloadFailed(platform string) string {
	return fmt.Sprintf("❌ <b>Download failed</b>\nThe %s download could not be completed. Try again later.", Escape(platform))
}

func Profile(p *types.User, downloads, payments int, balance decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("👤 <b>Your account</b>\n")
	fmt.Fprintf(&b, "🆔 <code>%s</code>\n", Escape(p.ID))
	fmt.Fprintf(&b, "📛 %s\n", Escape(p.DisplayName()))
	fmt.Fprintf(&b, "⭐ Status: <b>%s</b>\n", p.Status)
	if p.IsPremium(time.Now()) && p.PremiumUntil != nil {
		fmt.Fprintf(&b, "💎 Premium until: %s\n", p.PremiumUntil.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "📥 Downloads: %d\n", downloads)
	fmt.Fprintf(&b, "💳 Payments: %d\n", payments)
	fmt.Fprintf(&b, "💰 Balance: %s USDT\n", balance.String())
	fmt.Fprintf(&b, "📅 Joined: %s", p.JoinedAt.Format("2006-01-02"))
	return b.String()
}

func PremiumIntro() string {
	return "💎 <b>Premium plans</b>\nUnlimited downloads, no ads, up to 4K quality.\nPick a plan:"
}

func PlanButton(p *types.PremiumPlan) string {
	price := p.DiscountedPrice().String()
	if p.DiscountPercent > 0 {
		return fmt.Sprintf("%s — %s USDT (-%d%%)", p.Name, price, p.DiscountPercent)
	}
	return fmt.Sprintf("%s — %s USDT", p.Name, price)
}

func PlanDetails(p *types.PremiumPlan, instructions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💎 <b>%s plan</b> — %d days\n", Escape(p.Name), p.DurationDays)
	if p.DiscountPercent > 0 {
		fmt.Fprintf(&b, "💵 <s>%s</s> <b>%s USDT</b> (%d%% off)\n", p.Price.String(), p.DiscountedPrice().String(), p.DiscountPercent)
	} else {
		fmt.Fprintf(&b, "💵 <b>%s USDT</b>\n", p.Price.String())
	}
	for _, f := range p.Features {
		fmt.Fprintf(&b, "• %s\n", Escape(f))
	}
	b.WriteString("\n<b>How to pay:</b>\n")
	for _, line := range instructions {
		fmt.Fprintf(&b, "%s\n", Escape(line))
	}
	b.WriteString("\nSend the TXID as your next message, or tap ❌ Cancel.")
	return b.String()
}

func PaymentResult(ok bool, msg string) string {
	if ok {
		return "🎉 <b>" + Escape(msg) + "</b>"
	}
	return "⚠️ " + Escape(msg)
}

func Cancelled() string {
	return "✖️ Cancelled. Back to the main menu."
}

func NothingToCancel() string {
	return "There is nothing to cancel."
}

func Help() string {
	return "📋 <b>How it works</b>\n" +
		"1. Tap 📥 <b>Download Video</b> and send a link.\n" +
		"2. Pick a quality, wait for the file.\n" +
		"3. Free accounts have a limited number of downloads; 💎 <b>Premium</b> removes the limit.\n\n" +
		"Commands: /start /profile /download /premium /cancel /help"
}

func Support() string {
	return "📞 <b>Support</b>\nHaving trouble? Write to the operator and include your account id from 👤 <b>My Account</b>."
}

func NotAdmin() string {
	return "This action is for the operator only."
}

func AdminPanel() string {
	return "🛠 <b>Admin panel</b>"
}

func AdBlock(title, text string) string {
	out := "📢 <b>" + Escape(title) + "</b>"
	if text != "" {
		out += "\n" + Escape(text)
	}
	return out
}

func CleanupDone(removed int) string {
	return fmt.Sprintf("🧹 Retention sweep removed %d old downloads.", removed)
}

func BackupDone(dir string) string {
	return "💾 Backup written to <code>" + Escape(dir) + "</code>."
}
