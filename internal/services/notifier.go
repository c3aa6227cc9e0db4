package services

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/acoopRD/poc-finance/internal/models"
)

// Notifier pushes recommendations and simulated fills to a Telegram chat.
// Without a bot token it degrades to a no-op so the pipeline runs unchanged
// in local setups.
type Notifier struct {
	bot    *bot.Bot
	chatID int64
	logger *logrus.Logger
}

// NewNotifier creates a notifier. An empty token disables delivery.
func NewNotifier(token string, chatID int64, logger *logrus.Logger) *Notifier {
	var b *bot.Bot
	if token != "" {
		var err error
		b, err = bot.New(token)
		if err != nil {
			logger.Warnf("Telegram bot initialization failed, notifications disabled: %v", err)
			b = nil
		}
	}
	return &Notifier{bot: b, chatID: chatID, logger: logger}
}

// NotifyRecommendation sends a non-HOLD recommendation summary.
func (n *Notifier) NotifyRecommendation(ctx context.Context, report *models.AnalysisReport) {
	if n.bot == nil || report == nil || report.Recommendation.Action == models.ActionHold {
		return
	}

	msg := fmt.Sprintf("📊 *%s*: %s (confidence %.0f%%)\n",
		report.Symbol, report.Recommendation.Action, report.Recommendation.Confidence*100)
	for _, s := range report.Recommendation.Signals {
		msg += fmt.Sprintf("• %s — %s (weight %d)\n", s.Direction, s.Reason, s.Weight)
	}

	n.send(ctx, msg)
}

// NotifyTrade sends an executed simulated fill.
func (n *Notifier) NotifyTrade(ctx context.Context, order models.Order, pnl decimal.Decimal) {
	if n.bot == nil {
		return
	}

	emoji := "🟢"
	if order.Side == models.OrderSideSell {
		emoji = "🔴"
	}
	msg := fmt.Sprintf("%s *%s %s*: %s @ %s", emoji, order.Side, order.Symbol, order.Amount, order.Price)
	if order.Side == models.OrderSideSell {
		msg += fmt.Sprintf("\nUnrealized P&L at exit: %s", pnl)
	}

	n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, text string) {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		n.logger.Warnf("Failed to send Telegram notification: %v", err)
	}
}
