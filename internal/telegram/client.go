// Package telegram sends dashboard summaries to a chat via the Telegram Bot API.
// Messages use MarkdownV2 and delivery is retried with a linear backoff.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/bikepulse/internal/models"
	"github.com/rewired-gh/bikepulse/internal/report"
)

// sender is the part of *tgbotapi.BotAPI the client uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendDashboard sends a summary of dash to the configured chat.
// Waiting between attempts stops early when ctx is cancelled.
func (c *Client) SendDashboard(ctx context.Context, dash *report.Dashboard) error {
	msg := tgbotapi.NewMessage(c.chatID, formatDashboard(dash))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("send cancelled after %d attempts: %w", i+1, ctx.Err())
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatDashboard renders the headline numbers of a dashboard
func formatDashboard(dash *report.Dashboard) string {
	var b strings.Builder

	b.WriteString("🚲 *Bike Sharing Dashboard*\n\n")
	fmt.Fprintf(&b, "📅 %s → %s\n", escapeMarkdownV2(dash.Start), escapeMarkdownV2(dash.End))
	fmt.Fprintf(&b, "🧾 Records: %s\n", escapeMarkdownV2(report.FormatInt(int64(dash.Records))))

	if dash.Empty {
		b.WriteString("\nNo observations in this window\\.\n")
		return b.String()
	}

	if peak, ok := peakMonth(dash.Monthly); ok {
		fmt.Fprintf(&b, "\n📈 Busiest month: *%s* \\(avg %s\\)\n",
			escapeMarkdownV2(fmt.Sprintf("%d-%02d", peak.Year, peak.Month)),
			escapeMarkdownV2(fmt.Sprintf("%.1f", peak.Mean)))
	}

	if len(dash.Weather) > 0 {
		best := dash.Weather[0]
		fmt.Fprintf(&b, "☀️ Best weather: *%s* \\(%s rentals\\)\n",
			escapeMarkdownV2(best.Weather.String()),
			escapeMarkdownV2(report.FormatInt(best.Total)))
	}

	if dash.DayType.WorkingDays > 0 || dash.DayType.HolidayDays > 0 {
		fmt.Fprintf(&b, "🏢 Working day avg: %s\n", escapeMarkdownV2(fmt.Sprintf("%.1f", dash.DayType.WorkingDayMean)))
		fmt.Fprintf(&b, "🎉 Holiday avg: %s\n", escapeMarkdownV2(fmt.Sprintf("%.1f", dash.DayType.HolidayMean)))
	}

	if dash.RFM != nil && len(dash.RFM.TopMonetary) > 0 {
		b.WriteString("\n💎 *Top users by rentals*\n")
		for i, row := range dash.RFM.TopMonetary {
			fmt.Fprintf(&b, "%d\\. user %d: %s \\(recency %dd\\)\n",
				i+1, row.ID, escapeMarkdownV2(report.FormatInt(row.Monetary)), row.Recency)
		}
	}

	return b.String()
}

func peakMonth(rows []models.MonthlyMean) (models.MonthlyMean, bool) {
	if len(rows) == 0 {
		return models.MonthlyMean{}, false
	}
	peak := rows[0]
	for _, row := range rows[1:] {
		if row.Mean > peak.Mean {
			peak = row
		}
	}
	return peak, true
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
