package notify

import (
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smarttasker/internal/service"
)

// TelegramNotifier posts a digest of each generation sweep to an operations
// chat. It is optional; the service runs fine without it.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] notifier authorized on account %s", api.Self.UserName)
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

// SendRunReport posts a summary of one sweep: totals up front, then only the
// rules that produced instances or failed. All-quiet sweeps are skipped.
func (n *TelegramNotifier) SendRunReport(report *service.Report, ranAt time.Time) error {
	if report.Processed == 0 {
		return nil
	}
	created := report.TasksCreated()
	failed := report.Errors()
	if created == 0 && failed == 0 {
		return nil
	}

	var builder strings.Builder
	builder.WriteString("♻️ <b>Recurring task sweep</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", ranAt.UTC().Format("2006-01-02 15:04")))
	builder.WriteString(fmt.Sprintf("Configs processed: %d\n", report.Processed))
	builder.WriteString(fmt.Sprintf("Tasks created: %d\n", created))
	if failed > 0 {
		builder.WriteString(fmt.Sprintf("⚠️ Failures: %d\n", failed))
	}

	for _, res := range report.Results {
		switch {
		case res.Error != "":
			builder.WriteString(fmt.Sprintf("\n⚠️ <code>%s</code>: %s", res.ID, html.EscapeString(res.Error)))
		case res.TasksCreated > 0:
			builder.WriteString(fmt.Sprintf("\n✅ <code>%s</code>: %d created (total %d)", res.ID, res.TasksCreated, res.NewTotal))
		}
	}

	msg := tgbotapi.NewMessage(n.chatID, strings.TrimSpace(builder.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send run report: %w", err)
	}
	return nil
}
