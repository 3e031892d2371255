package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "mine-guard/internal/application"
	"mine-guard/internal/container"
	"mine-guard/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я слежу за опасностями в горной выработке.

📸 Включите наблюдение и присылайте кадры с камеры, я отмечу трещины, неустойчивую породу, повреждения крепи и утечки газа.

📋 Команды:
/watch — начать наблюдение
/stop — остановить наблюдение
/status — текущий уровень риска
/emergency — аварийная остановка
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /watch
2️⃣ Присылайте кадры с камеры
3️⃣ В ответ придёт кадр с рамками и сводка по рискам

💡 Рекомендации:
• Избегайте засветки фонарём
• Держите камеру неподвижно
• Кадр должен быть чётким

📋 Команды:
/watch — начать наблюдение
/stop — остановить наблюдение
/status — текущий уровень риска
/emergency — аварийная остановка
/cancel — отменить текущую операцию`

	msgWatching        = "👁 Наблюдение включено. Присылайте кадры."
	msgStopped         = "⏹ Наблюдение остановлено."
	msgEmergency       = "🚨 АВАРИЙНАЯ ОСТАНОВКА. Наблюдение выключено."
	msgCancelled       = "❌ Операция отменена. Отправьте /watch, чтобы продолжить."
	msgNotWatching     = "📸 Сначала включите наблюдение командой /watch."
	msgSendPhoto       = "📸 Пожалуйста, отправьте кадр с камеры."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Анализирую кадр..."
	msgBadFrame        = "⚠️ Не удалось прочитать изображение. Пришлите другой кадр."
	msgProcessingError = "⚠️ Не удалось обработать кадр. Попробуйте ещё раз."
)

// Telegram ограничивает подпись к фото
const maxCaptionRunes = 1024

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	container  *container.Container
	httpClient *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:        api,
		container:  c,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	op, err := b.container.OperatorService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting operator: %v", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, op)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, op)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, op *entity.Operator) {
	operators := b.container.OperatorService
	monitoring := b.container.MonitoringService

	switch msg.Command() {
	case "start":
		b.setState(ctx, op, entity.StateIdle)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "watch":
		if _, err := operators.BeginMonitoring(ctx, op.ID, op.ChatID); err != nil {
			log.Printf("Error saving operator: %v", err)
		}
		monitoring.Start()
		b.sendMessage(msg.Chat.ID, msgWatching)

	case "stop":
		b.setState(ctx, op, entity.StateIdle)
		monitoring.Stop()
		b.sendMessage(msg.Chat.ID, msgStopped)

	case "status":
		b.sendMessage(msg.Chat.ID, statusText(monitoring.Status(ctx)))

	case "emergency":
		b.setState(ctx, op, entity.StateIdle)
		monitoring.EmergencyStop()
		b.sendMessage(msg.Chat.ID, msgEmergency)

	case "cancel":
		if _, err := operators.Cancel(ctx, op.ID, op.ChatID); err != nil {
			log.Printf("Error saving operator: %v", err)
		}
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handlePhoto прогоняет кадр через конвейер и отвечает размеченным фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, op *entity.Operator) {
	if !op.Monitoring() {
		b.sendMessage(msg.Chat.ID, msgNotWatching)
		return
	}

	b.setState(ctx, op, entity.StateProcessing)
	defer b.setState(ctx, op, entity.StateMonitoring)

	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Берём файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	out, err := b.container.MonitoringService.ProcessFrame(ctx, "telegram", imageData)
	if err != nil {
		log.Printf("Error processing frame: %v", err)
		if entity.IsDecodeError(err) {
			b.sendMessage(msg.Chat.ID, msgBadFrame)
		} else {
			b.sendMessage(msg.Chat.ID, msgProcessingError)
		}
		return
	}

	summary, err := b.container.MonitoringService.Describe(ctx, out.Analysis)
	caption := ""
	if err != nil {
		log.Printf("Error describing frame: %v", err)
	} else {
		caption = summary.Text
	}

	reply := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "hazards.jpg", Bytes: out.Analysis.AnnotatedImage})
	reply.Caption = truncateCaption(caption)
	if _, err := b.api.Send(reply); err != nil {
		log.Printf("Error sending photo: %v", err)
	}
}

func (b *Bot) setState(ctx context.Context, op *entity.Operator, state entity.OperatorState) {
	if _, err := b.container.OperatorService.SetState(ctx, op.ID, op.ChatID, state); err != nil {
		log.Printf("Error saving operator: %v", err)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func statusText(st app.Status) string {
	var sb strings.Builder
	if st.Active {
		sb.WriteString("👁 Наблюдение включено.")
	} else {
		sb.WriteString("⏹ Наблюдение выключено.")
	}

	if st.ProcessedAt.IsZero() {
		sb.WriteString("\nКадров ещё не было.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\nПоследний кадр: %s", st.ProcessedAt.Format("15:04:05"))
	fmt.Fprintf(&sb, "\nРиск: %s, опасностей: %d", riskBadge(st.RiskLevel), len(st.Results))
	return sb.String()
}

func riskBadge(r entity.RiskLevel) string {
	switch r {
	case entity.RiskCritical:
		return "🔴 critical"
	case entity.RiskHigh:
		return "🟠 high"
	case entity.RiskMedium:
		return "🟡 medium"
	default:
		return "🟢 low"
	}
}

func truncateCaption(s string) string {
	r := []rune(s)
	if len(r) <= maxCaptionRunes {
		return s
	}
	return string(r[:maxCaptionRunes-1]) + "…"
}
