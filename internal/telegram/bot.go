package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"interview-analyzer/internal/storage"
)

const apiURL = "https://api.telegram.org"

// New создает бота, который пишет в чат рекрутеров chatID
func New(token string, chatID int64) *Bot {
	return NewWithBaseURL(apiURL, token, chatID)
}

// NewWithBaseURL позволяет направить бота на другой адрес API
func NewWithBaseURL(baseURL, token string, chatID int64) *Bot {
	return &Bot{
		token:   token,
		baseURL: fmt.Sprintf("%s/bot%s", strings.TrimRight(baseURL, "/"), token),
		chatID:  chatID,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SendMessage отправляет сообщение в чат рекрутеров
func (b *Bot) SendMessage(ctx context.Context, text string) error {
	request := SendMessageRequest{
		ChatID:    b.chatID,
		Text:      text,
		ParseMode: "Markdown",
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	url := fmt.Sprintf("%s/sendMessage", b.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var response SendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	if !response.OK {
		return fmt.Errorf("Telegram API вернул ошибку при отправке сообщения: %s", response.Description)
	}

	return nil
}

// InterviewCompleted сообщает рекрутерам итог интервью
func (b *Bot) InterviewCompleted(ctx context.Context, session *storage.InterviewSession) error {
	if session.FinalScore == nil || session.Report == nil {
		return fmt.Errorf("интервью %s без итоговой оценки", session.ID)
	}
	return b.SendMessage(ctx, FormatCompletion(session))
}

// FormatCompletion готовит текст уведомления о завершенном интервью
func FormatCompletion(session *storage.InterviewSession) string {
	r := session.Report
	var sb strings.Builder
	sb.WriteString("✅ *Интервью завершено*\n\n")
	fmt.Fprintf(&sb, "• Кандидат: `%s`\n", session.UserID)
	fmt.Fprintf(&sb, "• Вакансия: `%s`\n", session.JobID)
	fmt.Fprintf(&sb, "• Отклик: `%s`\n", session.ApplicationID)
	fmt.Fprintf(&sb, "• Оценка: *%.2f*\n\n", *session.FinalScore)
	fmt.Fprintf(&sb, "📊 Уверенность: %.2f%%\n", r.AvgConfidence)
	fmt.Fprintf(&sb, "💬 Позитивных ответов: %.2f%%\n", r.PositiveSentimentRate)
	fmt.Fprintf(&sb, "🗣 Ясность: %.2f%%\n", r.AvgClarity)
	fmt.Fprintf(&sb, "📝 Слов в ответе: %.0f\n", r.AvgWordCount)
	if len(r.EmotionsDetected) > 0 {
		fmt.Fprintf(&sb, "🙂 Эмоции: %s\n", strings.Join(r.EmotionsDetected, ", "))
	}
	return sb.String()
}
