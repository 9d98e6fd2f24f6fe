package api

import (
	"context"
	"fmt"

	"interview-analyzer/internal/signals"
)

// --- Sentiment (/sentiment) ---
type SentimentRequest struct {
	Text string `json:"text"`
}

type SentimentScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentClient реализует signals.SentimentClassifier через сервис тональности
type SentimentClient struct {
	*Client
}

var _ signals.SentimentClassifier = (*SentimentClient)(nil)

func NewSentimentClient(c *Client) *SentimentClient {
	return &SentimentClient{Client: c}
}

func (c *SentimentClient) Classify(ctx context.Context, text string) (signals.Sentiment, error) {
	var out []SentimentScore
	if err := c.postJSON(ctx, "/sentiment", SentimentRequest{Text: text}, &out); err != nil {
		return signals.Sentiment{}, fmt.Errorf("sentiment: %w", err)
	}
	if len(out) == 0 {
		return signals.Sentiment{}, fmt.Errorf("sentiment: пустой ответ сервиса")
	}
	return signals.Sentiment{Label: out[0].Label, Score: out[0].Score}, nil
}
