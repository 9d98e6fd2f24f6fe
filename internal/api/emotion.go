package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"sort"

	"interview-analyzer/internal/signals"
)

// --- Emotion (/detect-emotions) ---
type EmotionRequest struct {
	Image string `json:"image"` // base64 JPEG
}

type Face struct {
	Box      []int              `json:"box"` // x, y, w, h
	Emotions map[string]float64 `json:"emotions"`
}

type EmotionResponse struct {
	Faces []Face `json:"faces"`
}

// EmotionClient реализует signals.EmotionExtractor через сервис распознавания эмоций
type EmotionClient struct {
	*Client
}

var _ signals.EmotionExtractor = (*EmotionClient)(nil)

func NewEmotionClient(c *Client) *EmotionClient {
	return &EmotionClient{Client: c}
}

func (c *EmotionClient) ExtractEmotion(ctx context.Context, frame image.Image) (signals.EmotionReading, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 90}); err != nil {
		return signals.EmotionReading{}, fmt.Errorf("ошибка кодирования кадра: %w", err)
	}

	var out EmotionResponse
	req := EmotionRequest{Image: base64.StdEncoding.EncodeToString(buf.Bytes())}
	if err := c.postJSON(ctx, "/detect-emotions", req, &out); err != nil {
		return signals.EmotionReading{}, fmt.Errorf("emotion: %w", err)
	}

	if len(out.Faces) == 0 || len(out.Faces[0].Emotions) == 0 {
		return signals.EmotionReading{}, signals.ErrNoFace
	}

	face := out.Faces[0]
	label, score := dominantEmotion(face.Emotions)
	return signals.EmotionReading{
		Label:    label,
		Strength: score,
		Box:      faceBox(face.Box),
	}, nil
}

// dominantEmotion выбирает эмоцию с максимальной оценкой, при равенстве по алфавиту
func dominantEmotion(emotions map[string]float64) (string, float64) {
	labels := make([]string, 0, len(emotions))
	for l := range emotions {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	best, bestScore := labels[0], emotions[labels[0]]
	for _, l := range labels[1:] {
		if emotions[l] > bestScore {
			best, bestScore = l, emotions[l]
		}
	}
	return best, bestScore
}

func faceBox(b []int) image.Rectangle {
	if len(b) != 4 {
		return image.Rectangle{}
	}
	return image.Rect(b[0], b[1], b[0]+b[2], b[1]+b[3])
}
