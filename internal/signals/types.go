// Package signals превращает кадр и текст ответа в числовые сигналы для оценки.
package signals

import (
	"context"
	"errors"
	"image"
	"strings"
)

var (
	// ErrNoFace возвращается детектором, если на кадре нет лица
	ErrNoFace = errors.New("лицо не найдено")
	// ErrUndecodableFrame возвращается декодером для битых данных кадра
	ErrUndecodableFrame = errors.New("не удалось декодировать кадр")
)

// Метки эмоций детектора
const (
	EmotionAngry    = "angry"
	EmotionDisgust  = "disgust"
	EmotionFear     = "fear"
	EmotionHappy    = "happy"
	EmotionSad      = "sad"
	EmotionSurprise = "surprise"
	EmotionNeutral  = "neutral"
)

var emotionLabels = map[string]bool{
	EmotionAngry:    true,
	EmotionDisgust:  true,
	EmotionFear:     true,
	EmotionHappy:    true,
	EmotionSad:      true,
	EmotionSurprise: true,
	EmotionNeutral:  true,
}

// Метки тональности
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
)

// NormalizeEmotion приводит метку к словарю детектора, неизвестные метки становятся neutral
func NormalizeEmotion(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if emotionLabels[l] {
		return l
	}
	return EmotionNeutral
}

// EmotionReading представляет доминирующую эмоцию на кадре
type EmotionReading struct {
	Label    string
	Strength float64
	Box      image.Rectangle
}

// Sentiment представляет результат классификатора тональности
type Sentiment struct {
	Label string
	Score float64
}

// EmotionExtractor распознает эмоцию на кадре
type EmotionExtractor interface {
	ExtractEmotion(ctx context.Context, frame image.Image) (EmotionReading, error)
}

// SentimentClassifier определяет тональность текста
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (Sentiment, error)
}

// FrameDecoder превращает байты кадра в изображение
type FrameDecoder interface {
	Decode(data []byte) (image.Image, error)
}

// NeutralReading возвращается вместо результата детектора при любой ошибке
func NeutralReading() EmotionReading {
	return EmotionReading{Label: EmotionNeutral, Strength: 0}
}

// ExtractEmotion вызывает детектор и подставляет нейтральный результат при ошибке.
// Ошибка возвращается только для логирования, вызывающий продолжает работу.
func ExtractEmotion(ctx context.Context, ex EmotionExtractor, frame image.Image) (EmotionReading, error) {
	if ex == nil {
		return NeutralReading(), ErrNoFace
	}
	r, err := ex.ExtractEmotion(ctx, frame)
	if err != nil {
		return NeutralReading(), err
	}
	r.Label = NormalizeEmotion(r.Label)
	r.Strength = clamp01(r.Strength)
	return r, nil
}

// NoFaceExtractor используется, когда сервис эмоций не настроен
type NoFaceExtractor struct{}

func (NoFaceExtractor) ExtractEmotion(ctx context.Context, frame image.Image) (EmotionReading, error) {
	return EmotionReading{}, ErrNoFace
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
