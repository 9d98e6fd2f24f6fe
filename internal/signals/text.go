package signals

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// ErrEmptyText возвращается для пустого ответа
var ErrEmptyText = errors.New("пустой текст ответа")

const (
	maxKeywords      = 5
	minKeywordLength = 6
	maxClarity       = 100.0
)

// TextSignal представляет сигналы, извлечённые из текста ответа
type TextSignal struct {
	SentimentLabel string
	SentimentScore float64
	WordCount      int
	Clarity        float64
	Polarity       float64
	Keywords       []string
}

// TextAnalyzer извлекает сигналы из ответа. Если внешний классификатор
// недоступен, тональность берется из локального словаря.
type TextAnalyzer struct {
	classifier SentimentClassifier
	lexicon    *Lexicon
	logger     logrus.FieldLogger
}

// NewTextAnalyzer создает анализатор. classifier может быть nil.
func NewTextAnalyzer(classifier SentimentClassifier, logger logrus.FieldLogger) *TextAnalyzer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TextAnalyzer{
		classifier: classifier,
		lexicon:    NewLexicon(),
		logger:     logger,
	}
}

// Analyze возвращает сигналы для любого непустого текста
func (a *TextAnalyzer) Analyze(ctx context.Context, answer string) (TextSignal, error) {
	text := strings.TrimSpace(answer)
	if text == "" {
		return TextSignal{}, ErrEmptyText
	}

	words := strings.Fields(text)
	signal := TextSignal{
		WordCount: len(words),
		Clarity:   Clarity(len(words)),
		Polarity:  a.lexicon.Polarity(text),
		Keywords:  Keywords(words),
	}

	sentiment, err := a.classify(ctx, text)
	if err != nil {
		a.logger.WithError(err).Warn("классификатор тональности недоступен, используем словарь")
		sentiment = a.lexicon.Sentiment(text)
	}
	signal.SentimentLabel = strings.ToUpper(sentiment.Label)
	signal.SentimentScore = clamp01(sentiment.Score)

	return signal, nil
}

func (a *TextAnalyzer) classify(ctx context.Context, text string) (Sentiment, error) {
	if a.classifier == nil {
		return a.lexicon.Sentiment(text), nil
	}
	return a.classifier.Classify(ctx, text)
}

// Clarity возвращает min(100, wordCount/2)
func Clarity(wordCount int) float64 {
	return math.Min(maxClarity, float64(wordCount)/2)
}

// Keywords возвращает до пяти различных слов длиннее пяти символов в порядке появления.
// Длина считается по токену как есть, вместе с пунктуацией.
func Keywords(words []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, w := range words {
		if utf8.RuneCountInString(w) < minKeywordLength || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
