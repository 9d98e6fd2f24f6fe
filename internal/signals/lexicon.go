package signals

import (
	"context"
	"math"
	"strings"
	"unicode"
)

type weightedWord struct {
	word   string
	weight float64
}

// Lexicon оценивает тональность по взвешенным словам
type Lexicon struct {
	weights   map[string]float64
	negations map[string]bool
}

// NewLexicon создает словарь со встроенными английскими словами
func NewLexicon() *Lexicon {
	l := &Lexicon{
		weights: make(map[string]float64),
		negations: map[string]bool{
			"not": true, "no": true, "never": true, "don't": true, "didn't": true,
			"can't": true, "cannot": true, "isn't": true, "wasn't": true, "won't": true,
		},
	}
	for _, w := range defaultPositiveWords() {
		l.weights[w.word] = w.weight
	}
	for _, w := range defaultNegativeWords() {
		l.weights[w.word] = -w.weight
	}
	return l
}

func defaultPositiveWords() []weightedWord {
	return []weightedWord{
		{"excellent", 1.0}, {"great", 0.8}, {"love", 0.8}, {"passionate", 0.8},
		{"excited", 0.7}, {"successful", 0.7}, {"success", 0.6}, {"achieved", 0.6},
		{"good", 0.5}, {"enjoy", 0.5}, {"enjoyed", 0.5}, {"happy", 0.6},
		{"confident", 0.6}, {"improved", 0.5}, {"learned", 0.4}, {"team", 0.2},
		{"led", 0.3}, {"solved", 0.5}, {"delivered", 0.4}, {"proud", 0.6},
		{"strong", 0.4}, {"effective", 0.4}, {"motivated", 0.5}, {"growth", 0.3},
	}
}

func defaultNegativeWords() []weightedWord {
	return []weightedWord{
		{"terrible", 1.0}, {"awful", 1.0}, {"hate", 0.9}, {"failed", 0.7},
		{"failure", 0.7}, {"bad", 0.6}, {"difficult", 0.4}, {"problem", 0.3},
		{"stressed", 0.6}, {"nervous", 0.5}, {"conflict", 0.4}, {"boring", 0.5},
		{"quit", 0.5}, {"fired", 0.8}, {"weak", 0.4}, {"unfortunately", 0.4},
		{"worst", 0.9}, {"angry", 0.7}, {"frustrated", 0.6}, {"mistake", 0.4},
	}
}

// Polarity возвращает тональность текста в [-1,1]. Отрицание перед словом меняет знак.
func (l *Lexicon) Polarity(text string) float64 {
	var sum, total float64
	negate := false
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		w := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r) && r != '\''
		})
		if l.negations[w] {
			negate = true
			continue
		}
		weight, ok := l.weights[w]
		if !ok {
			continue
		}
		if negate {
			weight = -weight
			negate = false
		}
		sum += weight
		total += math.Abs(weight)
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// Sentiment переводит полярность в бинарную метку. Нулевая полярность считается POSITIVE.
func (l *Lexicon) Sentiment(text string) Sentiment {
	p := l.Polarity(text)
	label := SentimentPositive
	if p < 0 {
		label = SentimentNegative
	}
	return Sentiment{Label: label, Score: 0.5 + math.Abs(p)/2}
}

// Classify позволяет использовать словарь как SentimentClassifier
func (l *Lexicon) Classify(ctx context.Context, text string) (Sentiment, error) {
	return l.Sentiment(text), nil
}
