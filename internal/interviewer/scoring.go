package interviewer

import (
	"math"
	"sort"

	"interview-analyzer/internal/signals"
	"interview-analyzer/internal/storage"
)

// ScoringVersion меняется при любом изменении весов или формул ниже
const ScoringVersion = "v1"

const (
	weightConfidence = 0.30
	weightSentiment  = 0.30
	weightClarity    = 0.20
	weightWords      = 0.20

	// Без кадров уверенность считается нейтральной, а не нулевой
	neutralConfidence = 0.5
	wordSaturation    = 50.0
)

// Score представляет итоговую оценку и разбор интервью
type Score struct {
	Final  float64
	Report storage.SummaryReport
}

// Aggregate сводит все кадры и ответы сессии в итоговую оценку.
// Вызывается один раз, при переходе сессии в состояние completed.
func Aggregate(frames []storage.FrameSample, responses []storage.ResponseRecord, totalQuestions int) Score {
	avgConfidence := neutralConfidence
	if len(frames) > 0 {
		var sum float64
		for _, f := range frames {
			sum += f.Confidence
		}
		avgConfidence = sum / float64(len(frames))
	}

	var positiveRate, avgClarity, meanWords float64
	if n := float64(len(responses)); n > 0 {
		var positive, clarity, words float64
		for _, r := range responses {
			if r.Sentiment == signals.SentimentPositive {
				positive++
			}
			clarity += r.Clarity
			words += float64(r.WordCount)
		}
		positiveRate = positive / n
		avgClarity = clarity / n / 100
		meanWords = words / n
	}
	wordScore := math.Min(1.0, meanWords/wordSaturation)

	final := round2(100 * (weightConfidence*avgConfidence +
		weightSentiment*positiveRate +
		weightClarity*avgClarity +
		weightWords*wordScore))

	return Score{
		Final: final,
		Report: storage.SummaryReport{
			AvgConfidence:         round2(avgConfidence * 100),
			PositiveSentimentRate: round2(positiveRate * 100),
			AvgClarity:            round2(avgClarity * 100),
			AvgWordCount:          math.Round(meanWords),
			TotalQuestions:        totalQuestions,
			EmotionsDetected:      distinctEmotions(frames),
		},
	}
}

func distinctEmotions(frames []storage.FrameSample) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, f := range frames {
		if !seen[f.Emotion] {
			seen[f.Emotion] = true
			out = append(out, f.Emotion)
		}
	}
	sort.Strings(out)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
