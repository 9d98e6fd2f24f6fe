package signals

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMapConfidence(t *testing.T) {
	tests := []struct {
		label    string
		strength float64
		want     float64
	}{
		{"happy", 0.8, 0.8},
		{"neutral", 0.3, 0.3},
		{"angry", 0.8, 0.2},
		{"fear", 0.9, 0.1},
		{"sad", 0, 1},
		{"HAPPY", 0.6, 0.6},
		{"contempt", 0.7, 0.7}, // неизвестная метка -> neutral
		{"surprise", 1.5, 0},   // сила обрезается до 1
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := MapConfidence(tt.label, tt.strength)
			if !almostEqual(got, tt.want) {
				t.Errorf("MapConfidence(%q, %v) = %v, want %v", tt.label, tt.strength, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("confidence %v out of [0,1]", got)
			}
		})
	}
}

func TestNormalizeEmotion(t *testing.T) {
	if got := NormalizeEmotion(" Angry "); got != EmotionAngry {
		t.Errorf("got %q, want %q", got, EmotionAngry)
	}
	if got := NormalizeEmotion("bored"); got != EmotionNeutral {
		t.Errorf("got %q, want %q", got, EmotionNeutral)
	}
}

type stubExtractor struct {
	reading EmotionReading
	err     error
}

func (s stubExtractor) ExtractEmotion(ctx context.Context, frame image.Image) (EmotionReading, error) {
	return s.reading, s.err
}

func TestExtractEmotion_Fallback(t *testing.T) {
	ctx := context.Background()

	got, err := ExtractEmotion(ctx, stubExtractor{err: errors.New("timeout")}, nil)
	if err == nil {
		t.Fatal("expected error to be reported")
	}
	if got != NeutralReading() {
		t.Errorf("got %+v, want neutral reading", got)
	}

	got, err = ExtractEmotion(ctx, NoFaceExtractor{}, nil)
	if !errors.Is(err, ErrNoFace) {
		t.Errorf("err = %v, want ErrNoFace", err)
	}
	if got.Label != EmotionNeutral || got.Strength != 0 {
		t.Errorf("got %+v, want neutral/0", got)
	}
}

func TestExtractEmotion_Normalizes(t *testing.T) {
	ex := stubExtractor{reading: EmotionReading{Label: "Happy", Strength: 1.2}}
	got, err := ExtractEmotion(context.Background(), ex, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Label != EmotionHappy || got.Strength != 1 {
		t.Errorf("got %+v, want happy/1", got)
	}
}

func TestClarity(t *testing.T) {
	tests := []struct {
		words int
		want  float64
	}{
		{0, 0},
		{4, 2},
		{50, 25},
		{200, 100},
		{500, 100},
	}
	for _, tt := range tests {
		if got := Clarity(tt.words); got != tt.want {
			t.Errorf("Clarity(%d) = %v, want %v", tt.words, got, tt.want)
		}
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "first five in order",
			text: "wonderful teamwork delivered results quickly yesterday",
			want: []string{"wonderful", "teamwork", "delivered", "results", "quickly"},
		},
		{
			name: "punctuation counts toward length",
			text: "hello, hello world!",
			want: []string{"hello,", "world!"},
		},
		{
			name: "distinct raw tokens",
			text: "backend backend Backend",
			want: []string{"backend", "Backend"},
		},
		{
			name: "short words only",
			text: "a short reply",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Keywords(strings.Fields(tt.text)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLexicon(t *testing.T) {
	lex := NewLexicon()

	tests := []struct {
		name      string
		text      string
		polarity  float64
		label     string
		wantScore float64
	}{
		{"positive", "I am excellent and great.", 1, SentimentPositive, 1},
		{"negative", "The project failed", -1, SentimentNegative, 1},
		{"negation", "it was not good", -1, SentimentNegative, 1},
		{"mixed", "good but bad", -0.1 / 1.1, SentimentNegative, 0.5 + 0.1/2.2},
		{"unknown", "hello world", 0, SentimentPositive, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lex.Polarity(tt.text); !almostEqual(got, tt.polarity) {
				t.Errorf("Polarity() = %v, want %v", got, tt.polarity)
			}
			s := lex.Sentiment(tt.text)
			if s.Label != tt.label {
				t.Errorf("label = %s, want %s", s.Label, tt.label)
			}
			if !almostEqual(s.Score, tt.wantScore) {
				t.Errorf("score = %v, want %v", s.Score, tt.wantScore)
			}
		})
	}
}

type stubClassifier struct {
	sentiment Sentiment
	err       error
}

func (s stubClassifier) Classify(ctx context.Context, text string) (Sentiment, error) {
	return s.sentiment, s.err
}

func TestTextAnalyzer_Analyze(t *testing.T) {
	a := NewTextAnalyzer(stubClassifier{sentiment: Sentiment{Label: "positive", Score: 0.9}}, nil)

	got, err := a.Analyze(context.Background(), "I love building APIs")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", got.WordCount)
	}
	if got.Clarity != 2 {
		t.Errorf("Clarity = %v, want 2", got.Clarity)
	}
	if got.SentimentLabel != SentimentPositive || got.SentimentScore != 0.9 {
		t.Errorf("sentiment = %s/%v, want POSITIVE/0.9", got.SentimentLabel, got.SentimentScore)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"building"}) {
		t.Errorf("Keywords = %v", got.Keywords)
	}
	if got.Polarity != 1 {
		t.Errorf("Polarity = %v, want 1", got.Polarity)
	}
}

func TestTextAnalyzer_EmptyText(t *testing.T) {
	a := NewTextAnalyzer(nil, nil)
	if _, err := a.Analyze(context.Background(), "   \n"); !errors.Is(err, ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestTextAnalyzer_ClassifierFailureFallsBackToLexicon(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := NewTextAnalyzer(stubClassifier{err: errors.New("connection refused")}, logger)

	got, err := a.Analyze(context.Background(), "it was a terrible week")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.SentimentLabel != SentimentNegative {
		t.Errorf("label = %s, want NEGATIVE", got.SentimentLabel)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %+v", entry)
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestImageDecoder(t *testing.T) {
	d := ImageDecoder{}

	img, err := d.Decode(encodePNG(t, 4, 3))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("bounds = %v, want 4x3", b)
	}

	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not an image"),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := d.Decode(data); !errors.Is(err, ErrUndecodableFrame) {
				t.Errorf("err = %v, want ErrUndecodableFrame", err)
			}
		})
	}
}
