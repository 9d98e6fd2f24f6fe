package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"interview-analyzer/internal/signals"
)

func TestEmotionClient_ExtractEmotion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect-emotions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req EmotionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if _, err := base64.StdEncoding.DecodeString(req.Image); err != nil || req.Image == "" {
			t.Errorf("image is not base64: %v", err)
		}
		_ = json.NewEncoder(w).Encode(EmotionResponse{Faces: []Face{{
			Box:      []int{10, 20, 30, 40},
			Emotions: map[string]float64{"happy": 0.7, "neutral": 0.2, "sad": 0.1},
		}}})
	}))
	defer srv.Close()

	c := NewEmotionClient(NewClient(srv.URL+"/", time.Second))
	got, err := c.ExtractEmotion(context.Background(), image.NewRGBA(image.Rect(0, 0, 16, 16)))
	if err != nil {
		t.Fatalf("ExtractEmotion: %v", err)
	}
	if got.Label != "happy" || got.Strength != 0.7 {
		t.Errorf("got %+v, want happy/0.7", got)
	}
	if got.Box != image.Rect(10, 20, 40, 60) {
		t.Errorf("Box = %v", got.Box)
	}
}

func TestEmotionClient_NoFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"faces": []}`))
	}))
	defer srv.Close()

	c := NewEmotionClient(NewClient(srv.URL, time.Second))
	_, err := c.ExtractEmotion(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if !errors.Is(err, signals.ErrNoFace) {
		t.Errorf("err = %v, want ErrNoFace", err)
	}
}

func TestEmotionClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewEmotionClient(NewClient(srv.URL, time.Second))
	_, err := c.ExtractEmotion(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err == nil || errors.Is(err, signals.ErrNoFace) {
		t.Errorf("err = %v, want transport error", err)
	}
}

func TestDominantEmotion_TieBreaksAlphabetically(t *testing.T) {
	label, score := dominantEmotion(map[string]float64{"surprise": 0.4, "fear": 0.4, "sad": 0.2})
	if label != "fear" || score != 0.4 {
		t.Errorf("got %s/%v, want fear/0.4", label, score)
	}
}

func TestSentimentClient_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SentimentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "I loved it" {
			t.Errorf("text = %q", req.Text)
		}
		_, _ = w.Write([]byte(`[{"label": "POSITIVE", "score": 0.98}]`))
	}))
	defer srv.Close()

	c := NewSentimentClient(NewClient(srv.URL, time.Second))
	got, err := c.Classify(context.Background(), "I loved it")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Label != signals.SentimentPositive || got.Score != 0.98 {
		t.Errorf("got %+v", got)
	}
}

func TestSentimentClient_EmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewSentimentClient(NewClient(srv.URL, time.Second))
	if _, err := c.Classify(context.Background(), "text"); err == nil {
		t.Error("expected error for an empty reply")
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewSentimentClient(NewClient(srv.URL, 20*time.Millisecond))
	if _, err := c.Classify(context.Background(), "text"); err == nil {
		t.Error("expected timeout error")
	}
}
