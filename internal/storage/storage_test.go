package storage

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func completedSession(id string) *InterviewSession {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	score := 51.5
	return &InterviewSession{
		ID:          id,
		UserID:      "u1",
		Questions:   []string{"q1"},
		State:       StateCompleted,
		StartedAt:   now,
		CompletedAt: &now,
		FinalScore:  &score,
		Report:      &SummaryReport{TotalQuestions: 1, EmotionsDetected: []string{"happy"}},
		Responses:   []ResponseRecord{{Question: "q1", Answer: "a", Keywords: []string{}}},
	}
}

func TestResultArchive(t *testing.T) {
	archive := NewResultArchive(t.TempDir())

	active := completedSession("active")
	active.State = StateActive
	if err := archive.SaveResult(active); err == nil {
		t.Error("active session must not be archived")
	}

	for _, id := range []string{"b", "a"} {
		if err := archive.SaveResult(completedSession(id)); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}

	got, err := archive.LoadResult("a")
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if *got.FinalScore != 51.5 || !got.Completed() || got.Report.EmotionsDetected[0] != "happy" {
		t.Errorf("loaded = %+v", got)
	}

	ids, err := archive.ListResults()
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("ListResults = %v, want [a b]", ids)
	}

	if _, err := archive.LoadResult("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResultArchive_MissingDir(t *testing.T) {
	archive := NewResultArchive(filepath.Join(t.TempDir(), "nope"))
	ids, err := archive.ListResults()
	if err != nil || len(ids) != 0 {
		t.Errorf("ListResults = %v, %v", ids, err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := completedSession("s")
	c := orig.Clone()

	c.Questions[0] = "changed"
	c.Responses[0].Answer = "changed"
	*c.FinalScore = 0
	c.Report.EmotionsDetected[0] = "sad"

	if orig.Questions[0] != "q1" || orig.Responses[0].Answer != "a" || *orig.FinalScore != 51.5 {
		t.Errorf("clone shares memory: %+v", orig)
	}
	if orig.Report.EmotionsDetected[0] != "happy" {
		t.Error("clone shares report")
	}
}

func TestDirFrameSink(t *testing.T) {
	root := t.TempDir()
	sink := NewDirFrameSink(root)
	ctx := context.Background()

	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := 0; i < 2; i++ {
		err := sink.WriteFrame(ctx, AnnotatedFrame{
			SessionID: "s1",
			Image:     img,
			Box:       image.Rect(5, 5, 15, 15),
			Sample:    FrameSample{Emotion: "happy"},
		})
		if err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if n := sink.FrameCount("s1"); n != 2 {
		t.Errorf("FrameCount = %d, want 2", n)
	}

	f, err := os.Open(filepath.Join(root, "s1", "frame_00002.jpg"))
	if err != nil {
		t.Fatalf("open frame: %v", err)
	}
	defer f.Close()
	if _, err := jpeg.Decode(f); err != nil {
		t.Errorf("frame is not a JPEG: %v", err)
	}

	if err := sink.WriteFrame(ctx, AnnotatedFrame{SessionID: "s1"}); err == nil {
		t.Error("expected error for a frame without image")
	}

	if err := sink.Finish(ctx, "s1"); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if n := sink.FrameCount("s1"); n != 0 {
		t.Errorf("FrameCount after Finish = %d, want 0", n)
	}
}

func TestAnnotate(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	out := annotate(src, image.Rect(2, 2, 8, 8))

	r, g, b, _ := out.At(2, 2).RGBA()
	if r != 0 || g == 0 || b != 0 {
		t.Errorf("box corner = %v, want green", out.At(2, 2))
	}
	if got := out.At(5, 5); got != (color.RGBA{}) {
		t.Errorf("inside of the box changed: %v", got)
	}
	if src.At(2, 2) != (color.RGBA{}) {
		t.Error("source image must not be modified")
	}
}
