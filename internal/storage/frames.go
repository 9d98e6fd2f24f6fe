package storage

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
)

// AnnotatedFrame представляет кадр вместе с результатом распознавания
type AnnotatedFrame struct {
	SessionID string
	Image     image.Image
	Box       image.Rectangle
	Sample    FrameSample
	Question  string
}

// FrameSink принимает кадры для аудита. Ошибки синка не влияют на оценку.
type FrameSink interface {
	WriteFrame(ctx context.Context, frame AnnotatedFrame) error
	Finish(ctx context.Context, sessionID string) error
}

var boxColor = color.RGBA{G: 255, A: 255}

// DirFrameSink пишет кадры в JPEG файлы <root>/<session_id>/frame_00001.jpg
type DirFrameSink struct {
	root string

	mu       sync.Mutex
	counters map[string]int
}

// NewDirFrameSink создает синк в указанной директории
func NewDirFrameSink(root string) *DirFrameSink {
	return &DirFrameSink{
		root:     root,
		counters: make(map[string]int),
	}
}

func (s *DirFrameSink) WriteFrame(ctx context.Context, frame AnnotatedFrame) error {
	if frame.Image == nil {
		return fmt.Errorf("пустой кадр для сессии %s", frame.SessionID)
	}

	s.mu.Lock()
	s.counters[frame.SessionID]++
	n := s.counters[frame.SessionID]
	s.mu.Unlock()

	dir := filepath.Join(s.root, frame.SessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("frame_%05d.jpg", n))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %w", path, err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, annotate(frame.Image, frame.Box), &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("ошибка кодирования кадра %s: %w", path, err)
	}
	return nil
}

// Finish закрывает последовательность кадров сессии
func (s *DirFrameSink) Finish(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, sessionID)
	return nil
}

// FrameCount возвращает число записанных кадров активной сессии
func (s *DirFrameSink) FrameCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[sessionID]
}

// annotate копирует кадр и обводит рамку лица
func annotate(src image.Image, box image.Rectangle) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	box = box.Intersect(bounds)
	if box.Empty() {
		return dst
	}
	const thickness = 2
	for t := 0; t < thickness; t++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			dst.Set(x, box.Min.Y+t, boxColor)
			dst.Set(x, box.Max.Y-1-t, boxColor)
		}
		for y := box.Min.Y; y < box.Max.Y; y++ {
			dst.Set(box.Min.X+t, y, boxColor)
			dst.Set(box.Max.X-1-t, y, boxColor)
		}
	}
	return dst
}
