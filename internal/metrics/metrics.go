package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                  sync.RWMutex
	InterviewsStarted   int64
	InterviewsCompleted int64
	FramesProcessed     int64
	FramesRejected      int64
	ExtractionFallbacks int64
	AnswersSubmitted    int64
	LedgerAppends       int64
	LedgerFailures      int64
	LastUpdateTime      time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.update(func() { m.InterviewsStarted++ })
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.update(func() { m.InterviewsCompleted++ })
}

func (m *Metrics) IncrementFrame(accepted bool) {
	m.update(func() {
		if accepted {
			m.FramesProcessed++
		} else {
			m.FramesRejected++
		}
	})
}

func (m *Metrics) IncrementExtractionFallbacks() {
	m.update(func() { m.ExtractionFallbacks++ })
}

func (m *Metrics) IncrementAnswersSubmitted() {
	m.update(func() { m.AnswersSubmitted++ })
}

func (m *Metrics) IncrementLedgerAppend(success bool) {
	m.update(func() {
		if success {
			m.LedgerAppends++
		} else {
			m.LedgerFailures++
		}
	})
}

func (m *Metrics) update(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
	m.LastUpdateTime = time.Now()
}

// Snapshot возвращает согласованную копию счетчиков
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		InterviewsStarted:   m.InterviewsStarted,
		InterviewsCompleted: m.InterviewsCompleted,
		FramesProcessed:     m.FramesProcessed,
		FramesRejected:      m.FramesRejected,
		ExtractionFallbacks: m.ExtractionFallbacks,
		AnswersSubmitted:    m.AnswersSubmitted,
		LedgerAppends:       m.LedgerAppends,
		LedgerFailures:      m.LedgerFailures,
		LastUpdateTime:      m.LastUpdateTime,
	}
}

type Snapshot struct {
	InterviewsStarted   int64     `json:"interviews_started"`
	InterviewsCompleted int64     `json:"interviews_completed"`
	FramesProcessed     int64     `json:"frames_processed"`
	FramesRejected      int64     `json:"frames_rejected"`
	ExtractionFallbacks int64     `json:"extraction_fallbacks"`
	AnswersSubmitted    int64     `json:"answers_submitted"`
	LedgerAppends       int64     `json:"ledger_appends"`
	LedgerFailures      int64     `json:"ledger_failures"`
	LastUpdateTime      time.Time `json:"last_update_time"`
}
