package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается репозиториями, когда запись отсутствует
var ErrNotFound = errors.New("запись не найдена")

// SessionState представляет состояние сессии интервью
type SessionState string

const (
	StateActive    SessionState = "active"
	StateCompleted SessionState = "completed"
)

// InterviewSession представляет одну сессию интервью кандидата
type InterviewSession struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	JobID         string           `json:"job_id"`
	ApplicationID string           `json:"application_id"`
	Questions     []string         `json:"questions"`
	CurrentIndex  int              `json:"current_question"`
	Frames        []FrameSample    `json:"emotions"`
	Responses     []ResponseRecord `json:"responses"`
	State         SessionState     `json:"state"`
	StartedAt     time.Time        `json:"started_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	FinalScore    *float64         `json:"final_score,omitempty"`
	Report        *SummaryReport   `json:"detailed_analysis,omitempty"`
}

// Completed сообщает, завершена ли сессия
func (s *InterviewSession) Completed() bool {
	return s.State == StateCompleted
}

// Clone возвращает независимую копию сессии. Сервис мутирует только копии и
// фиксирует их в репозитории целиком.
func (s *InterviewSession) Clone() *InterviewSession {
	c := *s
	c.Questions = append([]string(nil), s.Questions...)
	c.Frames = append([]FrameSample(nil), s.Frames...)
	c.Responses = make([]ResponseRecord, len(s.Responses))
	for i, r := range s.Responses {
		r.Keywords = append([]string(nil), r.Keywords...)
		c.Responses[i] = r
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	if s.FinalScore != nil {
		f := *s.FinalScore
		c.FinalScore = &f
	}
	if s.Report != nil {
		r := *s.Report
		r.EmotionsDetected = append([]string(nil), s.Report.EmotionsDetected...)
		c.Report = &r
	}
	return &c
}

// FrameSample представляет одно наблюдение эмоции по кадру видео
type FrameSample struct {
	Emotion       string  `json:"emotion"`
	Strength      float64 `json:"score"`
	Confidence    float64 `json:"confidence"`
	QuestionIndex int     `json:"question_index"`
}

// ResponseRecord представляет ответ кандидата и извлечённые из него сигналы
type ResponseRecord struct {
	Question       string   `json:"question"`
	Answer         string   `json:"answer"`
	Sentiment      string   `json:"sentiment"`
	SentimentScore float64  `json:"sentiment_score"`
	WordCount      int      `json:"word_count"`
	Clarity        float64  `json:"clarity"`
	Polarity       float64  `json:"polarity"`
	Keywords       []string `json:"keywords"`
}

// SummaryReport представляет итоговый разбор интервью
type SummaryReport struct {
	AvgConfidence         float64  `json:"avg_confidence"`
	PositiveSentimentRate float64  `json:"positive_sentiment_rate"`
	AvgClarity            float64  `json:"avg_clarity"`
	AvgWordCount          float64  `json:"avg_word_count"`
	TotalQuestions        int      `json:"total_questions"`
	EmotionsDetected      []string `json:"emotions_detected"`
}

// ApplicationStatus представляет статус отклика на вакансию
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationCompleted   ApplicationStatus = "completed"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
)

// Job представляет вакансию с набором вопросов интервью
type Job struct {
	ID                 string   `json:"id"`
	Position           string   `json:"position"`
	Company            string   `json:"company"`
	Category           string   `json:"category"`
	RecruiterID        string   `json:"recruiter_id"`
	InterviewQuestions []string `json:"interview_questions"`
	MinInterviewScore  float64  `json:"min_interview_score"`
}

// Application представляет отклик кандидата на вакансию
type Application struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"user_id"`
	JobID              string            `json:"job_id"`
	Status             ApplicationStatus `json:"status"`
	AppliedAt          time.Time         `json:"applied_at"`
	InterviewCompleted bool              `json:"interview_completed"`
	InterviewScore     float64           `json:"interview_score"`
}

// SessionRepository хранит сессии интервью. Get возвращает копию, поэтому
// изменения видны другим только после Save.
type SessionRepository interface {
	Create(ctx context.Context, session *InterviewSession) error
	Get(ctx context.Context, id string) (*InterviewSession, error)
	Save(ctx context.Context, session *InterviewSession) error
	ListByUser(ctx context.Context, userID string) ([]*InterviewSession, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*InterviewSession, error)
}

// Directory предоставляет вакансии и отклики. Хук MarkInterviewCompleted
// вызывается ровно один раз при завершении интервью.
type Directory interface {
	Job(ctx context.Context, id string) (*Job, error)
	Application(ctx context.Context, id string) (*Application, error)
	ListJobs(ctx context.Context) ([]*Job, error)
	ListApplications(ctx context.Context) ([]*Application, error)
	AddJob(ctx context.Context, job *Job) error
	AddApplication(ctx context.Context, app *Application) error
	MarkInterviewCompleted(ctx context.Context, applicationID string, score float64) error
	Shortlist(ctx context.Context, applicationID string) error
}
