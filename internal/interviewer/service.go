package interviewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"interview-analyzer/internal/ledger"
	"interview-analyzer/internal/metrics"
	"interview-analyzer/internal/signals"
	"interview-analyzer/internal/storage"
)

// EventLog принимает доменные события. *ledger.Ledger реализует этот интерфейс.
type EventLog interface {
	Append(ctx context.Context, action ledger.Action, actorID string, payload ledger.Payload) (ledger.Block, error)
}

// Notifier сообщает рекрутерам о завершенных интервью
type Notifier interface {
	InterviewCompleted(ctx context.Context, session *storage.InterviewSession) error
}

// Dependencies содержит зависимости сервиса. Sink, Archive, Notifier и Metrics необязательны.
type Dependencies struct {
	Sessions  storage.SessionRepository
	Directory storage.Directory
	Ledger    EventLog
	Decoder   signals.FrameDecoder
	Emotions  signals.EmotionExtractor
	Text      *signals.TextAnalyzer
	Sink      storage.FrameSink
	Archive   *storage.ResultArchive
	Notifier  Notifier
	Metrics   *metrics.Metrics
	Logger    logrus.FieldLogger
	Now       func() time.Time
	NewID     func() string
}

// Service представляет машину состояний сессий интервью
type Service struct {
	sessions  storage.SessionRepository
	directory storage.Directory
	ledger    EventLog
	decoder   signals.FrameDecoder
	emotions  signals.EmotionExtractor
	text      *signals.TextAnalyzer
	sink      storage.FrameSink
	archive   *storage.ResultArchive
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string

	// session id -> *sync.Mutex
	locks sync.Map
}

// New создает сервис интервьюера
func New(deps Dependencies) (*Service, error) {
	if deps.Sessions == nil || deps.Directory == nil || deps.Ledger == nil {
		return nil, fmt.Errorf("интервьюеру нужны хранилище сессий, справочник и журнал")
	}
	if deps.Decoder == nil {
		deps.Decoder = signals.ImageDecoder{}
	}
	if deps.Emotions == nil {
		deps.Emotions = signals.NoFaceExtractor{}
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Text == nil {
		deps.Text = signals.NewTextAnalyzer(nil, deps.Logger)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewMetrics()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = func() string { return uuid.New().String() }
	}

	return &Service{
		sessions:  deps.Sessions,
		directory: deps.Directory,
		ledger:    deps.Ledger,
		decoder:   deps.Decoder,
		emotions:  deps.Emotions,
		text:      deps.Text,
		sink:      deps.Sink,
		archive:   deps.Archive,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		tracer:    otel.Tracer("interview-analyzer/interviewer"),
		now:       deps.Now,
		newID:     deps.NewID,
	}, nil
}

// StartRequest содержит параметры новой сессии
type StartRequest struct {
	UserID        string
	JobID         string
	ApplicationID string
	Questions     []string
}

// StartSession создает активную сессию с курсором на первом вопросе
func (s *Service) StartSession(ctx context.Context, req StartRequest) (*storage.InterviewSession, error) {
	if len(req.Questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	app, err := s.directory.Application(ctx, req.ApplicationID)
	if err != nil {
		return nil, lookupError(err, ErrApplicationNotFound)
	}
	if app.UserID != req.UserID {
		return nil, ErrUnauthorized
	}
	if app.InterviewCompleted {
		return nil, ErrInvalidApplicationState
	}

	session := &storage.InterviewSession{
		ID:            s.newID(),
		UserID:        req.UserID,
		JobID:         req.JobID,
		ApplicationID: req.ApplicationID,
		Questions:     append([]string(nil), req.Questions...),
		CurrentIndex:  0,
		Frames:        []storage.FrameSample{},
		Responses:     []storage.ResponseRecord{},
		State:         storage.StateActive,
		StartedAt:     s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("ошибка создания сессии: %w", err)
	}

	s.metrics.IncrementInterviewsStarted()
	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"job_id":     session.JobID,
		"questions":  len(session.Questions),
	}).Info("интервью начато")

	return session, nil
}

// StartResult представляет ответ на старт интервью по отклику
type StartResult struct {
	SessionID      string `json:"session_id"`
	Question       string `json:"question"`
	TotalQuestions int    `json:"total_questions"`
}

// StartForApplication находит вакансию отклика и начинает интервью по её вопросам
func (s *Service) StartForApplication(ctx context.Context, userID, applicationID string) (*StartResult, error) {
	app, err := s.directory.Application(ctx, applicationID)
	if err != nil {
		return nil, lookupError(err, ErrApplicationNotFound)
	}
	if app.UserID != userID {
		return nil, ErrUnauthorized
	}
	if app.InterviewCompleted {
		return nil, ErrInvalidApplicationState
	}

	job, err := s.directory.Job(ctx, app.JobID)
	if err != nil {
		return nil, lookupError(err, ErrJobNotFound)
	}

	session, err := s.StartSession(ctx, StartRequest{
		UserID:        userID,
		JobID:         job.ID,
		ApplicationID: app.ID,
		Questions:     job.InterviewQuestions,
	})
	if err != nil {
		return nil, err
	}

	return &StartResult{
		SessionID:      session.ID,
		Question:       session.Questions[0],
		TotalQuestions: len(session.Questions),
	}, nil
}

// FrameResult представляет обработанный кадр для отображения
type FrameResult struct {
	Emotion       string  `json:"emotion"`
	Strength      float64 `json:"score"`
	Confidence    float64 `json:"confidence"`
	QuestionIndex int     `json:"question_index"`
}

// SubmitFrame распознает эмоцию на кадре и добавляет образец к текущему вопросу.
// Сбой детектора не является ошибкой: подставляется neutral с силой 0.
func (s *Service) SubmitFrame(ctx context.Context, sessionID, callerID string, raw []byte) (*FrameResult, error) {
	ctx, span := s.tracer.Start(ctx, "interviewer.SubmitFrame",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	if _, err := s.authorized(ctx, sessionID, callerID); err != nil {
		return nil, err
	}

	img, err := s.decoder.Decode(raw)
	if err != nil {
		s.metrics.IncrementFrame(false)
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrameData, err)
	}

	// Распознавание идет без блокировки сессии
	reading, err := signals.ExtractEmotion(ctx, s.emotions, img)
	if err != nil {
		s.metrics.IncrementExtractionFallbacks()
		entry := s.logger.WithField("session_id", sessionID).WithError(err)
		if errors.Is(err, signals.ErrNoFace) {
			entry.Debug("лицо не найдено, используем neutral")
		} else {
			entry.Warn("детектор эмоций недоступен, используем neutral")
		}
	}
	sample := storage.FrameSample{
		Emotion:    reading.Label,
		Strength:   reading.Strength,
		Confidence: signals.MapConfidence(reading.Label, reading.Strength),
	}

	mu := s.lock(sessionID)
	mu.Lock()
	session, err := s.authorized(ctx, sessionID, callerID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	sample.QuestionIndex = session.CurrentIndex
	session.Frames = append(session.Frames, sample)
	err = s.sessions.Save(ctx, session)
	mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения кадра: %w", err)
	}

	s.metrics.IncrementFrame(true)
	span.SetAttributes(attribute.String("emotion", sample.Emotion), attribute.Int("question.index", sample.QuestionIndex))

	if s.sink != nil {
		frame := storage.AnnotatedFrame{
			SessionID: sessionID,
			Image:     img,
			Box:       reading.Box,
			Sample:    sample,
			Question:  session.Questions[min(sample.QuestionIndex, len(session.Questions)-1)],
		}
		if err := s.sink.WriteFrame(ctx, frame); err != nil {
			s.logger.WithField("session_id", sessionID).WithError(err).Warn("ошибка записи кадра")
		}
	}

	return &FrameResult{
		Emotion:       sample.Emotion,
		Strength:      sample.Strength,
		Confidence:    sample.Confidence,
		QuestionIndex: sample.QuestionIndex,
	}, nil
}

// AnswerResult представляет результат ответа: следующий вопрос либо итог интервью
type AnswerResult struct {
	Completed      bool                   `json:"completed"`
	NextQuestion   string                 `json:"next_question,omitempty"`
	NextIndex      int                    `json:"question_index"`
	TotalQuestions int                    `json:"total_questions"`
	FinalScore     float64                `json:"score,omitempty"`
	Report         *storage.SummaryReport `json:"analysis,omitempty"`
}

// SubmitAnswer добавляет ответ на текущий вопрос и сдвигает курсор.
// После последнего вопроса сессия завершается: оценка, переход состояния и
// событие interview-completed фиксируются вместе или не фиксируются вовсе.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, callerID, answer string) (*AnswerResult, error) {
	ctx, span := s.tracer.Start(ctx, "interviewer.SubmitAnswer",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	if _, err := s.authorized(ctx, sessionID, callerID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(answer)
	if text == "" {
		return nil, ErrEmptyAnswer
	}

	// Анализ текста идет без блокировки сессии
	signal, err := s.text.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("ошибка анализа ответа: %w", err)
	}

	mu := s.lock(sessionID)
	mu.Lock()
	session, err := s.authorized(ctx, sessionID, callerID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}

	session.Responses = append(session.Responses, storage.ResponseRecord{
		Question:       session.Questions[session.CurrentIndex],
		Answer:         text,
		Sentiment:      signal.SentimentLabel,
		SentimentScore: signal.SentimentScore,
		WordCount:      signal.WordCount,
		Clarity:        signal.Clarity,
		Polarity:       signal.Polarity,
		Keywords:       signal.Keywords,
	})
	session.CurrentIndex++

	total := len(session.Questions)
	if session.CurrentIndex < total {
		err = s.sessions.Save(ctx, session)
		mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("ошибка сохранения ответа: %w", err)
		}
		s.metrics.IncrementAnswersSubmitted()
		return &AnswerResult{
			Completed:      false,
			NextQuestion:   session.Questions[session.CurrentIndex],
			NextIndex:      session.CurrentIndex,
			TotalQuestions: total,
		}, nil
	}

	err = s.complete(ctx, session)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementAnswersSubmitted()
	s.afterCompletion(ctx, session)
	span.SetAttributes(attribute.Float64("interview.score", *session.FinalScore))

	return &AnswerResult{
		Completed:      true,
		NextIndex:      session.CurrentIndex,
		TotalQuestions: total,
		FinalScore:     *session.FinalScore,
		Report:         session.Report,
	}, nil
}

// complete считает оценку, пишет событие в журнал и только потом сохраняет сессию.
// Вызывается под блокировкой сессии.
func (s *Service) complete(ctx context.Context, session *storage.InterviewSession) error {
	score := Aggregate(session.Frames, session.Responses, len(session.Questions))
	completedAt := s.now().UTC()

	session.State = storage.StateCompleted
	session.CompletedAt = &completedAt
	session.FinalScore = &score.Final
	session.Report = &score.Report

	block, err := s.ledger.Append(ctx, ledger.ActionInterviewCompleted, session.UserID,
		ledger.InterviewCompleted(session.JobID, score.Final))
	if err != nil {
		s.metrics.IncrementLedgerAppend(false)
		return fmt.Errorf("ошибка записи завершения интервью в журнал: %w", err)
	}
	s.metrics.IncrementLedgerAppend(true)

	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"index":      block.Index,
		}).WithError(err).Error("событие записано в журнал, но сессия не сохранена")
		return fmt.Errorf("ошибка сохранения завершенной сессии: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"score":      score.Final,
		"index":      block.Index,
	}).Info("интервью завершено")
	return nil
}

// afterCompletion уведомляет внешних участников. Их ошибки не отменяют завершение.
func (s *Service) afterCompletion(ctx context.Context, session *storage.InterviewSession) {
	s.metrics.IncrementInterviewsCompleted()
	// Завершенная сессия больше не мутируется, поздние вызовы получат ErrSessionAlreadyCompleted
	s.locks.Delete(session.ID)
	log := s.logger.WithField("session_id", session.ID)

	if err := s.directory.MarkInterviewCompleted(ctx, session.ApplicationID, *session.FinalScore); err != nil {
		log.WithError(err).Error("не удалось обновить отклик")
	}
	if s.archive != nil {
		if err := s.archive.SaveResult(session); err != nil {
			log.WithError(err).Warn("не удалось сохранить результат в архив")
		}
	}
	if s.sink != nil {
		if err := s.sink.Finish(ctx, session.ID); err != nil {
			log.WithError(err).Warn("не удалось закрыть запись кадров")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.InterviewCompleted(ctx, session); err != nil {
			log.WithError(err).Warn("не удалось отправить уведомление рекрутерам")
		}
	}
}

// authorized загружает сессию и проверяет владельца и состояние
func (s *Service) authorized(ctx context.Context, sessionID, callerID string) (*storage.InterviewSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, lookupError(err, ErrSessionNotFound)
	}
	if session.UserID != callerID {
		return nil, ErrUnauthorized
	}
	if session.Completed() {
		return nil, ErrSessionAlreadyCompleted
	}
	return session, nil
}

func (s *Service) lock(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// lookupError заменяет storage.ErrNotFound доменной ошибкой
func lookupError(err, notFound error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return notFound
	}
	return err
}
