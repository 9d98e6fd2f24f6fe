package interviewer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"interview-analyzer/internal/auth"
	"interview-analyzer/internal/ledger"
	"interview-analyzer/internal/storage"
)

// CompletedInterviews возвращает завершенные интервью пользователя, старые первыми
func (s *Service) CompletedInterviews(ctx context.Context, userID string) ([]*storage.InterviewSession, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}
	out := []*storage.InterviewSession{}
	for _, sess := range sessions {
		if sess.Completed() {
			out = append(out, sess)
		}
	}
	return out, nil
}

// CandidateDetail представляет отклик кандидата вместе с его интервью
type CandidateDetail struct {
	Application *storage.Application        `json:"application"`
	Job         *storage.Job                `json:"job"`
	Interviews  []*storage.InterviewSession `json:"interviews"`
}

// CandidateDetail доступен только рекрутерам
func (s *Service) CandidateDetail(ctx context.Context, caller auth.Identity, applicationID string) (*CandidateDetail, error) {
	if !caller.IsRecruiter() {
		return nil, ErrUnauthorized
	}

	app, err := s.directory.Application(ctx, applicationID)
	if err != nil {
		return nil, lookupError(err, ErrApplicationNotFound)
	}
	job, err := s.directory.Job(ctx, app.JobID)
	if err != nil {
		return nil, lookupError(err, ErrJobNotFound)
	}

	sessions, err := s.sessions.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения интервью отклика: %w", err)
	}
	interviews := []*storage.InterviewSession{}
	for _, sess := range sessions {
		if sess.Completed() && sess.UserID == app.UserID {
			interviews = append(interviews, sess)
		}
	}

	return &CandidateDetail{Application: app, Job: job, Interviews: interviews}, nil
}

// Shortlist отмечает кандидата рекрутером-владельцем вакансии
func (s *Service) Shortlist(ctx context.Context, caller auth.Identity, applicationID string) error {
	if !caller.IsRecruiter() {
		return ErrUnauthorized
	}

	app, err := s.directory.Application(ctx, applicationID)
	if err != nil {
		return lookupError(err, ErrApplicationNotFound)
	}
	job, err := s.directory.Job(ctx, app.JobID)
	if err != nil {
		return lookupError(err, ErrJobNotFound)
	}
	if job.RecruiterID != caller.UserID {
		return ErrUnauthorized
	}

	if _, err := s.ledger.Append(ctx, ledger.ActionCandidateShortlisted, app.UserID,
		ledger.CandidateShortlisted(app.ID)); err != nil {
		s.metrics.IncrementLedgerAppend(false)
		return fmt.Errorf("ошибка записи шортлиста в журнал: %w", err)
	}
	s.metrics.IncrementLedgerAppend(true)

	if err := s.directory.Shortlist(ctx, app.ID); err != nil {
		return fmt.Errorf("ошибка обновления отклика: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": app.ID,
		"recruiter_id":   caller.UserID,
	}).Info("кандидат добавлен в шортлист")
	return nil
}

// Stats представляет сводку для роли вызывающего. Заполнена ровно одна часть.
type Stats struct {
	*CandidateStats
	*RecruiterStats
}

// CandidateStats представляет сводку кандидата
type CandidateStats struct {
	Applications        int     `json:"applications"`
	InterviewsCompleted int     `json:"interviews_completed"`
	AvgInterviewScore   float64 `json:"avg_interview_score"`
}

// RecruiterStats представляет сводку по вакансиям рекрутера
type RecruiterStats struct {
	TotalJobs         int `json:"total_jobs"`
	TotalApplications int `json:"total_applications"`
	Shortlisted       int `json:"shortlisted"`
	Completed         int `json:"completed"`
}

// Stats считает сводку кандидата или рекрутера в зависимости от роли
func (s *Service) Stats(ctx context.Context, caller auth.Identity) (*Stats, error) {
	if caller.IsRecruiter() {
		rs, err := s.recruiterStats(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		return &Stats{RecruiterStats: rs}, nil
	}
	cs, err := s.candidateStats(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &Stats{CandidateStats: cs}, nil
}

func (s *Service) candidateStats(ctx context.Context, userID string) (*CandidateStats, error) {
	apps, err := s.directory.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения откликов: %w", err)
	}
	stats := &CandidateStats{}
	for _, app := range apps {
		if app.UserID == userID {
			stats.Applications++
		}
	}

	sessions, err := s.CompletedInterviews(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.InterviewsCompleted = len(sessions)
	if len(sessions) == 0 {
		return stats, nil
	}
	var sum float64
	for _, sess := range sessions {
		sum += *sess.FinalScore
	}
	stats.AvgInterviewScore = round2(sum / float64(len(sessions)))
	return stats, nil
}

func (s *Service) recruiterStats(ctx context.Context, recruiterID string) (*RecruiterStats, error) {
	jobs, err := s.directory.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения вакансий: %w", err)
	}
	apps, err := s.directory.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения откликов: %w", err)
	}

	stats := &RecruiterStats{}
	own := make(map[string]bool)
	for _, job := range jobs {
		if job.RecruiterID == recruiterID {
			own[job.ID] = true
			stats.TotalJobs++
		}
	}
	for _, app := range apps {
		if !own[app.JobID] {
			continue
		}
		stats.TotalApplications++
		switch app.Status {
		case storage.ApplicationShortlisted:
			stats.Shortlisted++
		case storage.ApplicationCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}
