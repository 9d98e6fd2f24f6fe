// Package bootstrap переносит банк интервью в справочник и журнал при старте
// и восстанавливает состояние откликов по уже записанным событиям.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"interview-analyzer/internal/auth"
	"interview-analyzer/internal/config"
	"interview-analyzer/internal/ledger"
	"interview-analyzer/internal/storage"
)

// Summary представляет итог загрузки банка
type Summary struct {
	Jobs              int
	Applications      int
	EventsAppended    int
	CompletedRestored int
}

type appliedKey struct {
	userID string
	jobID  string
}

// Seed добавляет вакансии и отклики в справочник. События job-created и job-applied
// пишутся только если их еще нет в журнале, поэтому повторный старт не дублирует блоки.
func Seed(ctx context.Context, bank *config.Config, dir storage.Directory, events *ledger.Ledger, logger logrus.FieldLogger, now func() time.Time) (*Summary, error) {
	if now == nil {
		now = time.Now
	}

	blocks, err := events.Blocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}

	created := make(map[string]bool)
	applied := make(map[appliedKey]bool)
	for _, b := range blocks {
		switch b.Action {
		case ledger.ActionJobCreated:
			created[b.Payload.String("job_id")] = true
		case ledger.ActionJobApplied:
			applied[appliedKey{b.ActorID, b.Payload.String("job_id")}] = true
		}
	}

	summary := &Summary{}

	for _, j := range bank.Jobs {
		job := &storage.Job{
			ID:                 j.ID,
			Position:           j.Position,
			Company:            j.Company,
			Category:           j.Category,
			RecruiterID:        j.RecruiterID,
			InterviewQuestions: append([]string(nil), bank.QuestionsFor(j)...),
			MinInterviewScore:  j.MinInterviewScore,
		}
		if err := dir.AddJob(ctx, job); err != nil {
			return nil, fmt.Errorf("ошибка добавления вакансии %s: %w", j.ID, err)
		}
		summary.Jobs++

		if created[j.ID] {
			continue
		}
		if _, err := events.Append(ctx, ledger.ActionJobCreated, j.RecruiterID,
			ledger.JobCreated(j.ID, j.Position, j.Category)); err != nil {
			return nil, err
		}
		summary.EventsAppended++
	}

	apps := make(map[appliedKey]string, len(bank.Applications))
	for _, a := range bank.Applications {
		app := &storage.Application{
			ID:        a.ID,
			UserID:    a.UserID,
			JobID:     a.JobID,
			Status:    storage.ApplicationApplied,
			AppliedAt: now().UTC(),
		}
		if err := dir.AddApplication(ctx, app); err != nil {
			return nil, fmt.Errorf("ошибка добавления отклика %s: %w", a.ID, err)
		}
		summary.Applications++

		key := appliedKey{a.UserID, a.JobID}
		apps[key] = a.ID
		if applied[key] {
			continue
		}
		if _, err := events.Append(ctx, ledger.ActionJobApplied, a.UserID, ledger.JobApplied(a.JobID)); err != nil {
			return nil, err
		}
		summary.EventsAppended++
	}

	// Восстанавливаем завершенные интервью и шортлист по журналу
	for _, b := range blocks {
		switch b.Action {
		case ledger.ActionInterviewCompleted:
			appID, ok := apps[appliedKey{b.ActorID, b.Payload.String("job_id")}]
			if !ok {
				continue
			}
			score, _ := b.Payload.Float("score")
			if err := dir.MarkInterviewCompleted(ctx, appID, score); err != nil {
				return nil, fmt.Errorf("ошибка восстановления отклика %s: %w", appID, err)
			}
			summary.CompletedRestored++
		case ledger.ActionCandidateShortlisted:
			appID := b.Payload.String("application_id")
			if _, err := dir.Application(ctx, appID); err != nil {
				continue
			}
			if err := dir.Shortlist(ctx, appID); err != nil {
				return nil, fmt.Errorf("ошибка восстановления шортлиста %s: %w", appID, err)
			}
		}
	}

	logger.WithFields(logrus.Fields{
		"jobs":         summary.Jobs,
		"applications": summary.Applications,
		"events":       summary.EventsAppended,
		"restored":     summary.CompletedRestored,
	}).Info("банк интервью загружен")

	return summary, nil
}

// Identities строит таблицу токенов для auth.TokenResolver
func Identities(bank *config.Config) map[string]auth.Identity {
	out := make(map[string]auth.Identity, len(bank.Users))
	for _, u := range bank.Users {
		out[u.Token] = auth.Identity{UserID: u.UserID, Role: auth.Role(u.Role)}
	}
	return out
}
