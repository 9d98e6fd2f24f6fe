package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"interview-analyzer/internal/storage"
)

// RestoreSessions загружает завершенные интервью из архива в хранилище сессий.
// Нечитаемые файлы пропускаются с предупреждением. Возвращает число загруженных сессий.
func RestoreSessions(ctx context.Context, archive *storage.ResultArchive, sessions storage.SessionRepository, logger logrus.FieldLogger) (int, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	ids, err := archive.ListResults()
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения архива: %w", err)
	}

	restored := 0
	for _, id := range ids {
		session, err := archive.LoadResult(id)
		if err != nil {
			logger.WithField("interview_id", id).WithError(err).Warn("пропущен файл архива")
			continue
		}
		if !session.Completed() || session.ID != id {
			logger.WithField("interview_id", id).Warn("пропущена незавершенная или переименованная запись архива")
			continue
		}

		if _, err := sessions.Get(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return restored, fmt.Errorf("ошибка чтения сессии %s: %w", id, err)
		}
		if err := sessions.Create(ctx, session); err != nil {
			return restored, fmt.Errorf("ошибка восстановления сессии %s: %w", id, err)
		}
		restored++
	}

	logger.WithField("sessions", restored).Info("архив интервью загружен")
	return restored, nil
}
