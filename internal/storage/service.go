package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultResultsDir = "results"

// ResultArchive сохраняет завершённые интервью в JSON файлы
type ResultArchive struct {
	dir string
}

// NewResultArchive создает архив в указанной директории
func NewResultArchive(dir string) *ResultArchive {
	if dir == "" {
		dir = defaultResultsDir
	}
	return &ResultArchive{dir: dir}
}

// SaveResult сохраняет результат интервью в JSON файл
func (a *ResultArchive) SaveResult(session *InterviewSession) error {
	if !session.Completed() {
		return fmt.Errorf("интервью %s еще не завершено", session.ID)
	}

	// Создаем директорию если её нет
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("ошибка создания директории %s: %w", a.dir, err)
	}

	jsonData, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации результата: %w", err)
	}

	path := a.path(session.ID)
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}

	return nil
}

// LoadResult загружает результат интервью из JSON файла
func (a *ResultArchive) LoadResult(interviewID string) (*InterviewSession, error) {
	path := a.path(interviewID)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("интервью %s: %w", interviewID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	var result InterviewSession
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}

	return &result, nil
}

// ListResults возвращает отсортированный список ID сохраненных интервью
func (a *ResultArchive) ListResults() ([]string, error) {
	if _, err := os.Stat(a.dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", a.dir, err)
	}

	results := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		if id, ok := strings.CutPrefix(strings.TrimSuffix(name, ".json"), "interview_"); ok {
			results = append(results, id)
		}
	}
	sort.Strings(results)

	return results, nil
}

func (a *ResultArchive) path(interviewID string) string {
	return filepath.Join(a.dir, fmt.Sprintf("interview_%s.json", interviewID))
}
