package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load загружает банк интервью из YAML файла
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}
	return Parse(data)
}

// Parse разбирает и проверяет банк интервью
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	// Валидация конфигурации
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return &config, nil
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	for name, questions := range config.Categories {
		for i, q := range questions {
			if q == "" {
				return fmt.Errorf("категория %s: вопрос %d пустой", name, i+1)
			}
		}
	}

	jobs := make(map[string]bool, len(config.Jobs))
	for i, job := range config.Jobs {
		if job.ID == "" {
			return fmt.Errorf("вакансия %d должна иметь id", i+1)
		}
		if jobs[job.ID] {
			return fmt.Errorf("вакансия %s объявлена дважды", job.ID)
		}
		jobs[job.ID] = true

		if job.RecruiterID == "" {
			return fmt.Errorf("вакансия %s должна иметь recruiter_id", job.ID)
		}
		if len(job.InterviewQuestions) == 0 {
			if _, ok := config.Categories[job.Category]; !ok {
				return fmt.Errorf("вакансия %s ссылается на неизвестную категорию %q", job.ID, job.Category)
			}
		}
		if len(config.QuestionsFor(job)) == 0 {
			return fmt.Errorf("у вакансии %s нет вопросов интервью", job.ID)
		}
	}

	apps := make(map[string]bool, len(config.Applications))
	for i, app := range config.Applications {
		if app.ID == "" || app.UserID == "" {
			return fmt.Errorf("отклик %d должен иметь id и user_id", i+1)
		}
		if apps[app.ID] {
			return fmt.Errorf("отклик %s объявлен дважды", app.ID)
		}
		apps[app.ID] = true
		if !jobs[app.JobID] {
			return fmt.Errorf("отклик %s ссылается на неизвестную вакансию %q", app.ID, app.JobID)
		}
	}

	tokens := make(map[string]bool, len(config.Users))
	for i, user := range config.Users {
		if user.Token == "" || user.UserID == "" {
			return fmt.Errorf("пользователь %d должен иметь token и user_id", i+1)
		}
		if tokens[user.Token] {
			return fmt.Errorf("токен пользователя %s повторяется", user.UserID)
		}
		tokens[user.Token] = true
		if user.Role != "candidate" && user.Role != "recruiter" {
			return fmt.Errorf("пользователь %s имеет неизвестную роль %q", user.UserID, user.Role)
		}
	}

	return nil
}
