package config

// Config представляет банк интервью: категории вопросов, вакансии, отклики и пользователей
type Config struct {
	Categories   map[string][]string `yaml:"categories"`
	Jobs         []Job               `yaml:"jobs"`
	Applications []Application       `yaml:"applications"`
	Users        []User              `yaml:"users"`
}

// Job представляет вакансию. Без собственных вопросов используются вопросы категории.
type Job struct {
	ID                 string   `yaml:"id"`
	Position           string   `yaml:"position"`
	Company            string   `yaml:"company"`
	Category           string   `yaml:"category"`
	RecruiterID        string   `yaml:"recruiter_id"`
	InterviewQuestions []string `yaml:"interview_questions"`
	MinInterviewScore  float64  `yaml:"min_interview_score"`
}

// Application представляет отклик кандидата
type Application struct {
	ID     string `yaml:"id"`
	UserID string `yaml:"user_id"`
	JobID  string `yaml:"job_id"`
}

// User связывает токен доступа с пользователем и ролью
type User struct {
	Token  string `yaml:"token"`
	UserID string `yaml:"user_id"`
	Role   string `yaml:"role"`
}

// Методы для удобного доступа к конфигурации

// QuestionsFor возвращает вопросы вакансии или её категории
func (c *Config) QuestionsFor(job Job) []string {
	if len(job.InterviewQuestions) > 0 {
		return job.InterviewQuestions
	}
	return c.Categories[job.Category]
}

func (c *Config) GetTotalJobs() int {
	return len(c.Jobs)
}

func (c *Config) GetTotalCategories() int {
	return len(c.Categories)
}
