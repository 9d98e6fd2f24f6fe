package interviewer

import "errors"

// Ошибки валидации: состояние сессии не меняется
var (
	ErrEmptyQuestionSet = errors.New("список вопросов пуст")
	ErrEmptyAnswer      = errors.New("ответ не может быть пустым")
	ErrInvalidFrameData = errors.New("некорректные данные кадра")
)

// Ошибки авторизации и поиска
var (
	ErrSessionNotFound     = errors.New("сессия не найдена")
	ErrUnauthorized        = errors.New("нет доступа")
	ErrApplicationNotFound = errors.New("отклик не найден")
	ErrJobNotFound         = errors.New("вакансия не найдена")
)

// Конфликты состояния
var (
	ErrSessionAlreadyCompleted = errors.New("интервью уже завершено")
	ErrInvalidApplicationState = errors.New("интервью по отклику уже пройдено")
)
