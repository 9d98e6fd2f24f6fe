package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Action представляет тег события журнала из фиксированного словаря
type Action string

// Ключи payload по действиям:
//
//	registration          email, role
//	profile-created       skills
//	job-created           job_id, position, category
//	job-matched           matches
//	job-applied           job_id
//	assessment-completed  job_id, score
//	interview-completed   job_id, score
//	candidate-shortlisted application_id
const (
	ActionRegistration         Action = "registration"
	ActionProfileCreated       Action = "profile-created"
	ActionJobCreated           Action = "job-created"
	ActionJobMatched           Action = "job-matched"
	ActionJobApplied           Action = "job-applied"
	ActionAssessmentCompleted  Action = "assessment-completed"
	ActionInterviewCompleted   Action = "interview-completed"
	ActionCandidateShortlisted Action = "candidate-shortlisted"
)

var actions = map[Action]bool{
	ActionRegistration:         true,
	ActionProfileCreated:       true,
	ActionJobCreated:           true,
	ActionJobMatched:           true,
	ActionJobApplied:           true,
	ActionAssessmentCompleted:  true,
	ActionInterviewCompleted:   true,
	ActionCandidateShortlisted: true,
}

// Valid сообщает, входит ли действие в словарь
func (a Action) Valid() bool {
	return actions[a]
}

// Payload представляет данные события
type Payload map[string]any

// String возвращает строковое значение ключа
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Float возвращает числовое значение ключа. После JSON числа приходят как float64.
func (p Payload) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func InterviewCompleted(jobID string, score float64) Payload {
	return Payload{"job_id": jobID, "score": score}
}

func JobCreated(jobID, position, category string) Payload {
	return Payload{"job_id": jobID, "position": position, "category": category}
}

func JobApplied(jobID string) Payload {
	return Payload{"job_id": jobID}
}

func CandidateShortlisted(applicationID string) Payload {
	return Payload{"application_id": applicationID}
}

// Block представляет одну неизменяемую запись журнала
type Block struct {
	Index     int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	ActorID   string    `json:"user_id"`
	Payload   Payload   `json:"data"`
	Hash      string    `json:"hash"`
}

// computeHash считает SHA-256 по индексу, времени, действию и автору.
// prevHash пуст в обычном режиме и равен хешу предыдущего блока в цепочном.
func computeHash(prevHash string, index int, ts time.Time, action Action, actorID string) string {
	input := fmt.Sprintf("%s%d%s%s%s", prevHash, index, formatTimestamp(ts), action, actorID)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}
