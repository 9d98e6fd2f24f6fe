package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"interview-analyzer/internal/interviewer"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor сопоставляет доменные ошибки с HTTP статусами
func statusFor(err error) int {
	switch {
	case errors.Is(err, interviewer.ErrEmptyQuestionSet),
		errors.Is(err, interviewer.ErrEmptyAnswer),
		errors.Is(err, interviewer.ErrInvalidFrameData):
		return http.StatusBadRequest
	case errors.Is(err, interviewer.ErrSessionNotFound),
		errors.Is(err, interviewer.ErrApplicationNotFound),
		errors.Is(err, interviewer.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, interviewer.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, interviewer.ErrSessionAlreadyCompleted),
		errors.Is(err, interviewer.ErrInvalidApplicationState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError не раскрывает детали внутренних ошибок клиенту
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithField("request_id", GetRequestID(r.Context())).WithError(err).Error("внутренняя ошибка")
		writeError(w, status, "внутренняя ошибка сервера")
		return
	}
	writeError(w, status, err.Error())
}
