package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"interview-analyzer/internal/auth"
	"interview-analyzer/internal/interviewer"
	"interview-analyzer/internal/ledger"
)

type startRequest struct {
	ApplicationID string `json:"application_id"`
}

type frameRequest struct {
	SessionID string `json:"session_id"`
	Image     string `json:"image"`
}

type answerRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type shortlistRequest struct {
	ApplicationID string `json:"application_id"`
}

type blocksResponse struct {
	Blocks []ledger.Block `json:"blocks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Metrics.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ApplicationID == "" {
		writeError(w, http.StatusBadRequest, "application_id обязателен")
		return
	}

	res, err := s.opts.Interviewer.StartForApplication(r.Context(), identity(r).UserID, req.ApplicationID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var req frameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id обязателен")
		return
	}

	raw, err := decodeImage(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, interviewer.ErrInvalidFrameData.Error())
		return
	}

	res, err := s.opts.Interviewer.SubmitFrame(r.Context(), req.SessionID, identity(r).UserID, raw)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id обязателен")
		return
	}

	res, err := s.opts.Interviewer.SubmitAnswer(r.Context(), req.SessionID, identity(r).UserID, req.Answer)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.opts.Interviewer.CompletedInterviews(r.Context(), identity(r).UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"interviews": sessions})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.opts.Interviewer.Stats(r.Context(), identity(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request) {
	detail, err := s.opts.Interviewer.CandidateDetail(r.Context(), identity(r), chi.URLParam(r, "applicationID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	var req shortlistRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ApplicationID == "" {
		writeError(w, http.StatusBadRequest, "application_id обязателен")
		return
	}

	if err := s.opts.Interviewer.Shortlist(r.Context(), identity(r), req.ApplicationID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"application_id": req.ApplicationID,
		"status":         "shortlisted",
	})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.opts.Ledger.ByActor(r.Context(), identity(r).UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blocksResponse{Blocks: blocks})
}

func (s *Server) handleLedgerAll(w http.ResponseWriter, r *http.Request) {
	if !identity(r).IsRecruiter() {
		s.writeServiceError(w, r, interviewer.ErrUnauthorized)
		return
	}
	blocks, err := s.opts.Ledger.Blocks(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if blocks == nil {
		blocks = []ledger.Block{}
	}
	writeJSON(w, http.StatusOK, blocksResponse{Blocks: blocks})
}

func (s *Server) handleLedgerVerify(w http.ResponseWriter, r *http.Request) {
	if !identity(r).IsRecruiter() {
		s.writeServiceError(w, r, interviewer.ErrUnauthorized)
		return
	}
	report, err := s.opts.Ledger.Verify(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "некорректный JSON")
		return false
	}
	return true
}

// decodeImage принимает чистый base64 или data URL (data:image/jpeg;base64,...)
func decodeImage(s string) ([]byte, error) {
	if i := strings.Index(s, ","); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
