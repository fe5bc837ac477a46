// Package http exposes the assessment use cases over JSON REST and a
// websocket flow. It is a thin collaborator: validation and state transitions
// live in the app layer.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"health-risk-service/internal/app"
	"health-risk-service/internal/domain"
)

// Handler serves the REST surface.
type Handler struct {
	service *app.AssessmentService
}

func NewHandler(service *app.AssessmentService) *Handler {
	return &Handler{service: service}
}

// Register wires the routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/questions/{ordinal}", h.getQuestion)
	mux.HandleFunc("POST /api/sessions/{id}/answers", h.submitAnswer)
	mux.HandleFunc("POST /api/sessions/{id}/finalize", h.finalize)
	mux.HandleFunc("GET /api/sessions/{id}/result", h.getResult)
}

// questionView is the client-facing question shape. Point values stay
// server-side.
type questionView struct {
	ID       string       `json:"id"`
	Ordinal  int          `json:"ordinal"`
	Category string       `json:"category"`
	Prompt   string       `json:"prompt"`
	Options  []optionView `json:"options"`
}

type optionView struct {
	Label string `json:"label"`
}

func toQuestionView(q domain.Question) questionView {
	opts := make([]optionView, len(q.Options))
	for i, o := range q.Options {
		opts[i] = optionView{Label: o.Label}
	}
	return questionView{
		ID:       q.ID,
		Ordinal:  q.Ordinal,
		Category: string(q.Category),
		Prompt:   q.Prompt,
		Options:  opts,
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CreateSession(r.Context(), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": session.ID})
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	ordinal, err := strconv.Atoi(r.PathValue("ordinal"))
	if err != nil {
		writeError(w, domain.ErrUnknownQuestion)
		return
	}
	q, err := h.service.GetQuestion(r.Context(), ordinal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestionView(q))
}

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Label      string `json:"label"`
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	outcome, err := h.service.SubmitAnswer(r.Context(), r.PathValue("id"), req.QuestionID, req.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Finalize(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetResult(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type errorBody struct {
	Error       string   `json:"error"`
	LegalLabels []string `json:"legalLabels,omitempty"`
	Expected    int      `json:"expected,omitempty"`
	Actual      int      `json:"actual,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}

	var invalidOpt *domain.InvalidOptionError
	if errors.As(err, &invalidOpt) {
		body.LegalLabels = invalidOpt.LegalLabels
	}
	var incomplete *domain.IncompleteAssessmentError
	if errors.As(err, &incomplete) {
		body.Expected = incomplete.Expected
		body.Actual = incomplete.Actual
	}

	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrResultNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidOption):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionFinalized),
		errors.Is(err, domain.ErrIncompleteAssessment):
		status = http.StatusConflict
	}
	if status == http.StatusServiceUnavailable {
		log.Printf("storage error: %v", err)
		body.Error = "service temporarily unavailable"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
