package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"health-risk-service/internal/app"
	"health-risk-service/internal/domain"
)

// WSHandler runs the questionnaire as a conversation over one socket:
// start → question/answer rounds → finalize → result.
type WSHandler struct {
	service  *app.AssessmentService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type questionRequestPayload struct {
	Ordinal int `json:"ordinal"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Label      string `json:"label"`
}

type sessionPayload struct {
	SessionID      string `json:"sessionId"`
	TotalQuestions int    `json:"totalQuestions"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the connection and drives the assessment flow.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	session, err := h.service.CreateSession(ctx, r.UserAgent())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorBody]{Type: "error", Payload: errorBody{Error: "service temporarily unavailable"}})
		return
	}
	total, err := h.service.QuestionCount(ctx)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorBody]{Type: "error", Payload: errorBody{Error: "service temporarily unavailable"}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer goroutine; the read loop below is the only producer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "session", Payload: sessionPayload{SessionID: session.ID, TotalQuestions: total}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "question":
			var payload questionRequestPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorBody{Error: "invalid question payload"}}
				continue
			}
			q, err := h.service.GetQuestion(ctx, payload.Ordinal)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: wsErrorBody(err)}
				continue
			}
			send <- outboundMessage[any]{Type: "question", Payload: toQuestionView(q)}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorBody{Error: "invalid answer payload"}}
				continue
			}
			outcome, err := h.service.SubmitAnswer(ctx, session.ID, payload.QuestionID, payload.Label)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: wsErrorBody(err)}
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: outcome}
		case "finalize":
			result, err := h.service.Finalize(ctx, session.ID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: wsErrorBody(err)}
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: result}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorBody{Error: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}

func wsErrorBody(err error) errorBody {
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
	if !app.IsClientError(err) {
		log.Printf("storage error: %v", err)
		body.Error = "service temporarily unavailable"
	}
	return body
}
