package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/voxpersona/voxpersona/internal/chat"
	"github.com/voxpersona/voxpersona/internal/log"
	"github.com/voxpersona/voxpersona/internal/rag"
	"github.com/voxpersona/voxpersona/internal/speech"
)

// maxRequestBody bounds chat request bodies.
const maxRequestBody = 1 << 20

// orchestrator is the slice of chat.Orchestrator the handlers need.
type orchestrator interface {
	Execute(ctx context.Context, sessionID, message string) (chat.Result, error)
	ExecuteStream(ctx context.Context, sessionID, message string, fn rag.StreamFunc) (chat.Result, error)
}

// Chat handles the conversation endpoints.
//
// Endpoints:
//   - POST /api/chat        - single-shot chat (JSON request/response)
//   - POST /api/chat/stream - streaming chat (Server-Sent Events)
type Chat struct {
	orch   orchestrator
	logger log.Logger
}

// NewChat creates the chat handler.
func NewChat(orch orchestrator, logger log.Logger) *Chat {
	return &Chat{orch: orch, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *Chat) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Send)
	mux.HandleFunc("POST /api/chat/stream", h.Stream)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Text        string           `json:"text"`
	AudioBase64 *string          `json:"audio_base64"`
	Alignment   speech.Alignment `json:"alignment"`
}

// SSE event types for chat streaming.
const (
	EventText  = "text"  // partial answer text
	EventAudio = "audio" // synthesized audio + alignment, sent once
	EventDone  = "done"  // stream completed successfully
	EventError = "error" // terminal failure
)

// TextPayload is the SSE data payload for text deltas.
type TextPayload struct {
	Text string `json:"text"`
}

// AudioPayload is the SSE data payload for the synthesis result. Both fields
// are null when synthesis is unconfigured or failed.
type AudioPayload struct {
	AudioBase64 *string          `json:"audio_base64"`
	Alignment   speech.Alignment `json:"alignment"`
}

// DonePayload is the SSE data payload closing a successful stream.
type DonePayload struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ErrorPayload is the SSE data payload for terminal errors.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Send handles POST /api/chat: one blocking turn, aggregated response.
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.orch.Execute(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Text:        result.Text,
		AudioBase64: encodeAudio(result.Speech.Audio),
		Alignment:   result.Speech.Alignment,
	})
}

// Stream handles POST /api/chat/stream: text deltas as SSE events, then one
// audio event, then done. Any failure becomes a terminal error event.
func (h *Chat) Stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = writeEvent(w, flusher, EventError, ErrorPayload{Code: "INVALID_REQUEST", Message: "invalid request body"})
		return
	}
	if req.Message == "" {
		_ = writeEvent(w, flusher, EventError, ErrorPayload{Code: "MISSING_MESSAGE", Message: "message is required"})
		return
	}

	ctx := r.Context()
	h.logger.Debug("SSE stream started", "session_id", req.SessionID)

	result, err := h.orch.ExecuteStream(ctx, req.SessionID, req.Message,
		func(ctx context.Context, delta string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeEvent(w, flusher, EventText, TextPayload{Text: delta})
		})
	if err != nil {
		if ctx.Err() != nil {
			h.logger.Info("client disconnected", "session_id", req.SessionID)
			return
		}
		h.writeStreamError(w, flusher, err)
		return
	}

	// Audio precedes done even when synthesis produced nothing, so clients
	// see a fixed event shape.
	_ = writeEvent(w, flusher, EventAudio, AudioPayload{
		AudioBase64: encodeAudio(result.Speech.Audio),
		Alignment:   result.Speech.Alignment,
	})
	_ = writeEvent(w, flusher, EventDone, DonePayload{
		Response:  result.Text,
		SessionID: req.SessionID,
	})

	h.logger.Debug("SSE stream completed", "session_id", req.SessionID)
}

// decodeRequest parses and validates a chat request body.
func (h *Chat) decodeRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return req, false
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message is required")
		return req, false
	}
	return req, true
}

// writeTurnError maps orchestrator errors to HTTP status codes.
func (h *Chat) writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Try again tomorrow!")
	case errors.Is(err, chat.ErrRetrievalFailed), errors.Is(err, chat.ErrGenerationFailed):
		h.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chat_failed", "failed to answer the question")
	default:
		h.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// writeStreamError maps orchestrator errors to terminal SSE error events.
func (h *Chat) writeStreamError(w io.Writer, f http.Flusher, err error) {
	code := "STREAM_ERROR"
	switch {
	case errors.Is(err, chat.ErrRateLimited):
		code = "RATE_LIMITED"
	case errors.Is(err, chat.ErrRetrievalFailed):
		code = "RETRIEVAL_FAILED"
	case errors.Is(err, chat.ErrGenerationFailed):
		code = "GENERATION_FAILED"
	}
	h.logger.Error("chat stream failed", "error", err, "code", code)
	_ = writeEvent(w, f, EventError, ErrorPayload{Code: code, Message: err.Error()})
}

// encodeAudio base64-encodes audio, or nil for absent audio.
func encodeAudio(audio []byte) *string {
	if len(audio) == 0 {
		return nil
	}
	s := base64.StdEncoding.EncodeToString(audio)
	return &s
}

// writeEvent writes a single SSE event with JSON-encoded data.
// SSE format: "event: <type>\ndata: <json>\n\n"
func writeEvent[T any](w io.Writer, flusher http.Flusher, event string, data T) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	flusher.Flush()
	return nil
}
