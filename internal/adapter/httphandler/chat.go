package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nvidela/shop-assistant/internal/core/port"
)

// POST /chat {message, mode?} (200 {reply}, 400 {error}, 500 {error})
// mode "plain" skips action dispatch and returns the raw model reply.

type ChatHandler struct {
	assistant port.AssistantChat
}

func RegisterChat(mux *http.ServeMux, assistant port.AssistantChat) {
	h := ChatHandler{assistant}
	mux.HandleFunc("POST /chat", h.Chat)
}

func (h ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	const op = "ChatHandler.Chat"
	log := slog.With("op", op)

	var body ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		writeError(w, http.StatusBadRequest, "Mensaje requerido")
		return
	}

	var (
		reply string
		err   error
	)
	switch body.Mode {
	case "plain":
		reply, err = h.assistant.PlainReply(r.Context(), body.Message)
	default:
		reply, err = h.assistant.Reply(r.Context(), body.Message)
	}
	if err != nil {
		// Provider and storage failures stay internal; the caller gets a
		// generic message with no detail.
		writeError(w, http.StatusInternalServerError, "Error procesando mensaje")
		log.Error("failed to process message", "err", err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
	log.Info("replied", "mode", body.Mode)
}
