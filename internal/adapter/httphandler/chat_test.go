package httphandler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nvidela/shop-assistant/internal/adapter/httphandler"
)

type MockAssistant struct {
	mock.Mock
}

func (a *MockAssistant) Reply(ctx context.Context, message string) (string, error) {
	args := a.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func (a *MockAssistant) PlainReply(ctx context.Context, message string) (string, error) {
	args := a.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func TestChatHandler(t *testing.T) {

	newChatMux := func(assistant *MockAssistant) *http.ServeMux {
		mux := http.NewServeMux()
		httphandler.RegisterChat(mux, assistant)
		return mux
	}

	t.Run("DispatchMode", func(t *testing.T) {
		assistant := new(MockAssistant)
		assistant.On("Reply", mock.Anything, "busco remeras").
			Return("Encontré estos productos:", nil)
		mux := newChatMux(assistant)

		rec := postJSON(mux, http.MethodPost, "/chat",
			`{"message": "busco remeras"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[httphandler.ChatResponse](t, rec)
		assert.Equal(t, "Encontré estos productos:", resp.Reply)
		assistant.AssertExpectations(t)
	})

	t.Run("PlainMode", func(t *testing.T) {
		assistant := new(MockAssistant)
		assistant.On("PlainReply", mock.Anything, "hola").
			Return("¡Hola! ¿En qué puedo ayudarte?", nil)
		mux := newChatMux(assistant)

		rec := postJSON(mux, http.MethodPost, "/chat",
			`{"message": "hola", "mode": "plain"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[httphandler.ChatResponse](t, rec)
		assert.Equal(t, "¡Hola! ¿En qué puedo ayudarte?", resp.Reply)
		assistant.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything)
	})

	t.Run("MissingMessage", func(t *testing.T) {
		assistant := new(MockAssistant)
		mux := newChatMux(assistant)

		rec := postJSON(mux, http.MethodPost, "/chat", `{}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		e := decodeBody[httphandler.ErrorResponse](t, rec)
		assert.Equal(t, "Mensaje requerido", e.Error)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		assistant := new(MockAssistant)
		mux := newChatMux(assistant)

		rec := postJSON(mux, http.MethodPost, "/chat", `not json`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("PipelineFailureIsMasked", func(t *testing.T) {
		assistant := new(MockAssistant)
		assistant.On("Reply", mock.Anything, "hola").
			Return("", errors.New("provider exploded: secret detail"))
		mux := newChatMux(assistant)

		rec := postJSON(mux, http.MethodPost, "/chat", `{"message": "hola"}`)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		e := decodeBody[httphandler.ErrorResponse](t, rec)
		assert.Equal(t, "Error procesando mensaje", e.Error)
		assert.NotContains(t, rec.Body.String(), "secret detail")
	})
}
