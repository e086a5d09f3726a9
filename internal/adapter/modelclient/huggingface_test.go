package modelclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvidela/shop-assistant/internal/adapter/modelclient"
	"github.com/nvidela/shop-assistant/internal/core/domain"
)

func requireModelError(
	t *testing.T, err error, kind domain.ModelErrorKind,
) *domain.ModelError {
	t.Helper()
	require.Error(t, err)
	var me *domain.ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, kind, me.Kind)
	return me
}

func TestNewHuggingFaceClient(t *testing.T) {

	t.Run("MissingAPIKey", func(t *testing.T) {
		_, err := modelclient.NewHuggingFaceClient("http://localhost", "")
		requireModelError(t, err, domain.ModelAuth)
	})

	t.Run("MissingEndpoint", func(t *testing.T) {
		_, err := modelclient.NewHuggingFaceClient("", "hf_test")
		require.Error(t, err)
	})
}

func TestHuggingFaceClientGenerate(t *testing.T) {

	t.Run("Success", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")

				var req struct {
					Inputs     string `json:"inputs"`
					Parameters struct {
						Temperature    float32 `json:"temperature"`
						ReturnFullText bool    `json:"return_full_text"`
					} `json:"parameters"`
				}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "hola", req.Inputs)
				assert.Equal(t, float32(0.7), req.Parameters.Temperature)
				assert.False(t, req.Parameters.ReturnFullText)

				json.NewEncoder(w).Encode([]map[string]string{
					{"generated_text": `{"action": "buscar", "params": {"q": "remera"}}`},
				})
			},
		))
		defer srv.Close()

		c, err := modelclient.NewHuggingFaceClient(srv.URL, "hf_test")
		require.NoError(t, err)

		text, err := c.Generate(t.Context(), "hola", 0.7)
		require.NoError(t, err)
		assert.Equal(t, `{"action": "buscar", "params": {"q": "remera"}}`, text)
		assert.Equal(t, "Bearer hf_test", gotAuth)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error": "invalid token hf_secret"}`,
					http.StatusUnauthorized)
			},
		))
		defer srv.Close()

		c, err := modelclient.NewHuggingFaceClient(srv.URL, "hf_secret")
		require.NoError(t, err)

		_, err = c.Generate(t.Context(), "hola", 0)
		me := requireModelError(t, err, domain.ModelAuth)
		// The credential must never leak through the error chain.
		assert.NotContains(t, me.Error(), "hf_secret")
		assert.NotContains(t, err.Error(), "hf_secret")
	})

	t.Run("UpstreamFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model overloaded", http.StatusServiceUnavailable)
			},
		))
		defer srv.Close()

		c, err := modelclient.NewHuggingFaceClient(srv.URL, "hf_test")
		require.NoError(t, err)

		_, err = c.Generate(t.Context(), "hola", 0)
		me := requireModelError(t, err, domain.ModelUpstream)
		assert.Equal(t, http.StatusServiceUnavailable, me.StatusCode)
	})

	t.Run("MalformedResponse", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"unexpected": "shape"}`))
			},
		))
		defer srv.Close()

		c, err := modelclient.NewHuggingFaceClient(srv.URL, "hf_test")
		require.NoError(t, err)

		_, err = c.Generate(t.Context(), "hola", 0)
		requireModelError(t, err, domain.ModelMalformed)
	})

	t.Run("EmptyGeneration", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"generated_text": "  "}]`))
			},
		))
		defer srv.Close()

		c, err := modelclient.NewHuggingFaceClient(srv.URL, "hf_test")
		require.NoError(t, err)

		_, err = c.Generate(t.Context(), "hola", 0)
		requireModelError(t, err, domain.ModelMalformed)
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				<-release
			},
		))
		defer srv.Close()
		defer close(release)

		c, err := modelclient.NewHuggingFaceClient(srv.URL, "hf_test")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		_, err = c.Generate(ctx, "hola", 0)
		requireModelError(t, err, domain.ModelTimeout)
	})

	t.Run("NetworkFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {},
		))
		srv.Close()

		c, err := modelclient.NewHuggingFaceClient(srv.URL, "hf_test")
		require.NoError(t, err)

		_, err = c.Generate(t.Context(), "hola", 0)
		requireModelError(t, err, domain.ModelNetwork)
	})
}
