package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewHTTPClient(config.AIConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		TextModel:      "text-model",
		ImageModel:     "image-model",
		VideoModel:     "video-model",
		RequestTimeout: 5,
	}, nil)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestGenerateTextWithSchema(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)
		assert.Equal(t, "write a script", req.Contents[0].Parts[0].Text)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"title\":"},{"text":"\"Hi\"}"}]}}]}`))
	})

	out, err := c.GenerateText(context.Background(), TextRequest{
		Prompt: "write a script",
		Schema: json.RawMessage(`{"type":"object"}`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Hi"}`, out)
}

func TestGenerateTextRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})

	out, err := c.GenerateText(context.Background(), TextRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad prompt"}`))
	})

	_, err := c.GenerateText(context.Background(), TextRequest{Prompt: "hi"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/image-model:predict", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": []map[string]string{{"bytesBase64Encoded": base64.StdEncoding.EncodeToString(png), "mimeType": "image/png"}},
		})
	})

	img, err := c.GenerateImage(context.Background(), "a dress on a beach")
	require.NoError(t, err)
	assert.Equal(t, png, img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestVideoLifecycle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/models/video-model:predictLongRunning":
			w.Write([]byte(`{"name":"operations/op-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/operations/op-1":
			w.Write([]byte(`{"name":"operations/op-1","done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"https://cdn.example/v.mp4"}}]}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	name, err := c.StartVideo(context.Background(), "runway walk")
	require.NoError(t, err)
	assert.Equal(t, "operations/op-1", name)

	op, err := c.VideoStatus(context.Background(), name)
	require.NoError(t, err)
	assert.True(t, op.Done)
	assert.Equal(t, "https://cdn.example/v.mp4", op.VideoURI)
}

func TestTranslate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, strings.HasPrefix(req.Contents[0].Parts[0].Text, "Translate into German"))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":" Hallo \n"}]}}]}`))
	})

	out, err := c.Translate(context.Background(), "Hello", models.LanguageGerman)
	require.NoError(t, err)
	assert.Equal(t, "Hallo", out)
}

func TestMissingAPIKey(t *testing.T) {
	c := NewHTTPClient(config.AIConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.GenerateText(context.Background(), TextRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
