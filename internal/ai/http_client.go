// internal/ai/http_client.go
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/models"
)

const maxRetries = 3

// HTTPClient talks to a Gemini-style REST API.
type HTTPClient struct {
	cfg     config.AIConfig
	http    *http.Client
	metrics *metrics.AppMetrics
	logger  *logrus.Entry

	newBackOff func() backoff.BackOff
}

func NewHTTPClient(cfg config.AIConfig, m *metrics.AppMetrics) *HTTPClient {
	return &HTTPClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		metrics: m,
		logger:  logrus.WithField("component", "ai"),

		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("generative API returned %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *HTTPClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	body := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}
	if len(req.Schema) > 0 {
		body.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json", ResponseSchema: req.Schema}
	}

	var resp generateContentResponse
	err := c.post(ctx, "text", c.modelURL(c.cfg.TextModel, "generateContent"), body, &resp)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

type predictRequest struct {
	Instances  []map[string]string `json:"instances"`
	Parameters map[string]int      `json:"parameters,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MIMEType           string `json:"mimeType"`
	} `json:"predictions"`
}

func (c *HTTPClient) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	body := predictRequest{
		Instances:  []map[string]string{{"prompt": prompt}},
		Parameters: map[string]int{"sampleCount": 1},
	}

	var resp predictResponse
	if err := c.post(ctx, "image", c.modelURL(c.cfg.ImageModel, "predict"), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return nil, ErrEmptyResponse
	}

	data, err := base64.StdEncoding.DecodeString(resp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	mimeType := resp.Predictions[0].MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &Image{MIMEType: mimeType, Data: data}, nil
}

type operationResponse struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Response struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

func (c *HTTPClient) StartVideo(ctx context.Context, prompt string) (string, error) {
	body := predictRequest{Instances: []map[string]string{{"prompt": prompt}}}

	var resp operationResponse
	if err := c.post(ctx, "video.start", c.modelURL(c.cfg.VideoModel, "predictLongRunning"), body, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return "", ErrEmptyResponse
	}
	return resp.Name, nil
}

func (c *HTTPClient) VideoStatus(ctx context.Context, operation string) (*VideoOperation, error) {
	var resp operationResponse
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(operation, "/")
	if err := c.do(ctx, "video.status", http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	op := &VideoOperation{Name: resp.Name, Done: resp.Done}
	if resp.Error != nil {
		op.Error = resp.Error.Message
	}
	if samples := resp.Response.GenerateVideoResponse.GeneratedSamples; len(samples) > 0 {
		op.VideoURI = samples[0].Video.URI
	}
	return op, nil
}

func (c *HTTPClient) Translate(ctx context.Context, text string, target models.Language) (string, error) {
	translated, err := c.GenerateText(ctx, TextRequest{
		SystemPrompt: "You translate chat messages. Reply with the translation only.",
		Prompt:       fmt.Sprintf("Translate into %s:\n\n%s", LanguageName(target), text),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(translated), nil
}

func (c *HTTPClient) modelURL(model, method string) string {
	return fmt.Sprintf("%s/models/%s:%s", strings.TrimRight(c.cfg.BaseURL, "/"), model, method)
}

func (c *HTTPClient) post(ctx context.Context, op, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, op, http.MethodPost, url, payload, out)
}

// do sends one API call, retrying rate limits and server errors with
// exponential backoff.
func (c *HTTPClient) do(ctx context.Context, op, method, url string, payload []byte, out interface{}) error {
	if c.cfg.APIKey == "" {
		return ErrNotConfigured
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.once(ctx, method, url, payload, out)
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(maxRetries))

	c.metrics.RecordAIRequest(ctx, op, err == nil)
	if err != nil {
		c.logger.WithError(err).WithField("operation", op).Error("Generative API call failed")
	}
	return err
}

func (c *HTTPClient) once(ctx context.Context, method, url string, payload []byte, out interface{}) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		if apiErr.retryable() {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
