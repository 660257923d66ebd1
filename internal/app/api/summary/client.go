package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API is the remote summarization service as seen by the orchestrator.
type API interface {
	Upload(ctx context.Context, fileName string, audio io.Reader) (*UploadResponse, error)
	StartTranscription(ctx context.Context, audioID string) (*TranscriptionResponse, error)
	GetSummary(ctx context.Context, audioID string) (*SummaryResponse, error)
	GetStatus(ctx context.Context, audioID string) (*StatusResponse, error)
}

// Config configures the HTTP client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	CustomHeaders map[string]string
}

// Client talks to the remote service over HTTP/JSON.
type Client struct {
	config Config
	client *http.Client
}

var _ API = (*Client)(nil)

// APIError describes a transport failure or a non-2xx response.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("summary api %s (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("summary api %s: %s", e.Code, e.Message)
}

// NewClient creates a client for the service at config.BaseURL.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.CustomHeaders == nil {
		config.CustomHeaders = make(map[string]string)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Upload streams audio as the multipart field "audio".
func (c *Client) Upload(ctx context.Context, fileName string, audio io.Reader) (*UploadResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("audio", fileName)
	if err != nil {
		return nil, &APIError{Code: "form_creation_failed", Message: err.Error()}
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, &APIError{Code: "form_creation_failed", Message: fmt.Sprintf("failed to copy audio: %v", err)}
	}
	if err := writer.Close(); err != nil {
		return nil, &APIError{Code: "form_creation_failed", Message: err.Error()}
	}

	var resp UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/audio/upload", body, writer.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartTranscription asks the service to transcribe and summarize audioID.
func (c *Client) StartTranscription(ctx context.Context, audioID string) (*TranscriptionResponse, error) {
	var resp TranscriptionResponse
	if err := c.do(ctx, http.MethodPost, audioPath(audioID, "transcribe"), nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSummary fetches the summary state for audioID.
func (c *Client) GetSummary(ctx context.Context, audioID string) (*SummaryResponse, error) {
	var resp SummaryResponse
	if err := c.do(ctx, http.MethodGet, audioPath(audioID, "summary"), nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStatus fetches the processing status for audioID.
func (c *Client) GetStatus(ctx context.Context, audioID string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, audioPath(audioID, "status"), nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func audioPath(audioID, action string) string {
	return "/api/audio/" + url.PathEscape(audioID) + "/" + action
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return &APIError{Code: "request_creation_failed", Message: err.Error()}
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &APIError{Code: "request_failed", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Code: "response_read_failed", Message: err.Error(), StatusCode: resp.StatusCode, Retryable: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Code:       "api_error",
			Message:    strings.TrimSpace(string(data)),
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Code: "response_parse_failed", Message: err.Error(), StatusCode: resp.StatusCode}
	}
	return nil
}
