package summary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/audio/upload", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		file, header, err := r.FormFile("audio")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "memo.m4a", header.Filename)
		assert.Equal(t, "audio-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(UploadResponse{
			Success:  true,
			AudioID:  "a-1",
			Filename: "memo.m4a",
			FileSize: 11,
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:       server.URL + "/",
		CustomHeaders: map[string]string{"X-Api-Key": "secret"},
	})

	resp, err := client.Upload(context.Background(), "memo.m4a", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "a-1", resp.AudioID)
	assert.Equal(t, int64(11), resp.FileSize)
}

func TestClient_StartTranscriptionAndSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/audio/a-1/transcribe":
			w.Write([]byte(`{"success":true,"audioId":"a-1","jobId":"j-9","status":"transcribing","text":"hi","languageCode":"en"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/audio/a-1/summary":
			w.Write([]byte(`{"success":true,"audioId":"a-1","status":"completed",
				"summary":{"text":"short","keyPoints":["one"],"sentiment":"neutral","chapters":[]},
				"transcription":{"text":"hi","confidence":0.9,"duration":3.5,"language":"English","languageCode":"en"},
				"processingTime":"2s"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/audio/a-1/status":
			w.Write([]byte(`{"success":true,"audioId":"a-1","status":"summarizing","estimatedTimeRemaining":"5s"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	ctx := context.Background()

	tr, err := client.StartTranscription(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "j-9", tr.JobID)
	assert.Equal(t, "hi", tr.Text)
	assert.Equal(t, "en", tr.LanguageCode)

	sum, err := client.GetSummary(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, sum.Completed())
	assert.Equal(t, "short", sum.Summary.Text)
	assert.Equal(t, []string{"one"}, sum.Summary.KeyPoints)
	assert.InDelta(t, 0.9, sum.Transcription.Confidence, 1e-9)
	assert.Equal(t, "en", sum.Transcription.LanguageCode)

	st, err := client.GetStatus(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSummarizing, st.Status)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantCode      string
		wantRetryable bool
	}{
		{"server error", http.StatusInternalServerError, "boom", "api_error", true},
		{"not found", http.StatusNotFound, "no such audio", "api_error", false},
		{"bad json", http.StatusOK, "{not json", "response_parse_failed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(Config{BaseURL: server.URL}).GetSummary(context.Background(), "x")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantRetryable, apiErr.Retryable)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	_, err := client.StartTranscription(context.Background(), "x")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "request_failed", apiErr.Code)
	assert.True(t, apiErr.Retryable)
}

func TestSummaryResponse_Completed(t *testing.T) {
	assert.False(t, (*SummaryResponse)(nil).Completed())
	assert.False(t, (&SummaryResponse{Success: false, Status: StatusCompleted}).Completed())
	assert.False(t, (&SummaryResponse{Success: true, Status: StatusSummarizing}).Completed())
	assert.True(t, (&SummaryResponse{Success: true, Status: StatusCompleted}).Completed())
}
