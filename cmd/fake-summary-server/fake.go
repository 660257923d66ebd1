package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"voicenotes/internal/app/api/summary"
)

type fakeConfig struct {
	// ProcessingTime is how long after transcription starts the summary
	// becomes ready.
	ProcessingTime time.Duration
	// FailTranscription makes every transcription request fail.
	FailTranscription bool
	MaxUploadBytes    int64
}

type audio struct {
	id         string
	filename   string
	size       int64
	uploadedAt time.Time
	startedAt  time.Time
}

type fakeService struct {
	cfg    fakeConfig
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	audios map[string]*audio
}

func newFakeService(cfg fakeConfig, logger *zap.Logger) *fakeService {
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 100 << 20
	}
	return &fakeService{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		audios: make(map[string]*audio),
	}
}

func (s *fakeService) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = 8 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/audio")
	{
		api.POST("/upload", s.handleUpload)
		api.POST("/:id/transcribe", s.handleTranscribe)
		api.GET("/:id/summary", s.handleSummary)
		api.GET("/:id/status", s.handleStatus)
	}
	return router
}

func (s *fakeService) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, summary.UploadResponse{Message: "multipart field audio is required"})
		return
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, summary.UploadResponse{Message: err.Error()})
		return
	}
	if size > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, summary.UploadResponse{Message: "file too large"})
		return
	}

	a := &audio{
		id:         uuid.NewString(),
		filename:   header.Filename,
		size:       size,
		uploadedAt: s.now(),
	}
	s.mu.Lock()
	s.audios[a.id] = a
	s.mu.Unlock()

	s.logger.Info("audio uploaded", zap.String("audio_id", a.id), zap.String("filename", a.filename), zap.Int64("size", size))
	c.JSON(http.StatusOK, summary.UploadResponse{
		Success:    true,
		AudioID:    a.id,
		Message:    "uploaded",
		Filename:   a.filename,
		FileSize:   a.size,
		UploadedAt: a.uploadedAt.UTC().Format(time.RFC3339),
	})
}

func (s *fakeService) lookup(c *gin.Context) (*audio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.audios[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "audio not found"})
	}
	return a, ok
}

func (s *fakeService) handleTranscribe(c *gin.Context) {
	a, ok := s.lookup(c)
	if !ok {
		return
	}
	if s.cfg.FailTranscription {
		c.JSON(http.StatusOK, summary.TranscriptionResponse{AudioID: a.id, Status: summary.StatusFailed, Message: "transcription disabled"})
		return
	}

	s.mu.Lock()
	if a.startedAt.IsZero() {
		a.startedAt = s.now()
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, summary.TranscriptionResponse{
		Success:       true,
		AudioID:       a.id,
		JobID:         uuid.NewString(),
		Status:        summary.StatusTranscribing,
		EstimatedTime: s.cfg.ProcessingTime.String(),
	})
}

// state returns the remote status of a and whether its summary is ready.
func (s *fakeService) state(a *audio) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case a.startedAt.IsZero():
		return summary.StatusUploaded, false
	case s.now().Sub(a.startedAt) < s.cfg.ProcessingTime:
		return summary.StatusSummarizing, false
	default:
		return summary.StatusCompleted, true
	}
}

func (s *fakeService) handleSummary(c *gin.Context) {
	a, ok := s.lookup(c)
	if !ok {
		return
	}

	status, ready := s.state(a)
	resp := summary.SummaryResponse{Success: true, AudioID: a.id, Status: status}
	if ready {
		name := strings.TrimSuffix(a.filename, ".m4a")
		resp.Transcription = summary.TranscriptionDTO{
			Text:         fmt.Sprintf("Transcript of %s.", name),
			Confidence:   0.93,
			LanguageCode: "en",
		}
		resp.Summary = summary.SummaryDTO{
			Text:      fmt.Sprintf("Summary of %s (%d bytes).", name, a.size),
			KeyPoints: []string{"recorded " + a.uploadedAt.UTC().Format(time.RFC822)},
			Sentiment: "neutral",
		}
		resp.ProcessingTime = s.cfg.ProcessingTime.String()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *fakeService) handleStatus(c *gin.Context) {
	a, ok := s.lookup(c)
	if !ok {
		return
	}
	status, _ := s.state(a)
	c.JSON(http.StatusOK, summary.StatusResponse{Success: true, AudioID: a.id, Status: status})
}
