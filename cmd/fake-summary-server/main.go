package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"voicenotes/internal/app/api/summary"
	"voicenotes/internal/app/logging"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8090", "listen address")
		processing = flag.Duration("processing", 3*time.Second, "time from transcription start until the summary is ready")
		failAll    = flag.Bool("fail", false, "reject every transcription request")
		check      = flag.String("check", "", "instead of serving, run upload, transcribe and poll for this file against -url")
		baseURL    = flag.String("url", "http://127.0.0.1:8090", "service base URL for -check")
		verbose    = flag.Bool("verbose", false, "verbose output")
	)
	flag.Parse()

	logger := logging.MustNewLogger(*verbose)
	defer logger.Sync()

	if *check != "" {
		if err := runCheck(*baseURL, *check); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		return
	}

	gin.SetMode(gin.ReleaseMode)
	svc := newFakeService(fakeConfig{ProcessingTime: *processing, FailTranscription: *failAll}, logger)
	srv := &http.Server{Addr: *addr, Handler: svc.router(), ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("fake summary service listening", zap.String("addr", *addr), zap.Duration("processing", *processing))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// runCheck exercises a running service the way the summarization worker does.
func runCheck(baseURL, audioFile string) error {
	client := summary.NewClient(summary.Config{BaseURL: baseURL, Timeout: 30 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	absPath, err := filepath.Abs(audioFile)
	if err != nil {
		return err
	}
	f, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("audio file not found: %w", err)
	}
	defer f.Close()

	fmt.Printf("📁 Uploading %s\n", filepath.Base(absPath))
	start := time.Now()
	up, err := client.Upload(ctx, filepath.Base(absPath), f)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if !up.Success || up.AudioID == "" {
		return fmt.Errorf("upload rejected: %s", up.Message)
	}
	fmt.Printf("✅ Uploaded as %s (%v)\n", up.AudioID, time.Since(start))

	tr, err := client.StartTranscription(ctx, up.AudioID)
	if err != nil {
		return fmt.Errorf("transcription start failed: %w", err)
	}
	if !tr.Success {
		return fmt.Errorf("transcription rejected: %s", tr.Message)
	}
	fmt.Printf("🎵 Transcription started (estimated %s)\n", tr.EstimatedTime)

	for attempt := 1; attempt <= 12; attempt++ {
		resp, err := client.GetSummary(ctx, up.AudioID)
		if err != nil {
			return fmt.Errorf("poll %d failed: %w", attempt, err)
		}
		if resp.Completed() {
			fmt.Printf("✅ Summary ready after %d polls (%v)\n", attempt, time.Since(start))
			fmt.Printf("📝 %s\n", resp.Summary.Text)
			return nil
		}
		fmt.Printf("⏳ Poll %d: %s\n", attempt, resp.Status)
		time.Sleep(5 * time.Second)
	}
	return fmt.Errorf("summary not ready after 12 polls")
}
