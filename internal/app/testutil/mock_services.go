package testutil

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"

	"voicenotes/internal/app/api/summary"
	"voicenotes/internal/app/model"
)

// MockSummaryAPI is a testify mock of summary.API.
type MockSummaryAPI struct {
	mock.Mock
}

func NewMockSummaryAPI(t *testing.T) *MockSummaryAPI {
	m := &MockSummaryAPI{}
	m.Test(t)
	return m
}

func (m *MockSummaryAPI) Upload(ctx context.Context, fileName string, audio io.Reader) (*summary.UploadResponse, error) {
	args := m.Called(ctx, fileName, audio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summary.UploadResponse), args.Error(1)
}

func (m *MockSummaryAPI) StartTranscription(ctx context.Context, audioID string) (*summary.TranscriptionResponse, error) {
	args := m.Called(ctx, audioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summary.TranscriptionResponse), args.Error(1)
}

func (m *MockSummaryAPI) GetSummary(ctx context.Context, audioID string) (*summary.SummaryResponse, error) {
	args := m.Called(ctx, audioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summary.SummaryResponse), args.Error(1)
}

func (m *MockSummaryAPI) GetStatus(ctx context.Context, audioID string) (*summary.StatusResponse, error) {
	args := m.Called(ctx, audioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summary.StatusResponse), args.Error(1)
}

// MockUploader is a testify mock of the orchestrator's uploader dependency.
type MockUploader struct {
	mock.Mock
}

func NewMockUploader(t *testing.T) *MockUploader {
	m := &MockUploader{}
	m.Test(t)
	return m
}

func (m *MockUploader) UploadAudioRecord(ctx context.Context, record *model.AudioRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
