package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"voicenotes/internal/app/model"
	"voicenotes/internal/app/summarizer"
)

type fakeSource struct {
	ch        chan summarizer.Change
	cancelled bool
}

func (f *fakeSource) Subscribe(buffer int) (<-chan summarizer.Change, func()) {
	return f.ch, func() { f.cancelled = true }
}

func TestEventsHandler_Stream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	source := &fakeSource{ch: make(chan summarizer.Change, 2)}
	source.ch <- summarizer.Change{
		Record: model.AudioRecord{ID: 3, NoteID: 1, SummaryStatus: model.SummaryCompleted, HasSummary: true},
		Fields: []string{summarizer.FieldSummaryStatus, summarizer.FieldHasSummary},
		Status: model.SummaryCompleted,
		At:     time.Unix(1700000000, 0).UTC(),
	}
	close(source.ch)

	router := gin.New()
	router.GET("/events", NewEventsHandler(source).Stream)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event:change")
	assert.Contains(t, body, `"recordId":3`)
	assert.Contains(t, body, `"status":"completed"`)
	assert.True(t, source.cancelled)
}
