package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicenotes/internal/api/middleware"
	"voicenotes/internal/api/v1/dto"
	"voicenotes/internal/api/v1/services"
)

const audioResource = "audio record"

// AudioHandler handles audio record and summarization endpoints
type AudioHandler struct {
	service services.AudioService
}

func NewAudioHandler(service services.AudioService) *AudioHandler {
	return &AudioHandler{service: service}
}

// Get handles GET /api/v1/audio/:id
//
// @Summary Get an audio record
// @Tags audio
// @Produce json
// @Param id path int true "Audio record ID" minimum(1)
// @Success 200 {object} dto.AudioRecordResponse "Audio record details"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID"
// @Failure 404 {object} errors.APIError "Audio record not found"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /audio/{id} [get]
func (h *AudioHandler) Get(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}

	response, err := h.service.GetAudioRecord(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Update handles PATCH /api/v1/audio/:id
//
// @Summary Edit an audio record
// @Description Edits the title, transcript text or summary text. Omitted fields are unchanged.
// @Tags audio
// @Accept json
// @Produce json
// @Param id path int true "Audio record ID" minimum(1)
// @Param edit body dto.UpdateAudioRecordRequest true "Fields to change"
// @Success 200 {object} dto.AudioRecordResponse "Updated audio record"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID or body"
// @Failure 404 {object} errors.APIError "Audio record not found"
// @Failure 409 {object} errors.APIError "Summary in progress, or no summary to edit"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /audio/{id} [patch]
func (h *AudioHandler) Update(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}

	var req dto.UpdateAudioRecordRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}

	response, err := h.service.UpdateAudioRecord(c.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /api/v1/audio/:id
//
// @Summary Delete an audio record
// @Description Deletes the record, then its audio file
// @Tags audio
// @Param id path int true "Audio record ID" minimum(1)
// @Success 204 "Audio record deleted"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID"
// @Failure 404 {object} errors.APIError "Audio record not found"
// @Failure 409 {object} errors.APIError "Summary in progress"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /audio/{id} [delete]
func (h *AudioHandler) Delete(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}

	if err := h.service.DeleteAudioRecord(c.Request.Context(), id); err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summarize handles POST /api/v1/audio/:id/summarize.
// 202 when queued, 409 when the record already has a summary or is in flight.
//
// @Summary Queue an audio record for summarization
// @Tags audio
// @Produce json
// @Param id path int true "Audio record ID" minimum(1)
// @Success 202 {object} dto.SummarizeResponse "Queued"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID"
// @Failure 404 {object} errors.APIError "Audio record not found"
// @Failure 409 {object} errors.APIError "Already summarized or in flight"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /audio/{id}/summarize [post]
func (h *AudioHandler) Summarize(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}

	response, err := h.service.Summarize(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}
	c.JSON(http.StatusAccepted, response)
}

// ReSummarize handles POST /api/v1/audio/:id/resummarize
//
// @Summary Discard the summary and queue the record again
// @Tags audio
// @Produce json
// @Param id path int true "Audio record ID" minimum(1)
// @Success 202 {object} dto.SummarizeResponse "Queued"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID"
// @Failure 404 {object} errors.APIError "Audio record not found"
// @Failure 409 {object} errors.APIError "Summary in progress"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /audio/{id}/resummarize [post]
func (h *AudioHandler) ReSummarize(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}

	response, err := h.service.ReSummarize(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}
	c.JSON(http.StatusAccepted, response)
}

// Refresh handles POST /api/v1/audio/:id/refresh
//
// @Summary Fetch the transcript and summary once
// @Description Asks the summarization service for the record's transcript and summary without queuing it. ready is false when the summary is not available yet.
// @Tags audio
// @Produce json
// @Param id path int true "Audio record ID" minimum(1)
// @Success 200 {object} dto.RefreshResponse "Stored record after the fetch"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID"
// @Failure 404 {object} errors.APIError "Audio record not found"
// @Failure 409 {object} errors.APIError "Summary in progress, or record not uploaded"
// @Failure 503 {object} errors.APIError "Summarization service unavailable"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /audio/{id}/refresh [post]
func (h *AudioHandler) Refresh(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}

	response, err := h.service.Refresh(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Sync handles POST /api/v1/sync
//
// @Summary Upload every record not yet uploaded
// @Description Records the summarizer is working on are skipped
// @Tags audio
// @Produce json
// @Success 200 {object} dto.SyncResponse "Upload counts"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /sync [post]
func (h *AudioHandler) Sync(c *gin.Context) {
	response, err := h.service.Sync(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err, audioResource)
		return
	}
	c.JSON(http.StatusOK, response)
}
