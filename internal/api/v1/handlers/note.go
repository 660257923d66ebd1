package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicenotes/internal/api/middleware"
	"voicenotes/internal/api/v1/dto"
	"voicenotes/internal/api/v1/services"
)

const noteResource = "note"

// NoteHandler handles note endpoints
type NoteHandler struct {
	service services.NoteService
}

func NewNoteHandler(service services.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

// List handles GET /api/v1/notes
//
// @Summary List notes
// @Description Lists every note, newest first, with its audio record count
// @Tags notes
// @Produce json
// @Success 200 {object} dto.ListNotesResponse "Notes"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response, err := h.service.ListNotes(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Create handles POST /api/v1/notes
//
// @Summary Create a note
// @Tags notes
// @Accept json
// @Produce json
// @Param note body dto.CreateNoteRequest true "Note title"
// @Success 201 {object} dto.NoteResponse "Note created"
// @Failure 400 {object} errors.APIError "Bad request - malformed body"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}

	response, err := h.service.CreateNote(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /api/v1/notes/:id
//
// @Summary Get a note with its audio records
// @Description The first load of a note resumes summaries an earlier run left queued or processing
// @Tags notes
// @Produce json
// @Param id path int true "Note ID" minimum(1)
// @Success 200 {object} dto.NoteResponse "Note details"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID"
// @Failure 404 {object} errors.APIError "Note not found"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}

	response, err := h.service.GetNote(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Update handles PATCH /api/v1/notes/:id
//
// @Summary Rename a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path int true "Note ID" minimum(1)
// @Param note body dto.UpdateNoteRequest true "New title"
// @Success 200 {object} dto.NoteResponse "Updated note"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID or body"
// @Failure 404 {object} errors.APIError "Note not found"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /notes/{id} [patch]
func (h *NoteHandler) Update(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}

	var req dto.UpdateNoteRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}

	response, err := h.service.UpdateNote(c.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /api/v1/notes/:id
//
// @Summary Delete a note
// @Description Deletes the note, its audio records and their files
// @Tags notes
// @Param id path int true "Note ID" minimum(1)
// @Success 204 "Note deleted"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID"
// @Failure 404 {object} errors.APIError "Note not found"
// @Failure 409 {object} errors.APIError "A record of the note has a summary in progress"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}

	if err := h.service.DeleteNote(c.Request.Context(), id); err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddAudio handles POST /api/v1/notes/:id/audio
//
// @Summary Attach an audio file to a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path int true "Note ID" minimum(1)
// @Param audio body dto.AddAudioRecordRequest true "Audio file on the server host"
// @Success 201 {object} dto.AudioRecordResponse "Audio record created"
// @Failure 400 {object} errors.APIError "Bad request - file missing or not a file"
// @Failure 404 {object} errors.APIError "Note not found"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /notes/{id}/audio [post]
func (h *NoteHandler) AddAudio(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}

	var req dto.AddAudioRecordRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}

	response, err := h.service.AddAudioRecord(c.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleError(c, err, noteResource)
		return
	}
	c.JSON(http.StatusCreated, response)
}
