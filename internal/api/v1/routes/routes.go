package routes

import (
	"github.com/gin-gonic/gin"

	"voicenotes/internal/api/v1/handlers"
	"voicenotes/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	NoteService  services.NoteService
	AudioService services.AudioService
	// Events is optional; without it /events is not registered.
	Events handlers.ChangeSource
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	noteHandler := handlers.NewNoteHandler(container.NoteService)
	notes := router.Group("/notes")
	{
		notes.GET("", noteHandler.List)
		notes.POST("", noteHandler.Create)
		notes.GET("/:id", noteHandler.Get)
		notes.PATCH("/:id", noteHandler.Update)
		notes.DELETE("/:id", noteHandler.Delete)
		notes.POST("/:id/audio", noteHandler.AddAudio)
	}

	audioHandler := handlers.NewAudioHandler(container.AudioService)
	audio := router.Group("/audio")
	{
		audio.GET("/:id", audioHandler.Get)
		audio.PATCH("/:id", audioHandler.Update)
		audio.DELETE("/:id", audioHandler.Delete)
		audio.POST("/:id/summarize", audioHandler.Summarize)
		audio.POST("/:id/resummarize", audioHandler.ReSummarize)
		audio.POST("/:id/refresh", audioHandler.Refresh)
	}
	router.POST("/sync", audioHandler.Sync)

	if container.Events != nil {
		eventsHandler := handlers.NewEventsHandler(container.Events)
		router.GET("/events", eventsHandler.Stream)
	}
}
