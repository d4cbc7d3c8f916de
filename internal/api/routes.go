package api

import (
	"questionforge/internal/api/handlers"
	"questionforge/internal/session"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, manager *session.Manager) {
	// Apply CORS middleware
	router.Use(CORSMiddleware())

	api := router.Group("/api")
	api.Use(SessionState(manager))
	{
		// Document upload + extraction
		api.POST("/documents", handler.HandleUploadDocument)

		// Session status (current file, counters, saved contexts)
		api.GET("/session", handler.HandleSessionStatus)

		// Saved-context management
		api.POST("/contexts", handler.HandleSaveContext)           // Save current context
		api.GET("/contexts", handler.HandleListContexts)           // List saved contexts
		api.POST("/contexts/:key/load", handler.HandleLoadContext) // Load a saved context
		api.DELETE("/contexts/:key", handler.HandleDeleteContext)  // Delete one saved context
		api.DELETE("/contexts", handler.HandleClearContexts)       // Clear all + reset working text

		// Question generation
		api.POST("/generate", handler.HandleGenerateQuestions)
		api.GET("/generations/latest/download", handler.HandleDownloadQuestions)
	}
}
