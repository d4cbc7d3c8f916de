package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"questionforge/internal/extract"
	"questionforge/internal/gemini"
	"questionforge/internal/models"
	"questionforge/internal/r2"
	"questionforge/internal/session"

	"github.com/gin-gonic/gin"
)

// QuestionGenerator is what the handlers need from the generation backend.
// Satisfied by *gemini.Generator; tests substitute a mock.
type QuestionGenerator interface {
	Generate(ctx context.Context, apiKey string, req gemini.Request) (string, error)
}

// Handler contains the API handlers' dependencies.
type Handler struct {
	Extractor *extract.Extractor
	Generator QuestionGenerator
	Exporter  *r2.Client // nil when R2 is not configured

	// Now supplies the wall clock; tests replace it with a synthetic one.
	Now func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(extractor *extract.Extractor, generator QuestionGenerator, exporter *r2.Client) *Handler {
	return &Handler{
		Extractor: extractor,
		Generator: generator,
		Exporter:  exporter,
		Now:       time.Now,
	}
}

// sessionState returns the caller's session state, placed in the context by
// the SessionState middleware.
func sessionState(c *gin.Context) *session.State {
	return c.MustGet("sessionState").(*session.State)
}

// sessionID returns the caller's session ID.
func sessionID(c *gin.Context) string {
	return c.MustGet("sessionID").(string)
}

// apiKey resolves the Gemini credential for this request: the X-Api-Key
// header wins, the GEMINI_API_KEY environment variable is the fallback.
func apiKey(c *gin.Context) string {
	if key := c.GetHeader("X-Api-Key"); key != "" {
		return key
	}
	return os.Getenv("GEMINI_API_KEY")
}

// respondError logs the failure and writes the uniform error body.
func (h *Handler) respondError(c *gin.Context, statusCode int, code string, err error) {
	log.Printf("ERROR: %s: %v (session: %s, path: %s)", code, err, sessionID(c), c.Request.URL.Path)
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

func sizeLabel(chars int) string {
	return fmt.Sprintf("%.1f KB", float64(chars)/1024)
}
