package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"questionforge/internal/extract"
	"questionforge/internal/gemini"
	"questionforge/internal/models"

	"github.com/gin-gonic/gin"
)

// maxUploadSize bounds how much of an upload is held in memory (32 MB).
const maxUploadSize = 32 << 20

// previewLength is how much extracted text is echoed back after an upload.
const previewLength = 2000

// HandleUploadDocument accepts a multipart upload, extracts its text and
// makes it the session's current working document.
func (h *Handler) HandleUploadDocument(c *gin.Context) {
	state := sessionState(c)

	// 1. Pull the uploaded file out of the multipart form
	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		h.respondError(c, http.StatusBadRequest, models.CodeExtractionFailed,
			fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.respondError(c, http.StatusBadRequest, models.CodeExtractionFailed,
			fmt.Errorf("missing uploaded file: %w", err))
		return
	}
	defer file.Close()

	if header.Size == 0 {
		h.respondError(c, http.StatusBadRequest, models.CodeExtractionFailed,
			fmt.Errorf("file %s is empty", header.Filename))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, models.CodeExtractionFailed,
			fmt.Errorf("failed to read file %s: %w", header.Filename, err))
		return
	}

	// 2. Extract text for the declared extension
	text, err := h.Extractor.Extract(header.Filename, data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			h.respondError(c, http.StatusBadRequest, models.CodeUnsupportedFileType, err)
			return
		}
		h.respondError(c, http.StatusUnprocessableEntity, models.CodeExtractionFailed, err)
		return
	}
	if text == "" {
		h.respondError(c, http.StatusUnprocessableEntity, models.CodeExtractionFailed,
			fmt.Errorf("no text could be extracted from %s", header.Filename))
		return
	}

	// 3. The new document supersedes the previous one
	state.SetDocument(header.Filename, text)
	log.Printf("INFO: Processed %s for session %s (%d characters)", header.Filename, sessionID(c), len(text))

	preview, _ := gemini.TruncateRunes(text, previewLength)

	c.JSON(http.StatusOK, models.DocumentResponse{
		FileName:  header.Filename,
		CharCount: len(text),
		Size:      sizeLabel(len(text)),
		Preview:   preview,
	})
}

// HandleSessionStatus reports the session's current document, generation
// counter and saved-context summaries.
func (h *Handler) HandleSessionStatus(c *gin.Context) {
	state := sessionState(c)

	fileName, text := state.Document()
	saved := state.SavedContexts()

	summaries := make([]models.ContextSummary, 0, len(saved))
	for _, s := range saved {
		summaries = append(summaries, models.ContextSummary{
			Key:       s.Key,
			File:      s.File,
			Timestamp: s.Timestamp,
			Size:      s.Size,
		})
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		CurrentFile:     fileName,
		CharCount:       len(text),
		GenerationCount: state.GenerationCount(),
		SavedContexts:   summaries,
	})
}
