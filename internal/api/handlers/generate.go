package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"questionforge/internal/gate"
	"questionforge/internal/gemini"
	"questionforge/internal/models"

	"github.com/gin-gonic/gin"
)

// quotaRemediation is the multi-step guidance shown on quota exhaustion.
var quotaRemediation = []string{
	"Wait 2 minutes - quota resets in 120 seconds",
	"Reduce questions - try fewer MCQs/short questions",
	"Upgrade - https://ai.google.dev/pricing",
	"Tomorrow - free quota resets daily",
}

// HandleGenerateQuestions runs one generation: validate parameters, consult
// the admission gate, call the model, store the output.
func (h *Handler) HandleGenerateQuestions(c *gin.Context) {
	state := sessionState(c)
	startTime := h.Now()

	// 1. Bind and validate parameters
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "", fmt.Errorf("invalid generation request: %w", err))
		return
	}

	// 2. There must be a working document
	fileName, sourceText := state.Document()
	if strings.TrimSpace(sourceText) == "" {
		h.respondError(c, http.StatusBadRequest, "",
			errors.New("no document content available; upload a document first"))
		return
	}

	// 3. Credential
	key := apiKey(c)
	if key == "" {
		h.respondError(c, http.StatusUnauthorized, "",
			errors.New("API key required: set the X-Api-Key header or GEMINI_API_KEY"))
		return
	}

	// 4. Admission gate. An Admitted decision also records the dispatch,
	// atomically, so the spacing rule holds even if the call fails and even
	// when requests from one session interleave.
	decision := state.TryAdmit(h.Now())
	switch decision.Status {
	case gate.Refused:
		wait := decision.WaitSeconds
		log.Printf("WARN: Generation refused for session %s, wait %ds", sessionID(c), wait)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:       fmt.Sprintf("Wait %ds before next request.", wait),
			Code:        models.CodeRateLimited,
			WaitSeconds: &wait,
		})
		return
	case gate.Locked:
		wait := decision.WaitSeconds
		log.Printf("WARN: Generation locked out for session %s, wait %ds", sessionID(c), wait)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:       fmt.Sprintf("Rate limited. Wait %ds.", wait),
			Code:        models.CodeLocked,
			WaitSeconds: &wait,
		})
		return
	}

	// 5. Run the generation
	output, err := h.Generator.Generate(c.Request.Context(), key, gemini.Request{
		SourceText: sourceText,
		MCQCount:   req.MCQCount,
		ShortCount: req.ShortCount,
		Difficulty: req.Difficulty,
		TopicFocus: req.TopicFocus,
	})
	if err != nil {
		h.respondGenerateError(c, err)
		return
	}

	// 6. Store the result and bump the counter
	downloadName := fmt.Sprintf("questions_%s_%s.txt", fileName, h.Now().Format("20060102_150405"))
	count := state.RecordGeneration(output, downloadName)
	elapsed := h.Now().Sub(startTime)
	log.Printf("INFO: Generated %d MCQs + %d short questions for session %s in %.1fs",
		req.MCQCount, req.ShortCount, sessionID(c), elapsed.Seconds())

	// 7. Fire-and-forget export of the questions file
	h.exportQuestions(sessionID(c), downloadName, output)

	c.JSON(http.StatusOK, models.GenerateResponse{
		Questions:       output,
		GenerationTime:  elapsed.Seconds(),
		GenerationCount: count,
		DownloadName:    downloadName,
	})
}

// respondGenerateError maps generation failures onto HTTP responses. A quota
// error also starts the admission lockout.
func (h *Handler) respondGenerateError(c *gin.Context, err error) {
	state := sessionState(c)

	switch {
	case errors.Is(err, gemini.ErrQuotaExceeded):
		state.RecordLockout(h.Now())
		log.Printf("ERROR: API quota exceeded for session %s, locking out for %s", sessionID(c), gate.LockoutDuration)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:       "API quota exceeded. The free tier rate limit has been reached temporarily.",
			Code:        models.CodeQuotaExceeded,
			Remediation: quotaRemediation,
		})
	case errors.Is(err, gemini.ErrModelUnavailable):
		h.respondError(c, http.StatusBadGateway, models.CodeModelUnavailable, err)
	default:
		h.respondError(c, http.StatusBadGateway, models.CodeGenerationFailed, err)
	}
}

// HandleDownloadQuestions serves the session's most recent generation as a
// plain-text attachment.
func (h *Handler) HandleDownloadQuestions(c *gin.Context) {
	state := sessionState(c)

	output, downloadName, ok := state.LastOutput()
	if !ok {
		h.respondError(c, http.StatusNotFound, "", errors.New("no questions generated yet"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(output))
}

// exportQuestions uploads the generated file to R2 in the background when
// export is configured.
func (h *Handler) exportQuestions(sessionID, downloadName, output string) {
	if h.Exporter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.Exporter.ExportQuestions(ctx, sessionID, downloadName, output); err != nil {
			log.Printf("ERROR: Failed to export questions for session %s: %v", sessionID, err)
		}
	}()
}
