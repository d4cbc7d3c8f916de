package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"questionforge/internal/models"
	"questionforge/internal/session"

	"github.com/gin-gonic/gin"
)

// HandleSaveContext snapshots the current working text as a saved context.
func (h *Handler) HandleSaveContext(c *gin.Context) {
	state := sessionState(c)

	saved, err := state.SaveContext(h.Now())
	if err != nil {
		if errors.Is(err, session.ErrNothingToSave) {
			h.respondError(c, http.StatusConflict, "", err)
			return
		}
		h.respondError(c, http.StatusInternalServerError, "", err)
		return
	}

	log.Printf("INFO: Saved context %s for session %s", saved.Key, sessionID(c))
	c.JSON(http.StatusCreated, models.ContextSummary{
		Key:       saved.Key,
		File:      saved.File,
		Timestamp: saved.Timestamp,
		Size:      saved.Size,
	})
}

// HandleListContexts lists the session's saved contexts (without content).
func (h *Handler) HandleListContexts(c *gin.Context) {
	state := sessionState(c)

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
	c.JSON(http.StatusOK, summaries)
}

// HandleLoadContext makes a saved context the current working document. The
// saved entry is kept.
func (h *Handler) HandleLoadContext(c *gin.Context) {
	state := sessionState(c)
	key := c.Param("key")

	loaded, ok := state.LoadContext(key)
	if !ok {
		h.respondError(c, http.StatusNotFound, "", fmt.Errorf("no saved context with key %q", key))
		return
	}

	log.Printf("INFO: Loaded context %s for session %s", key, sessionID(c))
	c.JSON(http.StatusOK, models.ContextSummary{
		Key:       loaded.Key,
		File:      loaded.File,
		Timestamp: loaded.Timestamp,
		Size:      loaded.Size,
	})
}

// HandleDeleteContext removes one saved context. Deleting an unknown key is
// a no-op, so the response is 204 either way.
func (h *Handler) HandleDeleteContext(c *gin.Context) {
	state := sessionState(c)
	state.DeleteContext(c.Param("key"))
	c.Status(http.StatusNoContent)
}

// HandleClearContexts empties all saved contexts and the working text. The
// generation counter is kept.
func (h *Handler) HandleClearContexts(c *gin.Context) {
	state := sessionState(c)
	state.ClearAll()
	log.Printf("INFO: Cleared all contexts for session %s", sessionID(c))
	c.Status(http.StatusNoContent)
}
