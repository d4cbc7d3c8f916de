package api

import (
	"log"
	"net/http"
	"os"
	"strings"

	"questionforge/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by SessionState.
const (
	SessionIDContextKey    = "sessionID"
	SessionStateContextKey = "sessionState"
)

// sessionIDKey is the cookie-session key holding the session's UUID.
const sessionIDKey = "sid"

// CORSMiddleware adds CORS headers to allow cross-origin requests from the
// configured frontend.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		frontendURL := os.Getenv("FRONTEND_URL")
		if frontendURL == "" {
			frontendURL = "http://localhost:5173"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", strings.TrimSuffix(frontendURL, "/"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Api-Key, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SessionState resolves the caller's session. First-time callers get a fresh
// UUID in their cookie session; the matching State is placed in the request
// context for the handlers.
func SessionState(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		sid, _ := sess.Get(sessionIDKey).(string)
		if sid == "" {
			sid = uuid.New().String()
			sess.Set(sessionIDKey, sid)
			if err := sess.Save(); err != nil {
				log.Printf("ERROR: Failed to save session cookie: %v", err)
			}
			log.Printf("INFO: New session %s", sid)
		}

		c.Set(SessionIDContextKey, sid)
		c.Set(SessionStateContextKey, manager.Get(sid))
		c.Next()
	}
}
