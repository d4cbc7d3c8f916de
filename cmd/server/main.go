package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"questionforge/internal/api"
	"questionforge/internal/api/handlers"
	"questionforge/internal/extract"
	"questionforge/internal/gemini"
	"questionforge/internal/r2"
	"questionforge/internal/session"

	sessions "github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const storeName = "questionforge_session"

var sessionSecretKey []byte

func init() {
	// Load environment variables FIRST
	log.Println("Attempting to load .env file...")
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		} else {
			log.Println("Warning: .env file not found. Relying on system environment variables.")
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Println("WARNING: SESSION_SECRET environment variable is not set or empty!")
	}
	sessionSecretKey = []byte(secret)

	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Println("WARNING: GEMINI_API_KEY is not set; requests must supply an X-Api-Key header.")
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the R2 exporter (nil when not configured)
	exporter, err := r2.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize R2 client: %v", err)
	}

	// Set up Gin router
	router := gin.Default()

	// --- Session Configuration ---
	// Sessions are in-memory on purpose: session state does not survive a
	// restart.
	store := memstore.NewStore(sessionSecretKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400, // 1 day
		Secure:   false, // TODO: Set Secure=true in production (requires HTTPS)
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(storeName, store))

	// Set up API handlers
	manager := session.NewManager(24 * time.Hour)
	handler := handlers.NewHandler(extract.New(), gemini.NewGenerator(), exporter)
	api.SetupRoutes(router, handler, manager)

	// Get port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give server 5 seconds to shut down gracefully
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
