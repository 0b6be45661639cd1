package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relsync/internal/config"
	"relsync/internal/handler"
	"relsync/internal/repository/sqlite"
	"relsync/internal/service"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Config file path (overrides search)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting relsync server...")

	// Load configuration
	var cfg *config.Config
	var cfgPath string
	var err error
	if *configPath != "" {
		cfg, cfgPath, err = config.LoadFromPath(*configPath)
	} else {
		cfg, cfgPath, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgPath != "" {
		log.Printf("Config loaded: %s", cfgPath)
	} else {
		log.Println("No config file found, using defaults")
	}

	// Flags override config
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Initialize SQLite store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize event bus and service
	eventBus := service.NewEventBus()
	blogSvc := service.NewBlogService(store, eventBus)

	// Initialize HTTP handlers
	blogHandler := handler.NewBlogHandler(blogSvc)
	eventStream := handler.NewEventStream(eventBus)

	// Setup routes
	mux := http.NewServeMux()

	// Post endpoints
	mux.HandleFunc("POST /api/posts", blogHandler.CreatePost)
	mux.HandleFunc("GET /api/posts", blogHandler.ListPosts)
	mux.HandleFunc("GET /api/posts/{id}", blogHandler.GetPost)
	mux.HandleFunc("DELETE /api/posts/{id}", blogHandler.DeletePost)

	// Tag endpoints
	mux.HandleFunc("POST /api/tags", blogHandler.CreateTag)
	mux.HandleFunc("GET /api/tags", blogHandler.ListTags)
	mux.HandleFunc("GET /api/tags/{id}", blogHandler.GetTag)
	mux.HandleFunc("DELETE /api/tags/{id}", blogHandler.DeleteTag)

	// Relationship endpoints
	mux.HandleFunc("PUT /api/posts/{id}/tags/{tagID}", blogHandler.TagPost)
	mux.HandleFunc("DELETE /api/posts/{id}/tags/{tagID}", blogHandler.UntagPost)

	// Import/export endpoints
	mux.HandleFunc("GET /api/export/yaml", blogHandler.ExportYAML)
	mux.HandleFunc("GET /api/export/json", blogHandler.ExportJSON)
	mux.HandleFunc("POST /api/import/yaml", blogHandler.ImportYAML)
	mux.HandleFunc("POST /api/import/json", blogHandler.ImportJSON)

	// SSE events endpoint
	mux.Handle("GET /events", eventStream)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
