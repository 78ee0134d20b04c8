package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"hukumchat-backend/handlers"
	"hukumchat-backend/repository"
	"hukumchat-backend/service"
	"hukumchat-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	ctx := context.Background()

	// Initialize dataset storage
	datasetStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	// Load datasets
	faqRepo := repository.NewFAQRepository(datasetStorage)
	faqRecords, err := faqRepo.Load(ctx,
		envOrDefault("FAQ_CSV", "kemenkum_faq.csv"),
		envOrDefault("FAQ_EXTRA_CSV", "djki_faq.csv"),
	)
	if err != nil {
		log.Fatalf("Failed to load FAQ dataset: %v", err)
	}
	log.Printf("FAQ dataset loaded: %d records", len(faqRecords))

	legalRepo := repository.NewLegalRepository(datasetStorage)
	legalRecords, err := legalRepo.Load(ctx, envOrDefault("LEGAL_CSV", "legal_kuhp.csv"))
	if err != nil {
		log.Fatalf("Failed to load legal dataset: %v", err)
	}
	log.Printf("Legal dataset loaded: %d records", len(legalRecords))

	// Initialize LLM completer
	completer, err := initCompleter(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	// Initialize services
	rewriteService := service.NewRewriteService(
		service.RewriteWithCompleter(completer),
	)

	chatLog := repository.NewChatLogRepository(envOrDefault("CHAT_LOG_PATH", "./logs.csv"))

	chatService, err := service.NewChatService(
		service.ChatWithFAQData(faqRecords),
		service.ChatWithLegalData(legalRecords),
		service.ChatWithRewriter(rewriteService),
		service.ChatWithLogger(chatLog),
		service.ChatWithPasswordIntercept(envOrDefault("PASSWORD_CLARIFY", "true") == "true"),
		service.ChatWithThresholds(
			envOrDefaultFloat("FAQ_MIN_SCORE", service.DefaultFAQMinScore),
			envOrDefaultFloat("LEGAL_MIN_SCORE", service.DefaultLegalMinScore),
		),
	)
	if err != nil {
		log.Fatalf("Failed to build chat service: %v", err)
	}
	log.Println("Similarity indexes built")

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService)

	// Setup Gin router
	r := gin.Default()
	r.Use(handlers.RequestID())

	r.GET("/health", chatHandler.Health)
	r.POST("/chat", chatHandler.Chat)

	// Static web UI, when present
	staticDir := envOrDefault("STATIC_DIR", "./static")
	if index := filepath.Join(staticDir, "index.html"); fileExists(index) {
		r.Static("/static", staticDir)
		r.GET("/", func(c *gin.Context) {
			c.File(index)
		})
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// initCompleter picks the external LLM provider from the environment.
// Ollama is the default; Gemini is opt-in via LLM_PROVIDER=gemini.
func initCompleter(ctx context.Context) (service.Completer, error) {
	switch envOrDefault("LLM_PROVIDER", "ollama") {
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Println("Warning: GEMINI_API_KEY not set")
		}
		completer, err := service.NewGeminiCompleter(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			return nil, err
		}
		log.Println("Gemini client initialized")
		return completer, nil
	default:
		completer := service.NewOllamaClient(
			os.Getenv("OLLAMA_URL"),
			envOrDefault("OLLAMA_MODEL", "tinyllama"),
		)
		log.Println("Ollama client initialized")
		return completer, nil
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
