package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/quantrisk/riskscan/pkg/batch"
	"github.com/quantrisk/riskscan/pkg/clients"
	"github.com/quantrisk/riskscan/pkg/config"
	"github.com/quantrisk/riskscan/pkg/database"
	"github.com/quantrisk/riskscan/pkg/research"
	"github.com/quantrisk/riskscan/pkg/research/tools"
	"github.com/quantrisk/riskscan/pkg/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	cfg := config.Load()

	// LLM client
	llm, err := clients.FromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to init LLM client: %v", err)
	}

	searcher := tools.NewTavilySearch(cfg.TavilyApiKey)
	searcher.MaxResults = cfg.SearchMaxResults

	engine := &research.Engine{
		Queries:   &research.LLMQueryGenerator{LLM: llm},
		Search:    searcher,
		Grader:    &research.LLMGrader{LLM: llm},
		Extractor: &research.LLMExtractor{LLM: llm},
	}

	// Job store: Postgres when configured, in-memory otherwise.
	var store batch.Store = batch.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresDB(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(context.Background()); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		store = batch.NewPostgresStore(db)
	} else {
		log.Println("DATABASE_URL not set, job results are kept in memory only")
	}

	coordinator := batch.NewCoordinator(engine, cfg.WorkerConcurrency, slog.Default())
	svc := server.NewService(store, coordinator, slog.Default())
	handler := server.NewHandler(svc)

	// Web Server Setup
	r := gin.Default()

	// CORS Setup
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Allow all for dev
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	handler.RegisterRoutes(r)

	fmt.Printf("Server starting on port %s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
