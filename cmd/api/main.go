package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docqa/internal/config"
	"docqa/internal/extract"
	"docqa/internal/http"
	"docqa/internal/ingest"
	"docqa/internal/llm"
	"docqa/internal/rag"
	"docqa/internal/repository"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API provides document question answering over uploaded documents.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: DocQA API
//   description: |
//     Document question answering API. Upload documents, have them extracted,
//     chunked and embedded, then chat with an assistant that answers from the
//     indexed content with citations.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
//   - multipart/form-data
// produces:
//   - application/json
//   - text/event-stream

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize document storage
	var docStore storage.DocumentStore
	var chunkStore storage.ChunkStore
	var chatStore storage.ChatStore
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() {
			_ = db.Close()
		}()

		if err := storage.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		slog.Info("Database initialized", "path", cfg.DBPath)

		docStore = storage.NewDocumentRepo(db)
		chunkStore = storage.NewChunkRepo(db)
		chatStore = storage.NewChatRepo(db)
	default:
		docStore = storage.NewMemoryDocumentStore()
		chunkStore = storage.NewMemoryChunkStore()
		chatStore = storage.NewMemoryChatStore()
		slog.Info("In-memory storage initialized")
	}

	ctx := context.Background()

	// Initialize vector store
	var vectorStore vectorstore.VectorStore
	switch cfg.VectorBackend {
	case config.BackendQdrant:
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}

		// Ensure collection exists with correct vector size
		if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingDim); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingDim)
		vectorStore = qdrantStore
	default:
		vectorStore = vectorstore.NewMemoryStore()
		slog.Info("In-memory vector store initialized")
	}

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDim)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingDim {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingDim, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingDim)

	// Create repository over the selected backends
	repo := repository.NewRepository(docStore, chunkStore, chatStore, vectorStore, cfg.QdrantCollection)

	// Create ingestion pipeline
	pipeline := ingest.NewPipeline(repo, extract.NewExtractor(), embedder, cfg.ChunkSize, cfg.ChunkOverlap)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Create RAG engine
	ragEngine := rag.NewEngine(repo, embedder, llmClient)
	slog.Info("RAG engine initialized")

	// Create router with dependencies
	deps := &http.Deps{
		Repo:           repo,
		Pipeline:       pipeline,
		Engine:         ragEngine,
		SeedDir:        cfg.SeedDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	router := http.NewRouter(deps)

	// Start seeding in background after router is ready
	if cfg.SeedDir != "" {
		go func() {
			seedCtx := context.Background()
			slog.Info("Starting background seeding", "dir", cfg.SeedDir)
			if err := pipeline.SeedDirectory(seedCtx, cfg.SeedDir); err != nil {
				slog.Error("Seeding completed with errors", "error", err)
			} else {
				slog.Info("Seeding completed successfully")
			}
		}()
	}

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
