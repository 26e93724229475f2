package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks docqa/internal/rag Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks docqa/internal/rag Generator

import (
	"context"
	"fmt"
	"math"
	"strings"

	"docqa/internal/contextutil"
	"docqa/internal/llm"
	"docqa/internal/repository"
	"docqa/internal/service"
	"docqa/internal/storage"
)

const (
	// DefaultTopK is how many retrieved chunks ground each answer.
	DefaultTopK = 5
	// DefaultHistoryLimit caps how many prior transcript entries are
	// replayed to the generator as conversation context.
	DefaultHistoryLimit = 10
	// excerptRunes bounds the citation excerpt taken from a chunk.
	excerptRunes = 200
)

// errorEventMessage is the user-facing text carried on an error event.
// The underlying cause goes to the log, not to the stream.
const errorEventMessage = "Failed to generate an answer. Please try again."

// noContextAnswer is streamed when retrieval finds nothing to ground
// the answer on.
const noContextAnswer = "I couldn't find any relevant information in your documents to answer this question."

// Embedder turns texts into fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator streams a chat completion fragment by fragment.
type Generator interface {
	StreamChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams, callback func(chunk string) error) error
}

// Engine answers questions over the stored documents.
type Engine interface {
	// Answer streams the answer to question as a sequence of events and
	// records both sides of the exchange in the chat transcript. A failure
	// after the user message is persisted is reported on the stream as an
	// error event and returned; the caller should only log it. An empty
	// question is rejected with a validation error before any side effect.
	Answer(ctx context.Context, owner *string, question string, send func(Event) error) error
}

// engine implements the Engine interface.
type engine struct {
	repo         *repository.Repository
	embedder     Embedder
	generator    Generator
	topK         int
	historyLimit int
}

// NewEngine creates a new query engine.
func NewEngine(repo *repository.Repository, embedder Embedder, generator Generator) Engine {
	return &engine{
		repo:         repo,
		embedder:     embedder,
		generator:    generator,
		topK:         DefaultTopK,
		historyLimit: DefaultHistoryLimit,
	}
}

// Answer runs the retrieval-augmented answer flow for one question.
func (e *engine) Answer(ctx context.Context, owner *string, question string, send func(Event) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(question) == "" {
		return &service.ValidationError{Field: "content", Message: "content must be a non-empty string"}
	}

	// The user's side of the exchange is persisted before anything can
	// fail, so it survives even when no answer is ever produced.
	userMsg := storage.ChatMessage{
		Content: question,
		Role:    storage.RoleUser,
		Owner:   owner,
	}
	if err := e.repo.CreateChatMessage(ctx, &userMsg); err != nil {
		return service.WrapError(err, "persist user message")
	}

	logger.InfoContext(ctx, "answer stream started", "question_length", len(question))

	// Embed the question
	embeddings, err := e.embedder.EmbedTexts(ctx, []string{question})
	if err == nil && len(embeddings) != 1 {
		err = fmt.Errorf("expected 1 embedding, got %d", len(embeddings))
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		_ = send(Event{Type: EventError, Message: errorEventMessage})
		return fmt.Errorf("%w: embed question: %v", service.ErrExternalService, err)
	}

	ranked, err := e.repo.FindSimilarChunks(ctx, embeddings[0], owner, e.topK)
	if err != nil {
		logger.ErrorContext(ctx, "similarity search failed", "error", err)
		_ = send(Event{Type: EventError, Message: errorEventMessage})
		return err
	}

	logger.InfoContext(ctx, "similarity search completed", "results_count", len(ranked), "k", e.topK)

	var answer string
	citations := make([]storage.Citation, 0, len(ranked))

	if len(ranked) == 0 {
		logger.InfoContext(ctx, "no search results found")
		answer = noContextAnswer
		if err := send(Event{Type: EventChunk, Content: answer}); err != nil {
			return fmt.Errorf("send answer: %w", err)
		}
	} else {
		// Conversation history gives the generator the ongoing thread.
		// The question itself was persisted above, so it is excluded here
		// and carried by the final grounded turn instead.
		history, err := e.repo.ListChatMessages(ctx, owner)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load chat history", "error", err)
			_ = send(Event{Type: EventError, Message: errorEventMessage})
			return service.WrapError(err, "load chat history")
		}
		recent := make([]storage.ChatMessage, 0, len(history))
		for _, msg := range history {
			if msg.ID == userMsg.ID {
				continue
			}
			recent = append(recent, msg)
		}
		if len(recent) > e.historyLimit {
			recent = recent[len(recent)-e.historyLimit:]
		}

		// Format context string
		var contextBuilder strings.Builder
		contextBuilder.WriteString("--- Context from documents ---\n\n")
		for _, rc := range ranked {
			contextBuilder.WriteString(fmt.Sprintf("[Document: %s] Chunk %d\n", rc.Chunk.Metadata.Filename, rc.Chunk.Metadata.ChunkIndex))
			contextBuilder.WriteString(fmt.Sprintf("Content: %s\n\n", rc.Chunk.Content))
		}
		contextBuilder.WriteString("--- End Context ---")

		systemPrompt := "You are a helpful assistant that answers questions based on the provided context from the user's documents. " +
			"Answer the question using only the information from the context below. If the context doesn't contain " +
			"enough information to answer the question, say so. Cite specific documents when possible."

		messages := make([]llm.Message, 0, len(recent)+2)
		messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
		for _, msg := range recent {
			messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
		}
		messages = append(messages, llm.Message{
			Role:    "user",
			Content: fmt.Sprintf("%s\n\n%s", question, contextBuilder.String()),
		})

		logger.InfoContext(ctx, "sending request to generator",
			"history_turns", len(recent),
			"chunks_included", len(ranked),
			"context_length", contextBuilder.Len(),
		)

		var answerBuilder strings.Builder
		sendFailed := false
		streamErr := e.generator.StreamChatWithMessages(ctx, messages, llm.ChatParams{
			Model:       "", // Use default from client
			MaxTokens:   0,  // No limit
			Temperature: 0.7,
		}, func(chunk string) error {
			if err := send(Event{Type: EventChunk, Content: chunk}); err != nil {
				sendFailed = true
				return err
			}
			answerBuilder.WriteString(chunk)
			return nil
		})
		if streamErr != nil {
			// A failed send means the caller is gone. Nothing is persisted
			// so the transcript never carries a truncated answer.
			if sendFailed || ctx.Err() != nil {
				logger.InfoContext(ctx, "answer stream abandoned by caller", "error", streamErr)
				return streamErr
			}
			logger.ErrorContext(ctx, "generator stream failed", "error", streamErr)
			_ = send(Event{Type: EventError, Message: errorEventMessage})
			return fmt.Errorf("%w: generate answer: %v", service.ErrExternalService, streamErr)
		}
		answer = answerBuilder.String()

		for _, rc := range ranked {
			citations = append(citations, storage.Citation{
				DocumentID:        rc.Chunk.DocumentID,
				Excerpt:           excerpt(rc.Chunk.Content),
				SimilarityPercent: int(math.Round(rc.Score * 100)),
				Metadata:          rc.Chunk.Metadata,
			})
		}
	}

	if err := send(Event{Type: EventSources, Sources: citations}); err != nil {
		return fmt.Errorf("send sources: %w", err)
	}
	if err := send(Event{Type: EventDone}); err != nil {
		return fmt.Errorf("send done: %w", err)
	}

	assistantMsg := storage.ChatMessage{
		Content: answer,
		Role:    storage.RoleAssistant,
		Owner:   owner,
		Sources: citations,
	}
	if err := e.repo.CreateChatMessage(ctx, &assistantMsg); err != nil {
		return service.WrapError(err, "persist assistant message")
	}

	logger.InfoContext(ctx, "answer stream completed",
		"answer_length", len(answer),
		"citations", len(citations),
	)
	return nil
}

// excerpt bounds citation text so transcripts stay small after the
// cited document is deleted.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptRunes {
		return content
	}
	return string(runes[:excerptRunes]) + "..."
}
