package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docqa/internal/extract"
	"docqa/internal/ingest"
	"docqa/internal/rag"
	"docqa/internal/repository"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

// stubEngine answers every question with a bare done event.
type stubEngine struct{}

func (stubEngine) Answer(_ context.Context, _ *string, _ string, send func(rag.Event) error) error {
	return send(rag.Event{Type: rag.EventDone})
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func newTestDeps() *Deps {
	repo := repository.NewRepository(
		storage.NewMemoryDocumentStore(),
		storage.NewMemoryChunkStore(),
		storage.NewMemoryChatStore(),
		vectorstore.NewMemoryStore(),
		"documents",
	)
	pipeline := ingest.NewPipeline(repo, extract.NewExtractor(), stubEmbedder{}, 0, 0)
	return &Deps{
		Repo:           repo,
		Pipeline:       pipeline,
		Engine:         stubEngine{},
		MaxUploadBytes: 1 << 20,
	}
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(newTestDeps())

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	router := NewRouter(newTestDeps())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "GET /api/documents lists documents",
			method:     http.MethodGet,
			path:       "/api/documents",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/documents rejects non-multipart body",
			method:     http.MethodPost,
			path:       "/api/documents",
			body:       "not multipart",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /api/documents/{id} unknown document",
			method:     http.MethodGet,
			path:       "/api/documents/42",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "GET /api/documents/{id}/progress unknown document",
			method:     http.MethodGet,
			path:       "/api/documents/42/progress",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "DELETE /api/documents/{id} unknown document",
			method:     http.MethodDelete,
			path:       "/api/documents/42",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "GET /api/chat/messages lists messages",
			method:     http.MethodGet,
			path:       "/api/chat/messages",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/chat/messages rejects invalid body",
			method:     http.MethodPost,
			path:       "/api/chat/messages",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "DELETE /api/chat/messages clears messages",
			method:     http.MethodDelete,
			path:       "/api/chat/messages",
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /api/stats reports stats",
			method:     http.MethodGet,
			path:       "/api/stats",
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /api/health reports health",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/seed without configured dir",
			method:     http.MethodPost,
			path:       "/api/seed",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "PUT /api/documents method not allowed",
			method:     http.MethodPut,
			path:       "/api/documents",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/unknown",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	router := NewRouter(newTestDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}

	// Check a session identity was assigned
	var sessionAssigned bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			sessionAssigned = true
		}
	}
	if !sessionAssigned {
		t.Error("Router should assign a session identity cookie")
	}
}

func TestRouter_IdentityScopesDocuments(t *testing.T) {
	deps := newTestDeps()
	router := NewRouter(deps)

	alice := "session-a"
	doc := storage.Document{
		Name:      "alice.txt",
		Filename:  "alice.txt",
		MediaType: "text/plain",
		Size:      64,
		Owner:     &alice,
		Status:    storage.StatusCompleted,
	}
	if err := deps.Repo.CreateDocument(context.Background(), &doc); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	listDocuments := func(session string) []storage.Document {
		t.Helper()

		req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: session})
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("GET /api/documents status = %d, want %d", w.Code, http.StatusOK)
		}
		var docs []storage.Document
		if err := json.NewDecoder(w.Body).Decode(&docs); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return docs
	}

	if docs := listDocuments("session-a"); len(docs) != 1 {
		t.Errorf("owner listing returned %d documents, want 1", len(docs))
	}
	if docs := listDocuments("session-b"); len(docs) != 0 {
		t.Errorf("other session listing returned %d documents, want 0", len(docs))
	}
}
