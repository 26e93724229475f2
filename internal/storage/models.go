package storage

import "time"

// Document processing lifecycle statuses. A document starts as
// StatusProcessing and ends in exactly one of StatusCompleted or
// StatusError; terminal statuses are never left.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Message roles for chat transcript entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Document represents an uploaded file and its processing state.
type Document struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`     // Display name derived from the filename
	Filename   string    `json:"filename"` // Original filename as uploaded
	MediaType  string    `json:"mediaType"`
	Size       int64     `json:"size"` // Upload size in bytes
	Text       string    `json:"text,omitempty"`
	ChunkCount int       `json:"chunkCount"`
	Owner      *string   `json:"owner,omitempty"` // Nil means unowned (globally visible)
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"` // 0-100 while processing, 0 after an error
}

// ChunkMetadata describes where a chunk came from within its document.
type ChunkMetadata struct {
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunkIndex"` // Zero-based ordinal within the document
	Length     int    `json:"length"`     // Content length in runes
}

// Chunk is a bounded fragment of a document's extracted text.
// An empty Embedding means embedding failed for this chunk: it stays
// stored and counted but is never returned by similarity search.
type Chunk struct {
	ID         int64         `json:"id"`
	DocumentID int64         `json:"documentId"`
	Content    string        `json:"content"`
	Embedding  []float32     `json:"embedding,omitempty"`
	Metadata   ChunkMetadata `json:"metadata"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Citation is a snapshot of a retrieved chunk attached to an assistant
// message. It must stay readable after the cited document is deleted.
type Citation struct {
	DocumentID        int64         `json:"documentId"`
	Excerpt           string        `json:"excerpt"`
	SimilarityPercent int           `json:"similarityPercent"`
	Metadata          ChunkMetadata `json:"metadata"`
}

// ChatMessage is one transcript entry. Sources is populated only on
// assistant messages.
type ChatMessage struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	Role      string     `json:"role"`
	Owner     *string    `json:"owner,omitempty"`
	Sources   []Citation `json:"sources,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// DocumentUpdate holds optional fields for a partial document update.
// Nil fields are left unchanged.
type DocumentUpdate struct {
	Text       *string
	ChunkCount *int
	Status     *string
	Progress   *int
}
