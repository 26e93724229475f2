package rag

import "docqa/internal/storage"

// Event types carried on an answer stream.
const (
	// EventChunk carries one fragment of generated answer text.
	EventChunk = "chunk"
	// EventSources carries the citations once generation completes.
	EventSources = "sources"
	// EventDone marks a successfully completed stream.
	EventDone = "done"
	// EventError replaces the remainder of the stream after a failure.
	EventError = "error"
)

// Event is one frame of a streamed answer. Exactly one of Content,
// Sources, or Message is populated depending on Type.
type Event struct {
	Type    string             `json:"type"`
	Content string             `json:"content,omitempty"`
	Sources []storage.Citation `json:"sources,omitempty"`
	Message string             `json:"message,omitempty"`
}
