package ingest

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the target fragment size in runes. It keeps
	// fragments comfortably inside typical embedding model windows.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is how many trailing runes of one fragment are
	// repeated at the start of the next so context survives the cut.
	DefaultChunkOverlap = 50
)

// Fragment is one window of document text produced by the chunker.
type Fragment struct {
	Index  int
	Text   string
	Length int
}

// Chunker splits extracted text into overlapping fragments. Sizes are
// measured in runes, not bytes, so multibyte text never splits inside a
// character.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap,
// falling back to the defaults when the values make no sense.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 10
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split cuts text into fragments of at most the configured size.
// Each cut prefers a paragraph boundary, then a line break, then a
// sentence end, and falls back to a hard cut. Consecutive fragments
// overlap by the configured amount. Whitespace-only input produces no
// fragments and trailing content is never dropped.
func (c *Chunker) Split(text string) []Fragment {
	if strings.TrimSpace(text) == "" {
		return []Fragment{}
	}

	runes := []rune(text)
	fragments := []Fragment{}

	emit := func(window []rune) {
		fragment := string(window)
		if strings.TrimSpace(fragment) == "" {
			return
		}
		fragments = append(fragments, Fragment{
			Index:  len(fragments),
			Text:   fragment,
			Length: utf8.RuneCountInString(fragment),
		})
	}

	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			emit(runes[start:])
			break
		}

		// A boundary inside the overlap tail would stall the window, so
		// only cuts past the overlap are honored.
		cut := end
		if boundary := boundaryCut(runes[start:end]); boundary > c.overlap {
			cut = start + boundary
		}
		emit(runes[start:cut])
		start = cut - c.overlap
	}

	return fragments
}

// boundaryCut finds the best cut offset inside a window, scanning from
// the back. It returns 0 when the window has no usable boundary.
func boundaryCut(window []rune) int {
	for i := len(window) - 2; i > 0; i-- {
		if window[i] == '\n' && window[i+1] == '\n' {
			return i + 2
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}
	for i := len(window) - 2; i > 0; i-- {
		if window[i] == '.' && window[i+1] == ' ' {
			return i + 2
		}
	}
	return 0
}
