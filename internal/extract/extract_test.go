package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

// createTestDocx builds a minimal DOCX archive in memory.
func createTestDocx(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

func TestDetectMediaType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
		wantOK   bool
	}{
		{
			name:     "plain text",
			filename: "notes.txt",
			want:     MediaTypeText,
			wantOK:   true,
		},
		{
			name:     "markdown",
			filename: "README.md",
			want:     MediaTypeMarkdown,
			wantOK:   true,
		},
		{
			name:     "long markdown extension",
			filename: "guide.markdown",
			want:     MediaTypeMarkdown,
			wantOK:   true,
		},
		{
			name:     "pdf",
			filename: "report.pdf",
			want:     MediaTypePDF,
			wantOK:   true,
		},
		{
			name:     "docx",
			filename: "letter.docx",
			want:     MediaTypeDocx,
			wantOK:   true,
		},
		{
			name:     "uppercase extension",
			filename: "REPORT.PDF",
			want:     MediaTypePDF,
			wantOK:   true,
		},
		{
			name:     "unsupported extension",
			filename: "image.png",
			want:     "",
			wantOK:   false,
		},
		{
			name:     "no extension",
			filename: "Makefile",
			want:     "",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectMediaType(tt.filename)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("DetectMediaType(%q) = (%q, %v), want (%q, %v)", tt.filename, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	supported := []string{MediaTypeText, MediaTypeMarkdown, MediaTypePDF, MediaTypeDocx}
	for _, mediaType := range supported {
		if !IsSupported(mediaType) {
			t.Errorf("IsSupported(%q) = false, want true", mediaType)
		}
	}
	if IsSupported("image/png") {
		t.Error("IsSupported(image/png) = true, want false")
	}
}

func TestExtractor_Extract_PlainText(t *testing.T) {
	extractor := NewExtractor()

	content := "This is a plain text document with enough readable content."
	got, err := extractor.Extract([]byte(content), MediaTypeText, "notes.txt")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != content {
		t.Errorf("Extract() = %q, want %q", got, content)
	}
}

func TestExtractor_Extract_Markdown(t *testing.T) {
	extractor := NewExtractor()

	content := `# Project Overview

This paragraph describes the project in plain words.

- first item
- second item

` + "```go\nfunc main() {}\n```\n"

	got, err := extractor.Extract([]byte(content), MediaTypeMarkdown, "overview.md")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for _, want := range []string{"Project Overview", "describes the project", "first item", "second item", "func main() {}"} {
		if !strings.Contains(got, want) {
			t.Errorf("Extract() output missing %q, got %q", want, got)
		}
	}
	for _, markup := range []string{"#", "```", "- first"} {
		if strings.Contains(got, markup) {
			t.Errorf("Extract() output kept markup %q, got %q", markup, got)
		}
	}
}

func TestExtractor_Extract_MarkdownParagraphBreaks(t *testing.T) {
	extractor := NewExtractor()

	content := "First paragraph of the document text.\n\nSecond paragraph of the document text."
	got, err := extractor.Extract([]byte(content), MediaTypeMarkdown, "two.md")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.Contains(got, "\n\n") {
		t.Errorf("Extract() should separate paragraphs with a blank line, got %q", got)
	}
}

func TestExtractor_Extract_Docx(t *testing.T) {
	extractor := NewExtractor()

	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>The first paragraph of the letter.</w:t></w:r></w:p>
<w:p><w:r><w:t>The second paragraph carries on.</w:t></w:r></w:p>
</w:body>
</w:document>`

	got, err := extractor.Extract(createTestDocx(docXML), MediaTypeDocx, "letter.docx")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := "The first paragraph of the letter.\nThe second paragraph carries on."
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractor_Extract_DocxNotAnArchive(t *testing.T) {
	extractor := NewExtractor()

	got, err := extractor.Extract([]byte("not a zip archive"), MediaTypeDocx, "broken.docx")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "broken.docx") {
		t.Errorf("Extract() = %q, want placeholder naming the file", got)
	}
}

func TestExtractor_Extract_PDFGarbage(t *testing.T) {
	extractor := NewExtractor()

	got, err := extractor.Extract([]byte("%PDF-1.4 garbage that is not a real pdf"), MediaTypePDF, "scan.pdf")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "scan.pdf") {
		t.Errorf("Extract() = %q, want placeholder naming the file", got)
	}
}

func TestExtractor_Extract_UnknownMediaType(t *testing.T) {
	extractor := NewExtractor()

	got, err := extractor.Extract([]byte("binary payload"), "image/png", "photo.png")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "photo.png") {
		t.Errorf("Extract() = %q, want placeholder naming the file", got)
	}
}

func TestExtractor_Extract_LowConfidence(t *testing.T) {
	extractor := NewExtractor()

	got, err := extractor.Extract([]byte("12345 67890 !!! ???"), MediaTypeText, "numbers.txt")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "numbers.txt") {
		t.Errorf("Extract() = %q, want placeholder naming the file", got)
	}
}

func TestHasReadableText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "empty",
			text: "",
			want: false,
		},
		{
			name: "digits and punctuation only",
			text: "123 456 789 !!!",
			want: false,
		},
		{
			name: "just below threshold",
			text: strings.Repeat("a", minAlphabeticRunes-1),
			want: false,
		},
		{
			name: "at threshold",
			text: strings.Repeat("a", minAlphabeticRunes),
			want: true,
		},
		{
			name: "letters spread through noise",
			text: "1a2b3c4d5e6f7g8h9i0j 1k2l3m4n5o6p7q8r9s0t 1u2v3w4x5y",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasReadableText(tt.text); got != tt.want {
				t.Errorf("hasReadableText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
