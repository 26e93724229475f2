package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Media types the extractor understands.
const (
	MediaTypeText     = "text/plain"
	MediaTypeMarkdown = "text/markdown"
	MediaTypePDF      = "application/pdf"
	MediaTypeDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// minAlphabeticRunes is the readability threshold. Extractions with fewer
// alphabetic runes degrade to the fallback placeholder.
const minAlphabeticRunes = 25

// DetectMediaType maps a filename extension to a supported media type.
func DetectMediaType(filename string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return MediaTypeText, true
	case ".md", ".markdown":
		return MediaTypeMarkdown, true
	case ".pdf":
		return MediaTypePDF, true
	case ".docx":
		return MediaTypeDocx, true
	default:
		return "", false
	}
}

// IsSupported reports whether the extractor handles the given media type.
func IsSupported(mediaType string) bool {
	switch mediaType {
	case MediaTypeText, MediaTypeMarkdown, MediaTypePDF, MediaTypeDocx:
		return true
	default:
		return false
	}
}

// Extractor converts uploaded file bytes into plain text.
type Extractor struct {
	parser goldmark.Markdown
	logger *slog.Logger
}

// NewExtractor creates an extractor for the supported media types.
func NewExtractor() *Extractor {
	return &Extractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
		logger: slog.Default(),
	}
}

// Extract returns best-effort plain text for the file. Unsupported media
// types, unparseable files, and extractions below the readability
// threshold all degrade to a clearly-marked placeholder instead of an
// error, so one bad file still flows through the pipeline.
func (e *Extractor) Extract(data []byte, mediaType, filename string) (string, error) {
	var extracted string

	switch mediaType {
	case MediaTypeText:
		extracted = string(data)
	case MediaTypeMarkdown:
		extracted = e.extractMarkdown(data)
	case MediaTypePDF:
		extracted = e.extractPDF(data)
	case MediaTypeDocx:
		extracted = e.extractDocx(data)
	default:
		e.logger.Warn("unsupported media type, using placeholder", "media_type", mediaType, "filename", filename)
		return placeholder(filename), nil
	}

	if !hasReadableText(extracted) {
		e.logger.Warn("extraction below readability threshold, using placeholder", "media_type", mediaType, "filename", filename)
		return placeholder(filename), nil
	}
	return extracted, nil
}

// extractMarkdown flattens markdown to plain text by walking the parsed
// AST. Headings, paragraphs, lists, code blocks, and tables are kept as
// text; markup is dropped.
func (e *Extractor) extractMarkdown(data []byte) string {
	reader := text.NewReader(data)
	doc := e.parser.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if block := blockText(node, data); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// blockText extracts the text content of one block-level node.
func blockText(n ast.Node, content []byte) string {
	var builder strings.Builder

	newline := func() {
		if builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n") {
			builder.WriteString("\n")
		}
	}

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			segment := v.Segment
			builder.Write(segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				builder.WriteString("\n")
			}
		case *ast.String:
			builder.Write(v.Value)
		case *ast.FencedCodeBlock:
			newline()
			writeNodeLines(&builder, v, content)
		case *ast.CodeBlock:
			newline()
			writeNodeLines(&builder, v, content)
		case *ast.ListItem:
			newline()
		default:
			if strings.Contains(node.Kind().String(), "TableRow") {
				newline()
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(builder.String())
}

// writeNodeLines copies a code block's raw lines into the builder.
func writeNodeLines(builder *strings.Builder, node ast.Node, content []byte) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		builder.Write(line.Value(content))
	}
}

// extractPDF walks every page and concatenates its plain text. The pdf
// library panics on some malformed files, so the walk is panic-guarded;
// any failure yields an empty string, which degrades to the placeholder.
func (e *Extractor) extractPDF(data []byte) (extracted string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf extraction panicked", "panic", r)
			extracted = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("failed to parse pdf", "error", err)
		return ""
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			e.logger.Warn("failed to extract pdf page", "page", i, "error", err)
			continue
		}

		builder.WriteString(pageText)
		builder.WriteString("\n\n")
	}
	return builder.String()
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraphXML `xml:"p"`
	} `xml:"body"`
}

type paragraphXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text []textXML `xml:"t"`
}

type textXML struct {
	Content string `xml:",chardata"`
}

// extractDocx opens the file as a zip archive and pulls the paragraph
// text out of word/document.xml.
func (e *Extractor) extractDocx(data []byte) string {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("failed to open docx archive", "error", err)
		return ""
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			e.logger.Warn("failed to open docx document part", "error", err)
			return ""
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			e.logger.Warn("failed to read docx document part", "error", err)
			return ""
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			e.logger.Warn("failed to parse docx document xml", "error", err)
			return ""
		}

		var builder strings.Builder
		for i, para := range doc.Body.Paragraphs {
			if i > 0 {
				builder.WriteString("\n")
			}
			for _, run := range para.Runs {
				for _, t := range run.Text {
					builder.WriteString(t.Content)
				}
			}
		}
		return builder.String()
	}
	return ""
}

// hasReadableText reports whether text carries enough alphabetic content
// to be worth indexing.
func hasReadableText(text string) bool {
	count := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			count++
			if count >= minAlphabeticRunes {
				return true
			}
		}
	}
	return false
}

// placeholder is stored in place of text we could not extract, so the
// document still completes processing and the failure is visible.
func placeholder(filename string) string {
	return fmt.Sprintf("[Unable to extract readable text from %s]", filename)
}
