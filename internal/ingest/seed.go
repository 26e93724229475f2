package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"docqa/internal/contextutil"
	"docqa/internal/extract"
	"docqa/internal/storage"
)

// SeedDirectory ingests every supported file under dir as an unowned
// document. Files already seeded (an unowned document with the same
// filename and size exists) are skipped, so restarting the server does
// not duplicate them. Errors for individual files are logged but do not
// stop the walk.
func (p *Pipeline) SeedDirectory(ctx context.Context, dir string) error {
	logger := contextutil.LoggerFromContext(ctx)

	type seedFile struct {
		path      string
		name      string
		mediaType string
	}

	var files []seedFile
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		mediaType, ok := extract.DetectMediaType(d.Name())
		if !ok {
			return nil
		}
		files = append(files, seedFile{path: path, name: d.Name(), mediaType: mediaType})
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("failed to scan seed directory: %w", walkErr)
	}

	logger.InfoContext(ctx, "seeding documents", "dir", dir, "files", len(files))

	existing, err := p.repo.ListDocuments(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	seeded := make(map[string]bool)
	for _, doc := range existing {
		if doc.Owner == nil {
			seeded[fmt.Sprintf("%s:%d", doc.Filename, doc.Size)] = true
		}
	}

	var successCount, skipCount, errorCount int

	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := os.ReadFile(file.path)
		if err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to read seed file", "path", file.path, "error", err)
			continue
		}

		key := fmt.Sprintf("%s:%d", file.name, len(data))
		if seeded[key] {
			skipCount++
			logger.DebugContext(ctx, "skipping already seeded file", "filename", file.name)
			continue
		}

		doc := &storage.Document{
			Name:      file.name,
			Filename:  file.name,
			MediaType: file.mediaType,
			Size:      int64(len(data)),
		}
		if err := p.repo.CreateDocument(ctx, doc); err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to create seed document", "filename", file.name, "error", err)
			continue
		}

		if err := p.Process(ctx, doc.ID, data, file.mediaType, file.name); err != nil {
			errorCount++
			continue
		}

		seeded[key] = true
		successCount++
	}

	logger.InfoContext(ctx, "seeding completed",
		"dir", dir, "seeded", successCount, "skipped", skipCount, "errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("seeding completed with %d errors", errorCount)
	}
	return nil
}
