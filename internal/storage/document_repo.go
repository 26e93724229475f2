package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docqa/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// DocumentStore persists uploaded documents and their processing state.
type DocumentStore interface {
	// CreateDocument inserts a new document and assigns its ID and upload time.
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id int64) (*Document, error)
	// ListDocuments returns documents newest first. A nil owner returns
	// every document; a non-nil owner returns only that owner's documents.
	ListDocuments(ctx context.Context, owner *string) ([]Document, error)
	// UpdateDocument applies the non-nil fields of upd to the document.
	UpdateDocument(ctx context.Context, id int64, upd DocumentUpdate) error
	UpdateDocumentProgress(ctx context.Context, id int64, progress int, status *string) error
	DeleteDocument(ctx context.Context, id int64) error
}

// DocumentRepo is the SQLite-backed DocumentStore.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) CreateDocument(ctx context.Context, doc *Document) error {
	if doc.Status == "" {
		doc.Status = StatusProcessing
	}
	doc.UploadedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (name, filename, media_type, size, text, chunk_count, owner, uploaded_at, status, progress)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.Name, doc.Filename, doc.MediaType, doc.Size, doc.Text, doc.ChunkCount,
		ownerParam(doc.Owner), doc.UploadedAt, doc.Status, doc.Progress,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("document id: %w", err)
	}
	doc.ID = id
	return nil
}

func (r *DocumentRepo) GetDocument(ctx context.Context, id int64) (*Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, filename, media_type, size, text, chunk_count, owner, uploaded_at, status, progress
		FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepo) ListDocuments(ctx context.Context, owner *string) ([]Document, error) {
	query := `
		SELECT id, name, filename, media_type, size, text, chunk_count, owner, uploaded_at, status, progress
		FROM documents`
	args := []any{}
	if owner != nil {
		query += " WHERE owner = ?"
		args = append(args, *owner)
	}
	query += " ORDER BY uploaded_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) UpdateDocument(ctx context.Context, id int64, upd DocumentUpdate) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if upd.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *upd.Text)
	}
	if upd.ChunkCount != nil {
		sets = append(sets, "chunk_count = ?")
		args = append(args, *upd.ChunkCount)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Progress != nil {
		sets = append(sets, "progress = ?")
		args = append(args, *upd.Progress)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, "UPDATE documents SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireAffected(res)
}

func (r *DocumentRepo) UpdateDocumentProgress(ctx context.Context, id int64, progress int, status *string) error {
	return r.UpdateDocument(ctx, id, DocumentUpdate{Progress: &progress, Status: status})
}

func (r *DocumentRepo) DeleteDocument(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var owner sql.NullString
	err := row.Scan(&doc.ID, &doc.Name, &doc.Filename, &doc.MediaType, &doc.Size,
		&doc.Text, &doc.ChunkCount, &owner, &doc.UploadedAt, &doc.Status, &doc.Progress)
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		doc.Owner = &owner.String
	}
	return &doc, nil
}

func ownerParam(owner *string) sql.NullString {
	if owner == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *owner, Valid: true}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
