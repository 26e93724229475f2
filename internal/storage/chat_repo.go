package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_store.go -package=mocks docqa/internal/storage ChatStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ChatStore defines the interface for chat message storage operations.
type ChatStore interface {
	// CreateChatMessage inserts a message and assigns its ID and creation time.
	CreateChatMessage(ctx context.Context, msg *ChatMessage) error
	// ListChatMessages returns messages oldest first. A nil owner returns
	// every message; a non-nil owner returns only that owner's messages.
	ListChatMessages(ctx context.Context, owner *string) ([]ChatMessage, error)
	// ClearChatMessages deletes the messages visible to the given owner.
	ClearChatMessages(ctx context.Context, owner *string) error
}

// ChatRepo is the SQLite-backed ChatStore.
type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) CreateChatMessage(ctx context.Context, msg *ChatMessage) error {
	var sources sql.NullString
	if msg.Sources != nil {
		data, err := json.Marshal(msg.Sources)
		if err != nil {
			return fmt.Errorf("marshal sources: %w", err)
		}
		sources = sql.NullString{String: string(data), Valid: true}
	}
	msg.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO chat_messages (content, role, owner, sources, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.Content, msg.Role, ownerParam(msg.Owner), sources, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("chat message id: %w", err)
	}
	msg.ID = id
	return nil
}

func (r *ChatRepo) ListChatMessages(ctx context.Context, owner *string) ([]ChatMessage, error) {
	query := "SELECT id, content, role, owner, sources, created_at FROM chat_messages"
	args := []any{}
	if owner != nil {
		query += " WHERE owner = ?"
		args = append(args, *owner)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	msgs := []ChatMessage{}
	for rows.Next() {
		var msg ChatMessage
		var ownerCol, sources sql.NullString
		err := rows.Scan(&msg.ID, &msg.Content, &msg.Role, &ownerCol, &sources, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if ownerCol.Valid {
			msg.Owner = &ownerCol.String
		}
		if sources.Valid {
			if err := json.Unmarshal([]byte(sources.String), &msg.Sources); err != nil {
				return nil, fmt.Errorf("unmarshal sources: %w", err)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *ChatRepo) ClearChatMessages(ctx context.Context, owner *string) error {
	query := "DELETE FROM chat_messages"
	args := []any{}
	if owner != nil {
		query += " WHERE owner = ?"
		args = append(args, *owner)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear chat messages: %w", err)
	}
	return nil
}
