package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

// AddMessage appends one turn. A single INSERT is atomic in SQLite, so
// concurrent appends from different front ends never lose rows.
func (r *MessagesRepo) AddMessage(ctx context.Context, role, content string) error {
	switch role {
	case core.RoleUser, core.RoleAssistant:
	default:
		return fmt.Errorf("invalid message role %q", role)
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO messages (role, content) VALUES (?, ?)`, role, content)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetMessages returns the newest limit messages in chronological order.
func (r *MessagesRepo) GetMessages(ctx context.Context, limit int) ([]core.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT id, role, content, created_at FROM messages ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		var content sql.NullString
		if err := rows.Scan(&msg.ID, &msg.Role, &content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Content = content.String
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest -> oldest from the query; providers want oldest first.
	slices.Reverse(messages)

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}
