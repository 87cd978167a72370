package reminder

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository persists the set of chats that receive the daily menu prompt.
// Subscriptions survive restarts, unlike the in-memory ordering sessions.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps the shared database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Subscribe registers a chat for daily prompts. Subscribing twice is a no-op.
func (r *Repository) Subscribe(ctx context.Context, chatID int64) error {
	const q = `INSERT INTO reminder_chats (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, q, chatID); err != nil {
		return fmt.Errorf("subscribe chat %d: %w", chatID, err)
	}
	return nil
}

// Unsubscribe removes a chat from the daily prompt list.
func (r *Repository) Unsubscribe(ctx context.Context, chatID int64) error {
	const q = `DELETE FROM reminder_chats WHERE chat_id = $1`
	if _, err := r.db.ExecContext(ctx, q, chatID); err != nil {
		return fmt.Errorf("unsubscribe chat %d: %w", chatID, err)
	}
	return nil
}

// List returns every subscribed chat.
func (r *Repository) List(ctx context.Context) ([]int64, error) {
	var ids []int64
	const q = `SELECT chat_id FROM reminder_chats ORDER BY chat_id`
	if err := r.db.SelectContext(ctx, &ids, q); err != nil {
		return nil, fmt.Errorf("list reminder chats: %w", err)
	}
	return ids, nil
}
