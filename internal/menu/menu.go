package menu

import (
	"fmt"
	"time"
)

// Status describes the menu lifecycle. CLOSED is terminal.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Item is a single orderable dish. Index is 1-based and stable for the
// lifetime of the menu.
type Item struct {
	Index int
	Name  string
}

// Menu owns the identity, item list and lifecycle status of one ordering
// session. The contents never change after creation; only Status moves.
type Menu struct {
	ID        string
	ChatID    int64
	MessageID int
	Items     []Item
	Status    Status
	CreatedAt time.Time
}

// DeriveID builds the menu identity from its chat and message coordinates.
// The pair is unique per live menu, which makes the identity unique too.
func DeriveID(chatID int64, messageID int) string {
	return fmt.Sprintf("%d:%d", chatID, messageID)
}

// ItemCount returns the number of items on the menu.
func (m *Menu) ItemCount() int { return len(m.Items) }

// ValidIndex reports whether idx addresses an item on this menu.
func (m *Menu) ValidIndex(idx int) bool {
	return idx >= 1 && idx <= len(m.Items)
}
