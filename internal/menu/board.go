package menu

import (
	"context"
	"sync"
	"time"

	"github.com/HenTyna/foot-auto-poll-bot/core/logger"
	"log/slog"
)

// Notifier receives display-refresh requests after a menu mutation.
// Implementations must not block; refreshes are fire-and-forget and are
// dispatched only after the per-menu critical section has been released.
type Notifier interface {
	RefreshDisplay(ctx context.Context, model RenderModel)
}

// Options configures a Board.
type Options struct {
	// MaxQty caps a single user's pending quantity per item.
	MaxQty   int
	Notifier Notifier
}

// Board tracks every live ordering session by menu identity. Menus persist
// for the process lifetime; there is no eviction.
//
// All mutations are serialized per menu through the session mutex, so
// concurrent button presses against the same menu cannot lose updates.
// Different menus share no mutable state and proceed in parallel.
type Board struct {
	mu       sync.RWMutex
	sessions map[string]*session
	maxQty   int
	notifier Notifier
}

// session is the unit of serialization: one menu plus all per-user state.
type session struct {
	mu   sync.Mutex
	menu *Menu

	// pending holds uncommitted quantities per user, private until voted.
	pending map[int64]map[int]int
	// votes holds each user's last committed quantities plus multiplicity.
	votes map[int64]*CommittedVote
	// voteOrder records users by their first successful vote, for stable summaries.
	voteOrder []int64
	// totals is the incrementally maintained per-item aggregate.
	totals map[int]int

	// halted marks a menu whose aggregate state failed verification.
	// Further mutation is refused; other menus are unaffected.
	halted bool
}

// CommittedVote is a user's confirmed selection on one menu.
type CommittedVote struct {
	UserID      int64
	DisplayName string
	// Quantities maps item index to the committed quantity.
	Quantities map[int]int
	// Times counts how often the user has voted for each item.
	Times map[int]int
}

// NewBoard creates an empty board.
func NewBoard(opts Options) *Board {
	if opts.MaxQty <= 0 {
		opts.MaxQty = 3
	}
	return &Board{
		sessions: make(map[string]*session),
		maxQty:   opts.MaxQty,
		notifier: opts.Notifier,
	}
}

// MaxQty returns the per-item quantity cap.
func (b *Board) MaxQty() int { return b.maxQty }

// Create registers a new OPEN menu derived from the chat and message
// coordinates. The identity must not collide with any known menu, open or
// closed.
func (b *Board) Create(ctx context.Context, chatID int64, messageID int, names []string) (*Menu, error) {
	items := make([]Item, len(names))
	for i, name := range names {
		items[i] = Item{Index: i + 1, Name: name}
	}
	m := &Menu{
		ID:        DeriveID(chatID, messageID),
		ChatID:    chatID,
		MessageID: messageID,
		Items:     items,
		Status:    StatusOpen,
		CreatedAt: time.Now(),
	}

	b.mu.Lock()
	if _, exists := b.sessions[m.ID]; exists {
		b.mu.Unlock()
		logger.Warn(ctx, "service.menus", "menu.create.duplicate",
			slog.String("menu_id", m.ID),
		)
		return nil, ErrDuplicateMenuIdentity
	}
	b.sessions[m.ID] = &session{
		menu:    m,
		pending: make(map[int64]map[int]int),
		votes:   make(map[int64]*CommittedVote),
		totals:  make(map[int]int),
	}
	b.mu.Unlock()

	logger.Info(ctx, "service.menus", "menu.created",
		slog.String("menu_id", m.ID),
		slog.Int("items", len(items)),
	)
	return m, nil
}

// Lookup returns a copy of the menu header for the given identity.
func (b *Board) Lookup(menuID string) (*Menu, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.menu
	return &cp, nil
}

// Close transitions the menu to CLOSED. Closing an already-closed menu is a
// no-op and reports changed=false. On transition the display is refreshed so
// the boundary can drop the inline keyboard.
func (b *Board) Close(ctx context.Context, menuID string) (RenderModel, bool, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return RenderModel{}, false, err
	}

	s.mu.Lock()
	if s.menu.Status == StatusClosed {
		model := s.renderLocked()
		s.mu.Unlock()
		logger.Debug(ctx, "service.menus", "menu.close.noop",
			slog.String("menu_id", menuID),
		)
		return model, false, nil
	}
	s.menu.Status = StatusClosed
	model := s.renderLocked()
	s.mu.Unlock()

	logger.Info(ctx, "service.menus", "menu.closed",
		slog.String("menu_id", menuID),
		slog.Int("voters", model.Voters),
	)
	b.refresh(ctx, model)
	return model, true, nil
}

// Render returns the current display model for the menu.
func (b *Board) Render(menuID string) (RenderModel, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return RenderModel{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked(), nil
}

func (b *Board) resolve(menuID string) (*session, error) {
	b.mu.RLock()
	s, ok := b.sessions[menuID]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidMenuState
	}
	return s, nil
}

// refresh dispatches a display update outside any critical section.
func (b *Board) refresh(ctx context.Context, model RenderModel) {
	if b.notifier == nil {
		return
	}
	b.notifier.RefreshDisplay(ctx, model)
}

// mutable guards every mutation path: unknown menus were rejected earlier,
// closed and halted menus refuse changes here. Callers hold s.mu.
func (s *session) mutable() error {
	if s.halted || s.menu.Status != StatusOpen {
		return ErrInvalidMenuState
	}
	return nil
}

func (s *session) renderLocked() RenderModel {
	items := make([]RenderItem, len(s.menu.Items))
	for i, it := range s.menu.Items {
		items[i] = RenderItem{
			Index: it.Index,
			Name:  it.Name,
			Total: s.totals[it.Index],
		}
	}
	return RenderModel{
		MenuID:    s.menu.ID,
		ChatID:    s.menu.ChatID,
		MessageID: s.menu.MessageID,
		Status:    s.menu.Status,
		Items:     items,
		Voters:    len(s.voteOrder),
	}
}
