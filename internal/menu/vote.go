package menu

import (
	"context"

	"github.com/HenTyna/foot-auto-poll-bot/core/logger"
	"log/slog"
)

// AdjustPending shifts a user's uncommitted quantity for one item by delta
// and returns the new value. Quantities clamp to [0, MaxQty]; pushing past a
// boundary is not an error. Pending state is private to the user until voted,
// so no display refresh is triggered here.
func (b *Board) AdjustPending(ctx context.Context, menuID string, userID int64, itemIdx, delta int) (int, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutable(); err != nil {
		return 0, err
	}
	if !s.menu.ValidIndex(itemIdx) {
		return 0, ErrInvalidItemIndex
	}

	sel := s.pending[userID]
	if sel == nil {
		sel = make(map[int]int)
		s.pending[userID] = sel
	}

	qty := sel[itemIdx] + delta
	if qty < 0 {
		qty = 0
	}
	if qty > b.maxQty {
		qty = b.maxQty
	}
	sel[itemIdx] = qty

	logger.Debug(ctx, "service.menus", "pending.adjusted",
		slog.String("menu_id", menuID),
		slog.Int("item", itemIdx),
		slog.Int("delta", delta),
		slog.Int("qty", qty),
	)
	return qty, nil
}

// Pending returns a copy of the user's uncommitted quantities. Absent items
// mean zero.
func (b *Board) Pending(menuID string, userID int64) (map[int]int, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]int, len(s.pending[userID]))
	for idx, qty := range s.pending[userID] {
		out[idx] = qty
	}
	return out, nil
}

// SubmitVote commits the user's pending selection. The commit replaces the
// user's previous vote rather than adding to it: pending quantities carry the
// user's current intended total. Pending state survives the commit and stays
// editable for future votes.
//
// Returns the refreshed display model on success. The refresh itself is
// dispatched after the critical section releases.
func (b *Board) SubmitVote(ctx context.Context, menuID string, userID int64, displayName string) (RenderModel, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return RenderModel{}, err
	}

	s.mu.Lock()
	if err := s.mutable(); err != nil {
		s.mu.Unlock()
		return RenderModel{}, err
	}

	sel := s.pending[userID]
	if allZero(sel) {
		s.mu.Unlock()
		return RenderModel{}, ErrEmptySelection
	}

	prev := s.votes[userID]
	if prev != nil && sameSelection(sel, prev.Quantities) {
		s.mu.Unlock()
		return RenderModel{}, ErrNoChangeDetected
	}

	committed := make(map[int]int, len(sel))
	for idx, qty := range sel {
		if qty > 0 {
			committed[idx] = qty
		}
	}

	// Swap the user's contribution in the aggregate: remove the old vote,
	// add the new one.
	if prev != nil {
		for idx, qty := range prev.Quantities {
			s.totals[idx] -= qty
		}
	}
	for idx, qty := range committed {
		s.totals[idx] += qty
	}

	if prev == nil {
		prev = &CommittedVote{
			UserID: userID,
			Times:  make(map[int]int),
		}
		s.votes[userID] = prev
		s.voteOrder = append(s.voteOrder, userID)
	}
	prev.DisplayName = displayName
	prev.Quantities = committed
	for idx := range committed {
		prev.Times[idx]++
	}

	if !s.verifyTotalsLocked() {
		s.halted = true
		model := s.renderLocked()
		s.mu.Unlock()
		logger.Error(ctx, "service.votes", "aggregate.corrupt",
			slog.String("menu_id", menuID),
			slog.Int64("user_id", userID),
		)
		return model, ErrInvalidMenuState
	}

	model := s.renderLocked()
	voters := len(s.voteOrder)
	s.mu.Unlock()

	logger.Info(ctx, "service.votes", "vote.committed",
		slog.String("menu_id", menuID),
		slog.Int64("user_id", userID),
		slog.Int("items", len(committed)),
		slog.Int("voters", voters),
	)
	b.refresh(ctx, model)
	return model, nil
}

// Totals returns a copy of the per-item aggregate for the menu.
func (b *Board) Totals(menuID string) (map[int]int, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]int, len(s.totals))
	for idx, qty := range s.totals {
		out[idx] = qty
	}
	return out, nil
}

// Recompute derives the aggregate from scratch out of the committed votes.
// It must always match the incrementally maintained totals; the incremental
// path verifies itself against this after every commit.
func (b *Board) Recompute(menuID string) (map[int]int, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked(), nil
}

func (s *session) recomputeLocked() map[int]int {
	totals := make(map[int]int)
	for _, v := range s.votes {
		for idx, qty := range v.Quantities {
			totals[idx] += qty
		}
	}
	return totals
}

// verifyTotalsLocked checks the incremental aggregate against a full
// recount and rejects negative values. A mismatch means a lost update and
// halts the menu.
func (s *session) verifyTotalsLocked() bool {
	fresh := s.recomputeLocked()
	for idx, qty := range s.totals {
		if qty < 0 {
			return false
		}
		if fresh[idx] != qty {
			return false
		}
	}
	for idx, qty := range fresh {
		if s.totals[idx] != qty {
			return false
		}
	}
	return true
}

func allZero(sel map[int]int) bool {
	for _, qty := range sel {
		if qty != 0 {
			return false
		}
	}
	return true
}

// sameSelection compares per-item quantities treating absent entries as zero.
func sameSelection(a, b map[int]int) bool {
	for idx, qty := range a {
		if b[idx] != qty {
			return false
		}
	}
	for idx, qty := range b {
		if a[idx] != qty {
			return false
		}
	}
	return true
}
