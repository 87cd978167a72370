package menu

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
)

func newTestBoard(t *testing.T, names ...string) (*Board, *Menu) {
	t.Helper()
	if len(names) == 0 {
		names = []string{"porridge", "soup", "amok"}
	}
	b := NewBoard(Options{MaxQty: 3})
	m, err := b.Create(context.Background(), 100, 200, names)
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	return b, m
}

func mustVote(t *testing.T, b *Board, menuID string, userID int64, name string) {
	t.Helper()
	if _, err := b.SubmitVote(context.Background(), menuID, userID, name); err != nil {
		t.Fatalf("vote user=%d: %v", userID, err)
	}
}

func mustAdjust(t *testing.T, b *Board, menuID string, userID int64, item, delta int) {
	t.Helper()
	if _, err := b.AdjustPending(context.Background(), menuID, userID, item, delta); err != nil {
		t.Fatalf("adjust user=%d item=%d delta=%d: %v", userID, item, delta, err)
	}
}

func TestDeriveID(t *testing.T) {
	if got := DeriveID(100, 200); got != "100:200" {
		t.Fatalf("DeriveID = %q, want 100:200", got)
	}
	if got := DeriveID(-1001234, 7); got != "-1001234:7" {
		t.Fatalf("DeriveID = %q, want -1001234:7", got)
	}
}

func TestCreateDuplicateIdentity(t *testing.T) {
	b, m := newTestBoard(t)
	if _, err := b.Create(context.Background(), m.ChatID, m.MessageID, []string{"x", "y"}); !errors.Is(err, ErrDuplicateMenuIdentity) {
		t.Fatalf("duplicate create err = %v, want ErrDuplicateMenuIdentity", err)
	}
}

func TestAdjustPendingClamps(t *testing.T) {
	b, m := newTestBoard(t)
	ctx := context.Background()

	// Arbitrary push/pull sequences never leave [0, MaxQty].
	deltas := []int{+1, +1, +5, -1, -10, +2, +2, +2, -1}
	var qty int
	for _, d := range deltas {
		var err error
		qty, err = b.AdjustPending(ctx, m.ID, 1, 1, d)
		if err != nil {
			t.Fatalf("adjust delta=%d: %v", d, err)
		}
		if qty < 0 || qty > b.MaxQty() {
			t.Fatalf("qty %d escaped [0,%d] after delta %d", qty, b.MaxQty(), d)
		}
	}
	if qty != 3 {
		t.Fatalf("final qty = %d, want 3", qty)
	}

	pending, err := b.Pending(m.ID, 1)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending[1] != 3 {
		t.Fatalf("pending[1] = %d, want 3", pending[1])
	}
}

func TestAdjustPendingInvalidIndex(t *testing.T) {
	b, m := newTestBoard(t)
	ctx := context.Background()

	for _, idx := range []int{0, -1, 4, 99} {
		if _, err := b.AdjustPending(ctx, m.ID, 1, idx, 1); !errors.Is(err, ErrInvalidItemIndex) {
			t.Fatalf("index %d err = %v, want ErrInvalidItemIndex", idx, err)
		}
	}
}

func TestAdjustPendingUnknownMenu(t *testing.T) {
	b := NewBoard(Options{})
	if _, err := b.AdjustPending(context.Background(), "1:1", 1, 1, 1); !errors.Is(err, ErrInvalidMenuState) {
		t.Fatalf("unknown menu err = %v, want ErrInvalidMenuState", err)
	}
}

func TestSubmitVoteEmptySelection(t *testing.T) {
	b, m := newTestBoard(t)
	ctx := context.Background()

	if _, err := b.SubmitVote(ctx, m.ID, 1, "Tii"); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("no pending err = %v, want ErrEmptySelection", err)
	}

	// Entries that were raised and dropped back to zero still count as empty.
	mustAdjust(t, b, m.ID, 1, 1, +1)
	mustAdjust(t, b, m.ID, 1, 1, -1)
	if _, err := b.SubmitVote(ctx, m.ID, 1, "Tii"); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("all-zero pending err = %v, want ErrEmptySelection", err)
	}
}

func TestSubmitVoteUnchangedRejected(t *testing.T) {
	b, m := newTestBoard(t)
	ctx := context.Background()

	mustAdjust(t, b, m.ID, 1, 1, +2)
	mustVote(t, b, m.ID, 1, "Tii")

	if _, err := b.SubmitVote(ctx, m.ID, 1, "Tii"); !errors.Is(err, ErrNoChangeDetected) {
		t.Fatalf("repeat vote err = %v, want ErrNoChangeDetected", err)
	}

	totals, _ := b.Totals(m.ID)
	if totals[1] != 2 {
		t.Fatalf("totals[1] = %d after rejected repeat, want 2", totals[1])
	}
}

func TestSubmitVoteReplaceSemantics(t *testing.T) {
	b, m := newTestBoard(t)

	mustAdjust(t, b, m.ID, 1, 1, +2)
	mustVote(t, b, m.ID, 1, "Tii")

	totals, _ := b.Totals(m.ID)
	if totals[1] != 2 {
		t.Fatalf("totals[1] = %d after first vote, want 2", totals[1])
	}

	// A second vote replaces the previous commitment, it does not add.
	mustAdjust(t, b, m.ID, 1, 1, -1)
	mustVote(t, b, m.ID, 1, "Tii")

	totals, _ = b.Totals(m.ID)
	if totals[1] != 1 {
		t.Fatalf("totals[1] = %d after revote, want 1 (replace, not add)", totals[1])
	}

	// And raising back up: 1 -> 3 must land on 3, not 4.
	mustAdjust(t, b, m.ID, 1, 1, +2)
	mustVote(t, b, m.ID, 1, "Tii")

	totals, _ = b.Totals(m.ID)
	if totals[1] != 3 {
		t.Fatalf("totals[1] = %d, want 3", totals[1])
	}
}

func TestScenarioTwoVoters(t *testing.T) {
	b, m := newTestBoard(t, "porridge", "soup", "amok")

	mustAdjust(t, b, m.ID, 1, 1, +2)
	mustVote(t, b, m.ID, 1, "Tii")

	totals, _ := b.Totals(m.ID)
	if totals[1] != 2 || totals[2] != 0 || totals[3] != 0 {
		t.Fatalf("totals after Tii = %v, want {1:2}", totals)
	}

	mustAdjust(t, b, m.ID, 2, 2, +1)
	mustVote(t, b, m.ID, 2, "Scot")

	totals, _ = b.Totals(m.ID)
	if totals[1] != 2 || totals[2] != 1 {
		t.Fatalf("totals after Scot = %v, want {1:2, 2:1}", totals)
	}

	sum, err := b.BuildSummary(m.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum.Items) != 3 {
		t.Fatalf("summary items = %d, want 3", len(sum.Items))
	}
	porridge := sum.Items[0]
	if len(porridge.Lines) != 1 || porridge.Lines[0].DisplayName != "Tii" || porridge.Lines[0].Quantity != 2 {
		t.Fatalf("porridge lines = %+v, want [Tii:2]", porridge.Lines)
	}
	soup := sum.Items[1]
	if len(soup.Lines) != 1 || soup.Lines[0].DisplayName != "Scot" || soup.Lines[0].Quantity != 1 {
		t.Fatalf("soup lines = %+v, want [Scot:1]", soup.Lines)
	}
	if len(sum.Items[2].Lines) != 0 {
		t.Fatalf("amok lines = %+v, want none", sum.Items[2].Lines)
	}
}

func TestSummaryVoteMultiplicity(t *testing.T) {
	b, m := newTestBoard(t)

	mustAdjust(t, b, m.ID, 1, 1, +2)
	mustVote(t, b, m.ID, 1, "Tii")
	mustAdjust(t, b, m.ID, 1, 1, +1)
	mustVote(t, b, m.ID, 1, "Tii")

	sum, err := b.BuildSummary(m.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	line := sum.Items[0].Lines[0]
	if line.Quantity != 3 || line.Times != 2 {
		t.Fatalf("line = %+v, want qty=3 times=2", line)
	}
}

func TestCloseFreezesMenu(t *testing.T) {
	b, m := newTestBoard(t)
	ctx := context.Background()

	mustAdjust(t, b, m.ID, 1, 1, +2)
	mustVote(t, b, m.ID, 1, "Tii")

	before, err := b.BuildSummary(m.ID)
	if err != nil {
		t.Fatalf("summary before close: %v", err)
	}

	model, changed, err := b.Close(ctx, m.ID)
	if err != nil || !changed {
		t.Fatalf("close: changed=%v err=%v", changed, err)
	}
	if model.Status != StatusClosed {
		t.Fatalf("model status = %s, want CLOSED", model.Status)
	}

	// Closing again is a harmless no-op.
	_, changed, err = b.Close(ctx, m.ID)
	if err != nil || changed {
		t.Fatalf("second close: changed=%v err=%v", changed, err)
	}

	if _, err := b.AdjustPending(ctx, m.ID, 1, 1, 1); !errors.Is(err, ErrInvalidMenuState) {
		t.Fatalf("adjust on closed err = %v, want ErrInvalidMenuState", err)
	}
	if _, err := b.SubmitVote(ctx, m.ID, 1, "Tii"); !errors.Is(err, ErrInvalidMenuState) {
		t.Fatalf("vote on closed err = %v, want ErrInvalidMenuState", err)
	}

	after, err := b.BuildSummary(m.ID)
	if err != nil {
		t.Fatalf("summary after close: %v", err)
	}
	before.Status = after.Status
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("summary changed across close:\nbefore=%+v\nafter=%+v", before, after)
	}
}

func TestAggregateConsistencyConcurrent(t *testing.T) {
	b, m := newTestBoard(t, "a", "b", "c", "d")
	ctx := context.Background()

	const users = 24
	var wg sync.WaitGroup
	for u := int64(1); u <= users; u++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			item := int(userID%4) + 1
			for i := 0; i < 3; i++ {
				_, _ = b.AdjustPending(ctx, m.ID, userID, item, +1)
				_, err := b.SubmitVote(ctx, m.ID, userID, "user")
				if err != nil && !errors.Is(err, ErrNoChangeDetected) {
					t.Errorf("user %d vote: %v", userID, err)
					return
				}
			}
		}(u)
	}
	wg.Wait()

	totals, err := b.Totals(m.ID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	fresh, err := b.Recompute(m.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !reflect.DeepEqual(totals, fresh) {
		t.Fatalf("incremental totals diverged: got %v, recomputed %v", totals, fresh)
	}
	for idx, qty := range totals {
		if qty < 0 {
			t.Fatalf("totals[%d] = %d, negative aggregate", idx, qty)
		}
	}

	// Every user commits 3 of one item; totals must reflect all of them.
	var sum int
	for _, qty := range totals {
		sum += qty
	}
	if sum != users*3 {
		t.Fatalf("total quantity = %d, want %d", sum, users*3)
	}
}

func TestConcurrentMenusIndependent(t *testing.T) {
	b := NewBoard(Options{MaxQty: 3})
	ctx := context.Background()

	const menus = 8
	ids := make([]string, menus)
	for i := 0; i < menus; i++ {
		m, err := b.Create(ctx, int64(1000+i), 1, []string{"x", "y"})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids[i] = m.ID
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(menuID string, userID int64) {
			defer wg.Done()
			_, _ = b.AdjustPending(ctx, menuID, userID, 1, +2)
			if _, err := b.SubmitVote(ctx, menuID, userID, "user"); err != nil {
				t.Errorf("menu %s: %v", menuID, err)
			}
		}(id, int64(i+1))
	}
	wg.Wait()

	for _, id := range ids {
		totals, err := b.Totals(id)
		if err != nil {
			t.Fatalf("totals %s: %v", id, err)
		}
		if totals[1] != 2 {
			t.Fatalf("menu %s totals[1] = %d, want 2", id, totals[1])
		}
	}
}

func TestHaltedMenuRefusesMutation(t *testing.T) {
	b, m := newTestBoard(t)
	ctx := context.Background()

	mustAdjust(t, b, m.ID, 1, 1, +1)

	// Sabotage the incremental aggregate so the post-commit verification
	// trips and the menu halts.
	s, err := b.resolve(m.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	s.mu.Lock()
	s.totals[1] = 7
	s.mu.Unlock()

	if _, err := b.SubmitVote(ctx, m.ID, 1, "Tii"); !errors.Is(err, ErrInvalidMenuState) {
		t.Fatalf("vote on corrupt menu err = %v, want ErrInvalidMenuState", err)
	}
	if _, err := b.AdjustPending(ctx, m.ID, 2, 1, 1); !errors.Is(err, ErrInvalidMenuState) {
		t.Fatalf("adjust on halted menu err = %v, want ErrInvalidMenuState", err)
	}

	// Other menus keep working.
	m2, err := b.Create(ctx, 300, 1, []string{"x"})
	if err != nil {
		t.Fatalf("create second menu: %v", err)
	}
	mustAdjust(t, b, m2.ID, 1, 1, +1)
	mustVote(t, b, m2.ID, 1, "Tii")
}

type recordingNotifier struct {
	mu     sync.Mutex
	models []RenderModel
}

func (n *recordingNotifier) RefreshDisplay(_ context.Context, model RenderModel) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.models = append(n.models, model)
}

func TestRefreshDispatchedOnVoteAndClose(t *testing.T) {
	notifier := &recordingNotifier{}
	b := NewBoard(Options{MaxQty: 3, Notifier: notifier})
	ctx := context.Background()

	m, err := b.Create(ctx, 100, 200, []string{"a", "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Pending adjustments are private: no broadcast.
	mustAdjust(t, b, m.ID, 1, 1, +1)
	if len(notifier.models) != 0 {
		t.Fatalf("refresh after adjust: %d models, want 0", len(notifier.models))
	}

	mustVote(t, b, m.ID, 1, "Tii")
	if len(notifier.models) != 1 {
		t.Fatalf("refresh after vote: %d models, want 1", len(notifier.models))
	}
	if notifier.models[0].Items[0].Total != 1 {
		t.Fatalf("refresh model total = %d, want 1", notifier.models[0].Items[0].Total)
	}

	if _, _, err := b.Close(ctx, m.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(notifier.models) != 2 {
		t.Fatalf("refresh after close: %d models, want 2", len(notifier.models))
	}
	if notifier.models[1].Status != StatusClosed {
		t.Fatalf("close refresh status = %s, want CLOSED", notifier.models[1].Status)
	}

	// Idempotent close does not refresh again.
	if _, _, err := b.Close(ctx, m.ID); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if len(notifier.models) != 2 {
		t.Fatalf("refresh after repeated close: %d models, want 2", len(notifier.models))
	}
}
