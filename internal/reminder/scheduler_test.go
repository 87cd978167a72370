package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type staticSubs struct {
	chats []int64
	err   error
}

func (s staticSubs) List(context.Context) ([]int64, error) { return s.chats, s.err }

func newTestScheduler(t *testing.T, subs Subscriptions, send SendFunc) *Scheduler {
	t.Helper()
	s, err := NewScheduler(Options{
		Time:     "08:00",
		Timezone: "Asia/Phnom_Penh",
		Subs:     subs,
		Send:     send,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func TestNewSchedulerValidation(t *testing.T) {
	noop := func(context.Context, int64) error { return nil }

	if _, err := NewScheduler(Options{Time: "25:00", Timezone: "UTC", Subs: staticSubs{}, Send: noop}); err == nil {
		t.Fatal("bad time accepted")
	}
	if _, err := NewScheduler(Options{Time: "08:00", Timezone: "Mars/Olympus", Subs: staticSubs{}, Send: noop}); err == nil {
		t.Fatal("bad timezone accepted")
	}
	if _, err := NewScheduler(Options{Time: "08:00", Timezone: "UTC"}); err == nil {
		t.Fatal("missing subs/send accepted")
	}
}

func TestNextRun(t *testing.T) {
	s := newTestScheduler(t, staticSubs{}, func(context.Context, int64) error { return nil })
	loc, err := time.LoadLocation("Asia/Phnom_Penh")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Before the firing time: same day.
	now := time.Date(2025, 6, 2, 6, 30, 0, 0, loc)
	next := s.NextRun(now)
	want := time.Date(2025, 6, 2, 8, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("NextRun(06:30) = %v, want %v", next, want)
	}

	// After the firing time: next day.
	now = time.Date(2025, 6, 2, 9, 0, 0, 0, loc)
	next = s.NextRun(now)
	want = time.Date(2025, 6, 3, 8, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("NextRun(09:00) = %v, want %v", next, want)
	}

	// Exactly at the firing time counts as passed.
	now = want
	next = s.NextRun(now)
	if !next.Equal(want.AddDate(0, 0, 1)) {
		t.Fatalf("NextRun(at firing time) = %v, want next day", next)
	}
}

func TestBroadcastSendsToAllChats(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []int64
	)
	send := func(_ context.Context, chatID int64) error {
		mu.Lock()
		defer mu.Unlock()
		if chatID == 2 {
			return errors.New("blocked by user")
		}
		sent = append(sent, chatID)
		return nil
	}

	s := newTestScheduler(t, staticSubs{chats: []int64{1, 2, 3}}, send)
	s.Broadcast(context.Background())

	if len(sent) != 2 || sent[0] != 1 || sent[1] != 3 {
		t.Fatalf("sent = %v, want [1 3] (failure skipped, rest delivered)", sent)
	}
}

func TestBroadcastListFailure(t *testing.T) {
	called := false
	send := func(context.Context, int64) error {
		called = true
		return nil
	}
	s := newTestScheduler(t, staticSubs{err: errors.New("db down")}, send)
	s.Broadcast(context.Background())
	if called {
		t.Fatal("send called despite list failure")
	}
}
