package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/HenTyna/foot-auto-poll-bot/core/logger"
	"log/slog"
)

// Subscriptions abstracts the chat list so Broadcast can be tested without a
// database.
type Subscriptions interface {
	List(ctx context.Context) ([]int64, error)
}

// SendFunc delivers the daily prompt to one chat.
type SendFunc func(ctx context.Context, chatID int64) error

// Options configures the daily scheduler.
type Options struct {
	// Time is the local wall-clock firing time, "HH:MM".
	Time string
	// Timezone is an IANA zone name the firing time is interpreted in.
	Timezone string
	Subs     Subscriptions
	Send     SendFunc
}

// Scheduler fires once a day at a fixed local time and broadcasts the prompt
// to every subscribed chat.
type Scheduler struct {
	hour, minute int
	loc          *time.Location
	subs         Subscriptions
	send         SendFunc
}

// NewScheduler validates the firing time and timezone.
func NewScheduler(opts Options) (*Scheduler, error) {
	at, err := time.Parse("15:04", opts.Time)
	if err != nil {
		return nil, fmt.Errorf("reminder: bad time %q: %w", opts.Time, err)
	}
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("reminder: bad timezone %q: %w", opts.Timezone, err)
	}
	if opts.Subs == nil || opts.Send == nil {
		return nil, fmt.Errorf("reminder: subscriptions and send function are required")
	}
	return &Scheduler{
		hour:   at.Hour(),
		minute: at.Minute(),
		loc:    loc,
		subs:   opts.Subs,
		send:   opts.Send,
	}, nil
}

// NextRun returns the next firing instant strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is done, broadcasting at every scheduled instant.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info(ctx, "service.reminders", "scheduler.started",
		slog.String("at", fmt.Sprintf("%02d:%02d", s.hour, s.minute)),
		slog.String("tz", s.loc.String()),
	)
	for {
		next := s.NextRun(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info(ctx, "service.reminders", "scheduler.stopped")
			return
		case <-timer.C:
			s.Broadcast(ctx)
		}
	}
}

// Broadcast sends the prompt to every subscribed chat. Per-chat failures are
// logged and skipped; one broken chat must not starve the rest.
func (s *Scheduler) Broadcast(ctx context.Context) {
	chats, err := s.subs.List(ctx)
	if err != nil {
		logger.Error(ctx, "service.reminders", "broadcast.list_failed",
			slog.String("err", err.Error()),
		)
		return
	}

	sent := 0
	for _, chatID := range chats {
		if err := s.send(ctx, chatID); err != nil {
			logger.Warn(ctx, "service.reminders", "broadcast.send_failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
			continue
		}
		sent++
	}
	logger.Info(ctx, "service.reminders", "broadcast.done",
		slog.Int("subscribers", len(chats)),
		slog.Int("messages", sent),
	)
}
