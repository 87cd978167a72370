package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/HenTyna/foot-auto-poll-bot/core/telegram"
	"github.com/HenTyna/foot-auto-poll-bot/core/telegram/commands"
	"github.com/HenTyna/foot-auto-poll-bot/core/telegram/router"
	"github.com/HenTyna/foot-auto-poll-bot/internal/menu"
	"github.com/HenTyna/foot-auto-poll-bot/internal/reminder"

	tele "gopkg.in/telebot.v4"
)

// App wires the ordering core, the reminder scheduler and the Telegram
// transport together.
type App struct {
	cfg       *Config
	board     *menu.Board
	repo      *reminder.Repository
	sched     *reminder.Scheduler
	refresher *displayRefresher
	handlers  *Handlers
}

// New builds the application graph on top of an initialized database handle.
func New(cfg *Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config provided")
	}

	refresher := &displayRefresher{}
	board := menu.NewBoard(menu.Options{
		MaxQty:   cfg.Order.MaxQty,
		Notifier: refresher,
	})
	repo := reminder.NewRepository(db)

	daily := cfg.Reminder.Message
	if daily == "" {
		daily = defaultDailyMessage
	}
	sched, err := reminder.NewScheduler(reminder.Options{
		Time:     cfg.Reminder.Time,
		Timezone: cfg.Reminder.Timezone,
		Subs:     repo,
		Send: func(ctx context.Context, chatID int64) error {
			bot := refresher.bot.Load()
			if bot == nil {
				return fmt.Errorf("bot not started")
			}
			_, err := bot.Send(tele.ChatID(chatID), daily)
			return err
		},
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:       cfg,
		board:     board,
		repo:      repo,
		sched:     sched,
		refresher: refresher,
	}
	app.handlers = &Handlers{
		cfg:       cfg,
		board:     board,
		repo:      repo,
		sched:     sched,
		refresher: refresher,
	}
	return app, nil
}

// Run starts the bot and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	reg := telegram.NewRegistry()
	h := a.handlers

	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.StartCommand,
		Description: "Subscribe this chat to the daily menu prompt",
	})
	reg.RegisterCommand("/stop", commands.Command{
		Handler:     h.StopCommand,
		Description: "Stop the daily menu prompt in this chat",
	})
	reg.RegisterCommand("/debug_send", commands.Command{
		Handler:     h.DebugSendCommand,
		Description: "Send the daily prompt immediately",
		AdminOnly:   true,
		Hidden:      true,
	})

	for key, handler := range map[string]tele.HandlerFunc{
		cbIncrease: h.OnIncrease,
		cbDecrease: h.OnDecrease,
		cbVote:     h.OnVote,
		cbOrder:    h.OnOrder,
		cbClose:    h.OnClose,
		cbNoop:     h.OnItemLabel,
	} {
		if err := reg.RegisterCallback(key, handler); err != nil {
			return err
		}
	}

	reg.SetTextFallback(h.HandleMenuText)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{})...)

	return telegram.RunTelegram(ctx, telegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: telegram.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt telegram.Runtime) error {
			a.refresher.bind(rt.Bot, rt.Dispatcher)
			if a.cfg.Reminder.Enabled {
				go a.sched.Run(ctx)
			}
			return nil
		},
	})
}
