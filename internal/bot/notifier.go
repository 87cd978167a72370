package bot

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/HenTyna/foot-auto-poll-bot/core/logger"
	"github.com/HenTyna/foot-auto-poll-bot/core/telegram/sender"
	"github.com/HenTyna/foot-auto-poll-bot/internal/menu"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// displayRefresher edits the group menu message after a committed mutation.
// Edits go through the outbound dispatcher, so a slow Telegram API call never
// blocks vote processing; a saturated queue drops the refresh (the next
// mutation repaints anyway).
type displayRefresher struct {
	bot  atomic.Pointer[tele.Bot]
	disp atomic.Pointer[sender.Dispatcher]
}

func (r *displayRefresher) bind(bot *tele.Bot, disp *sender.Dispatcher) {
	r.bot.Store(bot)
	r.disp.Store(disp)
}

// RefreshDisplay implements menu.Notifier.
func (r *displayRefresher) RefreshDisplay(ctx context.Context, model menu.RenderModel) {
	bot := r.bot.Load()
	if bot == nil {
		return
	}

	run := func() error {
		msg := tele.StoredMessage{
			ChatID:    model.ChatID,
			MessageID: strconv.Itoa(model.MessageID),
		}
		_, err := bot.Edit(msg, renderMenuText(model), &tele.SendOptions{
			ParseMode:   tele.ModeMarkdown,
			ReplyMarkup: menuKeyboard(model),
		})
		return err
	}

	ctx = logger.WithMenuID(ctx, model.MenuID)
	disp := r.disp.Load()
	if disp == nil {
		if err := run(); err != nil {
			logger.Warn(ctx, "service.menus", "refresh.fail",
				slog.String("menu_id", model.MenuID),
				slog.String("err", err.Error()),
			)
		}
		return
	}
	if err := disp.Enqueue(ctx, "menu.refresh", "editMessageText", run); err != nil {
		logger.Warn(ctx, "service.menus", "refresh.drop",
			slog.String("menu_id", model.MenuID),
			slog.String("err", err.Error()),
		)
	}
}
