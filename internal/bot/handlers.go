package bot

import (
	"errors"
	"fmt"

	"github.com/HenTyna/foot-auto-poll-bot/core/logger"
	"github.com/HenTyna/foot-auto-poll-bot/core/telegram/callbacks"
	tghelpers "github.com/HenTyna/foot-auto-poll-bot/core/telegram/helpers"
	"github.com/HenTyna/foot-auto-poll-bot/internal/menu"
	"github.com/HenTyna/foot-auto-poll-bot/internal/menuparse"
	"github.com/HenTyna/foot-auto-poll-bot/internal/reminder"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Handlers binds the transport boundary to the ordering core.
type Handlers struct {
	cfg       *Config
	board     *menu.Board
	repo      *reminder.Repository
	sched     *reminder.Scheduler
	refresher *displayRefresher
}

func displayName(u *tele.User) string {
	if u == nil {
		return "unknown"
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = fmt.Sprintf("User%d", u.ID)
	}
	return name
}

// HandleMenuText watches group chatter for a posted menu and turns it into an
// ordering session. Non-menu text is ignored silently.
func (h *Handlers) HandleMenuText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text := c.Text()

	if !menuparse.IsMenuText(text) {
		logger.Debug(ctx, "service.menus", "text.skipped",
			slog.String("payload", logger.SanitizeLimit(text, 128)),
		)
		return nil
	}

	items := menuparse.ExtractItems(text)
	if len(items) < menuparse.MinItems {
		logger.Warn(ctx, "service.menus", "menu.too_short",
			slog.Int("items", len(items)),
		)
		return nil
	}

	// The menu identity needs the message coordinates, so post the board
	// first and attach the keyboard once the session exists.
	provisional := menu.RenderModel{Status: menu.StatusOpen}
	for i, name := range items {
		provisional.Items = append(provisional.Items, menu.RenderItem{Index: i + 1, Name: name})
	}
	sent, err := c.Bot().Send(c.Chat(), renderMenuText(provisional), &tele.SendOptions{
		ParseMode: tele.ModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("post menu message: %w", err)
	}

	m, err := h.board.Create(ctx, c.Chat().ID, sent.ID, items)
	if err != nil {
		return err
	}

	model, err := h.board.Render(m.ID)
	if err != nil {
		return err
	}
	h.refresher.RefreshDisplay(logger.WithMenuID(ctx, m.ID), model)
	return nil
}

// OnIncrease raises the pressing user's pending quantity for one item.
func (h *Handlers) OnIncrease(c tele.Context) error { return h.adjust(c, +1) }

// OnDecrease lowers the pressing user's pending quantity for one item.
func (h *Handlers) OnDecrease(c tele.Context) error { return h.adjust(c, -1) }

func (h *Handlers) adjust(c tele.Context, delta int) error {
	menuID, itemIdx, err := callbacks.PayloadStringInt(c, "|")
	if err != nil {
		_ = c.Respond(&tele.CallbackResponse{Text: msgMenuNotFound})
		return err
	}
	ctx := tghelpers.WithMenu(c, menuID)

	qty, err := h.board.AdjustPending(ctx, menuID, c.Sender().ID, itemIdx, delta)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Respond(&tele.CallbackResponse{Text: fmt.Sprintf("x%d", qty)})
}

// OnVote commits the pressing user's pending selection. The toast is the
// transient confirmation; Telegram dismisses it on its own.
func (h *Handlers) OnVote(c tele.Context) error {
	menuID := callbacks.CallbackPayload(c)
	ctx := tghelpers.WithMenu(c, menuID)

	if _, err := h.board.SubmitVote(ctx, menuID, c.Sender().ID, displayName(c.Sender())); err != nil {
		return h.respondError(c, err)
	}
	return c.Respond(&tele.CallbackResponse{Text: msgVoteOK})
}

// OnOrder posts the current order summary as a reply in the group.
func (h *Handlers) OnOrder(c tele.Context) error {
	menuID := callbacks.CallbackPayload(c)
	ctx := tghelpers.WithMenu(c, menuID)

	sum, err := h.board.BuildSummary(menuID)
	if err != nil {
		return h.respondError(c, err)
	}
	if !hasOrders(sum) {
		return c.Respond(&tele.CallbackResponse{Text: msgNoOrders})
	}

	logger.Info(ctx, "service.menus", "summary.requested",
		slog.Int("voters", sum.Voters),
	)
	if err := c.Respond(); err != nil {
		return err
	}
	return tghelpers.ReplyMD(c, renderSummary(sum, h.cfg.Order.Name))
}

// OnClose freezes the menu. Closing twice is harmless; the display refresh
// drops the inline keyboard.
func (h *Handlers) OnClose(c tele.Context) error {
	menuID := callbacks.CallbackPayload(c)
	ctx := tghelpers.WithMenu(c, menuID)

	if _, _, err := h.board.Close(ctx, menuID); err != nil {
		return h.respondError(c, err)
	}
	return c.Respond(&tele.CallbackResponse{Text: msgOrderClosed})
}

// OnItemLabel absorbs taps on the item name buttons.
func (h *Handlers) OnItemLabel(c tele.Context) error {
	return c.Respond()
}

// StartCommand subscribes the chat to the daily prompt and explains usage.
func (h *Handlers) StartCommand(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := h.repo.Subscribe(ctx, c.Chat().ID); err != nil {
		logger.Error(ctx, "service.reminders", "subscribe.fail",
			slog.String("err", err.Error()),
		)
	}
	return tghelpers.SendText(c, welcomeMessage)
}

// StopCommand unsubscribes the chat from the daily prompt.
func (h *Handlers) StopCommand(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := h.repo.Unsubscribe(ctx, c.Chat().ID); err != nil {
		logger.Error(ctx, "service.reminders", "unsubscribe.fail",
			slog.String("err", err.Error()),
		)
		return err
	}
	return tghelpers.SendText(c, unsubscribedMessage)
}

// DebugSendCommand fires the daily broadcast immediately. Admin only.
func (h *Handlers) DebugSendCommand(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	h.sched.Broadcast(ctx)
	return tghelpers.SendText(c, "Debug message sent!")
}

// respondError turns a typed core error into toast feedback and hands the
// error back for the handler summary log.
func (h *Handlers) respondError(c tele.Context, err error) error {
	text := msgMenuNotFound
	switch {
	case errors.Is(err, menu.ErrEmptySelection):
		text = msgNoSelection
	case errors.Is(err, menu.ErrNoChangeDetected):
		text = msgNoChange
	case errors.Is(err, menu.ErrInvalidItemIndex):
		text = "Unknown menu item."
	}
	_ = c.Respond(&tele.CallbackResponse{Text: text})
	return err
}
