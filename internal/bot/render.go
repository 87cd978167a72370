package bot

import (
	"fmt"
	"strings"

	"github.com/HenTyna/foot-auto-poll-bot/core/telegram/format"
	"github.com/HenTyna/foot-auto-poll-bot/core/telegram/keyboard"
	"github.com/HenTyna/foot-auto-poll-bot/internal/menu"

	tele "gopkg.in/telebot.v4"
)

// Callback keys for the menu inline keyboard.
const (
	cbIncrease = "menu_inc"
	cbDecrease = "menu_dec"
	cbVote     = "menu_vote"
	cbOrder    = "menu_order"
	cbClose    = "menu_close"
	cbNoop     = "menu_item"
)

func escapeMD(text string) string {
	out, err := format.EscapeMarkdown(text, format.MarkdownV1)
	if err != nil {
		return text
	}
	return out
}

// renderMenuText builds the group message body for a live or closed menu.
// Counts shown are committed totals; pending selections stay private.
func renderMenuText(model menu.RenderModel) string {
	var sb strings.Builder
	sb.WriteString("🍽 *ម្ហូបថ្ងៃនេះ*\n")
	for _, it := range model.Items {
		sb.WriteString(fmt.Sprintf("%d. %s", it.Index, escapeMD(it.Name)))
		if it.Total > 0 {
			sb.WriteString(fmt.Sprintf(" — x%d", it.Total))
		}
		sb.WriteString("\n")
	}
	if model.Voters > 0 {
		sb.WriteString(fmt.Sprintf("\n👥 %d voted", model.Voters))
	}
	if model.Status == menu.StatusClosed {
		sb.WriteString("\n\n" + msgOrderClosed)
	}
	return sb.String()
}

// menuKeyboard builds the inline keyboard for an open menu: one row of
// [−, label, +] per item plus the action row. Closed menus carry no keyboard.
func menuKeyboard(model menu.RenderModel) *tele.ReplyMarkup {
	if model.Status != menu.StatusOpen {
		return nil
	}

	rows := make([][]keyboard.InlineBtn, 0, len(model.Items)+1)
	for _, it := range model.Items {
		itemPayload := fmt.Sprintf("%s|%d", model.MenuID, it.Index)
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "➖", Unique: cbDecrease, Data: itemPayload},
			{Text: fmt.Sprintf("%d. %s", it.Index, it.Name), Unique: cbNoop, Data: itemPayload},
			{Text: "➕", Unique: cbIncrease, Data: itemPayload},
		})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: btnVote, Unique: cbVote, Data: model.MenuID},
		{Text: btnOrder, Unique: cbOrder, Data: model.MenuID},
		{Text: btnClose, Unique: cbClose, Data: model.MenuID},
	})
	return keyboard.InlineButtonsRows(rows...)
}

// renderSummary formats the order summary the way it is sent to the group.
func renderSummary(sum *menu.OrderSummary, orderName string) string {
	lines := []string{
		fmt.Sprintf("🛒 Name: %s", escapeMD(orderName)),
		"------------------",
	}
	for _, it := range sum.Items {
		if it.Total <= 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s x%d", escapeMD(it.Name), it.Total))
		for _, ln := range it.Lines {
			voter := fmt.Sprintf("    • %s x%d", escapeMD(ln.DisplayName), ln.Quantity)
			if ln.Times > 1 {
				voter += fmt.Sprintf(" (voted %d times)", ln.Times)
			}
			lines = append(lines, voter)
		}
	}
	lines = append(lines, "------------------")
	return strings.Join(lines, "\n")
}

// hasOrders reports whether any item carries a committed quantity.
func hasOrders(sum *menu.OrderSummary) bool {
	for _, it := range sum.Items {
		if it.Total > 0 {
			return true
		}
	}
	return false
}
