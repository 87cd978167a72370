package bot

import (
	"strings"
	"testing"

	"github.com/HenTyna/foot-auto-poll-bot/internal/menu"
)

func sampleModel(status menu.Status) menu.RenderModel {
	return menu.RenderModel{
		MenuID:    "100:200",
		ChatID:    100,
		MessageID: 200,
		Status:    status,
		Items: []menu.RenderItem{
			{Index: 1, Name: "porridge", Total: 2},
			{Index: 2, Name: "soup", Total: 0},
		},
		Voters: 1,
	}
}

func TestRenderMenuText(t *testing.T) {
	text := renderMenuText(sampleModel(menu.StatusOpen))

	for _, want := range []string{"1. porridge — x2", "2. soup", "👥 1 voted"} {
		if !strings.Contains(text, want) {
			t.Errorf("menu text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "soup — x0") {
		t.Errorf("zero totals should not render a count:\n%s", text)
	}
	if strings.Contains(text, msgOrderClosed) {
		t.Errorf("open menu carries closed banner:\n%s", text)
	}

	closed := renderMenuText(sampleModel(menu.StatusClosed))
	if !strings.Contains(closed, msgOrderClosed) {
		t.Errorf("closed menu missing closed banner:\n%s", closed)
	}
}

func TestMenuKeyboardLayout(t *testing.T) {
	markup := menuKeyboard(sampleModel(menu.StatusOpen))
	if markup == nil {
		t.Fatal("open menu has no keyboard")
	}
	rows := markup.InlineKeyboard
	// One row per item plus the action row.
	if len(rows) != 3 {
		t.Fatalf("keyboard rows = %d, want 3", len(rows))
	}
	for i := 0; i < 2; i++ {
		if len(rows[i]) != 3 {
			t.Fatalf("item row %d has %d buttons, want 3", i, len(rows[i]))
		}
	}
	if len(rows[2]) != 3 {
		t.Fatalf("action row has %d buttons, want 3", len(rows[2]))
	}
	if !strings.Contains(rows[0][0].Data, "100:200|1") {
		t.Fatalf("decrease payload = %q, want menu and item", rows[0][0].Data)
	}
	if !strings.Contains(rows[2][0].Data, "100:200") {
		t.Fatalf("vote payload = %q, want menu id", rows[2][0].Data)
	}
}

func TestMenuKeyboardClosed(t *testing.T) {
	if menuKeyboard(sampleModel(menu.StatusClosed)) != nil {
		t.Fatal("closed menu still renders a keyboard")
	}
}

func TestRenderSummary(t *testing.T) {
	sum := &menu.OrderSummary{
		MenuID: "100:200",
		Status: menu.StatusOpen,
		Items: []menu.SummaryItem{
			{Index: 1, Name: "porridge", Total: 3, Lines: []menu.SummaryLine{
				{DisplayName: "Tii", Quantity: 3, Times: 2},
			}},
			{Index: 2, Name: "soup", Total: 1, Lines: []menu.SummaryLine{
				{DisplayName: "Scot", Quantity: 1, Times: 1},
			}},
			{Index: 3, Name: "amok", Total: 0},
		},
		Voters: 2,
	}

	text := renderSummary(sum, "Seyha")
	for _, want := range []string{
		"🛒 Name: Seyha",
		"- porridge x3",
		"• Tii x3 (voted 2 times)",
		"- soup x1",
		"• Scot x1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "amok") {
		t.Errorf("summary lists item with zero total:\n%s", text)
	}
	if strings.Contains(text, "Scot x1 (voted") {
		t.Errorf("single vote should not show multiplicity:\n%s", text)
	}
}

func TestHasOrders(t *testing.T) {
	empty := &menu.OrderSummary{Items: []menu.SummaryItem{{Index: 1, Name: "a"}}}
	if hasOrders(empty) {
		t.Fatal("empty summary reported orders")
	}
	full := &menu.OrderSummary{Items: []menu.SummaryItem{{Index: 1, Name: "a", Total: 1}}}
	if !hasOrders(full) {
		t.Fatal("summary with totals reported no orders")
	}
}
