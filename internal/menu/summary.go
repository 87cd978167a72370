package menu

// RenderItem is one row of the live menu display.
type RenderItem struct {
	Index int
	Name  string
	Total int
}

// RenderModel is the structured state handed to the display boundary.
// Rendering it into message text is the boundary's job.
type RenderModel struct {
	MenuID    string
	ChatID    int64
	MessageID int
	Status    Status
	Items     []RenderItem
	Voters    int
}

// SummaryLine pairs one voter with their committed quantity for an item.
type SummaryLine struct {
	DisplayName string
	Quantity    int
	// Times is how often the user has voted for this item.
	Times int
}

// SummaryItem aggregates one menu item across all voters.
type SummaryItem struct {
	Index int
	Name  string
	Total int
	Lines []SummaryLine
}

// OrderSummary is a derived snapshot of the whole order. It is rebuilt on
// demand and never stored.
type OrderSummary struct {
	MenuID string
	Status Status
	Items  []SummaryItem
	Voters int
}

// BuildSummary renders the aggregation state into an OrderSummary. Voters
// appear under each item in the order of their first successful vote; users
// without a committed non-zero quantity for an item are omitted. Safe to call
// on open and closed menus alike.
func (b *Board) BuildSummary(menuID string) (*OrderSummary, error) {
	s, err := b.resolve(menuID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]SummaryItem, len(s.menu.Items))
	for i, it := range s.menu.Items {
		si := SummaryItem{
			Index: it.Index,
			Name:  it.Name,
			Total: s.totals[it.Index],
		}
		for _, userID := range s.voteOrder {
			v := s.votes[userID]
			qty := v.Quantities[it.Index]
			if qty <= 0 {
				continue
			}
			si.Lines = append(si.Lines, SummaryLine{
				DisplayName: v.DisplayName,
				Quantity:    qty,
				Times:       v.Times[it.Index],
			})
		}
		items[i] = si
	}

	return &OrderSummary{
		MenuID: s.menu.ID,
		Status: s.menu.Status,
		Items:  items,
		Voters: len(s.voteOrder),
	}, nil
}
