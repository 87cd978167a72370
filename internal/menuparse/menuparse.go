// Package menuparse detects daily menu announcements in free-form chat text
// and extracts the numbered dish list from them.
package menuparse

import (
	"regexp"
	"strings"
)

// menuHeader marks a "today's food" announcement in Khmer.
const menuHeader = "ម្ហូបថ្ងៃ"

// MinItems is the smallest dish list worth turning into an ordering session.
const MinItems = 2

// Lines numbered with Khmer digits (១..៦) or Arabic 1-6 followed by a dot.
var numberedLine = regexp.MustCompile(`^[១២៣៤៥៦1-6]\.\s*(.+)$`)

// IsMenuText reports whether the text looks like a food menu: either it
// carries the menu header or it contains at least MinItems numbered lines.
func IsMenuText(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if strings.HasPrefix(text, menuHeader) {
		return true
	}
	return len(ExtractItems(text)) >= MinItems
}

// ExtractItems returns the dish names from numbered lines, stripped of their
// numbering, in document order with duplicates removed.
func ExtractItems(text string) []string {
	var items []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		m := numberedLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		items = append(items, name)
	}
	return items
}
