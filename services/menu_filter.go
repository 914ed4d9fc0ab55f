package services

import (
	"strings"

	"github.com/yeremiapane/restaurant-booking/models"
)

// MenuFilter narrows a menu listing. Zero fields do not filter.
type MenuFilter struct {
	Category string
	Search   string
	Veg      *bool
}

// FilterMenu applies every set filter to items (AND semantics). Category and
// veg match exactly, search is a case-insensitive substring match on name or
// description.
func FilterMenu(items []models.MenuItem, f MenuFilter) []models.MenuItem {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if f.Veg != nil && item.IsVeg != *f.Veg {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Description), search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Categories returns the distinct categories of items in first-seen order.
func Categories(items []models.MenuItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}
