package models

import (
	"fmt"
	"time"
)

// MenuItem is one dish as rendered by the menu site. Immutable once parsed.
type MenuItem struct {
	Name        string
	Ingredients string
	Allergens   string
	DietaryTags []string
}

// Menu is the set of items offered by one dining hall for one date and meal.
// Items preserves page order; the map gives lookup by name.
type Menu struct {
	Location string
	Date     string
	Meal     string
	Items    map[string]MenuItem
	Order    []string
}

func NewMenu(location, date, meal string) *Menu {
	return &Menu{
		Location: location,
		Date:     date,
		Meal:     meal,
		Items:    make(map[string]MenuItem),
	}
}

// Add records an item under its name. The first occurrence wins; the site
// occasionally repeats an item block within one menu.
func (m *Menu) Add(item MenuItem) {
	if _, exists := m.Items[item.Name]; exists {
		return
	}

	m.Items[item.Name] = item
	m.Order = append(m.Order, item.Name)
}

func (m *Menu) Len() int {
	return len(m.Order)
}

// FormatMenuDate renders t the way the menu site labels its day options:
// zero-padded month, unpadded day, full weekday, e.g. "09/1/2026 - Tuesday".
func FormatMenuDate(t time.Time) string {
	return fmt.Sprintf("%02d/%d/%d - %s", int(t.Month()), t.Day(), t.Year(), t.Weekday())
}
