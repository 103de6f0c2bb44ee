package notify

import (
	"fmt"
	"strings"

	"github.com/campus-dev/go-dining-bot/internal/domain/models"
)

// FormatMenu renders the short subscription-path message: a header line and
// one line per item name in page order. Ingredients, allergens and dietary
// tags are deliberately omitted here; brevity wins in a daily push.
func FormatMenu(m *models.Menu) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Menu for *%s* on %s for %s:\n", m.Location, m.Date, m.Meal))
	sb.WriteString(strings.Join(m.Order, "\n"))

	return sb.String()
}

// FormatMenuDetailed renders every field of every item. Diagnostic path only.
func FormatMenuDetailed(m *models.Menu) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Menu for *%s* on %s for %s:\n", m.Location, m.Date, m.Meal))

	for _, name := range m.Order {
		item := m.Items[name]

		sb.WriteString(fmt.Sprintf("\n%s\n", item.Name))

		if item.Ingredients != "" {
			sb.WriteString(fmt.Sprintf("  Ingredients: %s\n", item.Ingredients))
		}

		if item.Allergens != "" {
			sb.WriteString(fmt.Sprintf("  Allergens: %s\n", item.Allergens))
		}

		if len(item.DietaryTags) > 0 {
			sb.WriteString(fmt.Sprintf("  Dietary Info: %s\n", strings.Join(item.DietaryTags, ", ")))
		}
	}

	return sb.String()
}
