package notify_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-dev/go-dining-bot/internal/domain/models"
	"github.com/campus-dev/go-dining-bot/internal/notify"
)

func sampleMenu() *models.Menu {
	m := models.NewMenu("Stern Dining", "09/1/2026 - Tuesday", "Lunch")
	m.Add(models.MenuItem{Name: "Pizza"})
	m.Add(models.MenuItem{Name: "Salad", Ingredients: "lettuce"})

	return m
}

func TestFormatMenu(t *testing.T) {
	text := notify.FormatMenu(sampleMenu())

	lines := strings.Split(text, "\n")
	assert.Equal(t, "Menu for *Stern Dining* on 09/1/2026 - Tuesday for Lunch:", lines[0])
	assert.Equal(t, "Pizza", lines[1])
	assert.Equal(t, "Salad", lines[2])

	assert.NotContains(t, text, "lettuce", "subscription path omits ingredients")
}

func TestFormatMenu_EmptyMenuIsHeaderOnly(t *testing.T) {
	m := models.NewMenu("Wilbur Dining", "09/1/2026 - Tuesday", "Lunch")

	text := notify.FormatMenu(m)

	assert.Equal(t, "Menu for *Wilbur Dining* on 09/1/2026 - Tuesday for Lunch:\n", text)
}

func TestFormatMenuDetailed(t *testing.T) {
	m := sampleMenu()
	m.Add(models.MenuItem{
		Name:        "Tofu Bowl",
		Allergens:   "soy",
		DietaryTags: []string{"Vegan", "Gluten Free"},
	})

	text := notify.FormatMenuDetailed(m)

	assert.Contains(t, text, "Ingredients: lettuce")
	assert.Contains(t, text, "Allergens: soy")
	assert.Contains(t, text, "Dietary Info: Vegan, Gluten Free")
}
