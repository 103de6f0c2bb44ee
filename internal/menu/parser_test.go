package menu

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuPageFixture = `<html><body>
<select id="MainContent_lstLocations">
	<option>Select Location</option>
	<option>Stern Dining</option>
	<option>Wilbur Dining</option>
	<option>Arrillaga Family Dining Commons</option>
</select>
<div class="clsMenuItem">
	<span class="clsLabel_Name"> Margherita Pizza </span>
	<span class="clsLabel_Ingredients">Ingredients: dough, tomato, mozzarella</span>
	<span class="clsLabel_Allergens">Allergens: wheat, milk</span>
	<img class="clsLabel_IconImage" title="Vegetarian" src="v.png"/>
	<img class="clsLabel_IconImage" title="Halal" src="h.png"/>
</div>
<div class="clsMenuItem">
	<span class="clsLabel_Name">Garden Salad</span>
</div>
<div class="clsMenuItem">
	<span class="clsLabel_Name"></span>
</div>
</body></html>`

func TestParseMenu(t *testing.T) {
	m, err := ParseMenu(strings.NewReader(menuPageFixture), "Stern Dining", "09/1/2026 - Tuesday", "Lunch")

	require.NoError(t, err)
	assert.Equal(t, 2, m.Len(), "block without a name is skipped")
	assert.Equal(t, []string{"Margherita Pizza", "Garden Salad"}, m.Order)

	pizza := m.Items["Margherita Pizza"]
	assert.Equal(t, "dough, tomato, mozzarella", pizza.Ingredients)
	assert.Equal(t, "wheat, milk", pizza.Allergens)
	assert.Equal(t, []string{"Vegetarian", "Halal"}, pizza.DietaryTags)

	salad := m.Items["Garden Salad"]
	assert.Empty(t, salad.Ingredients)
	assert.Empty(t, salad.Allergens)
	assert.Empty(t, salad.DietaryTags)
}

func TestParseMenu_NoItemBlocksIsEmptyMenuNotError(t *testing.T) {
	m, err := ParseMenu(strings.NewReader("<html><body><p>closed today</p></body></html>"),
		"Stern Dining", "09/1/2026 - Tuesday", "Lunch")

	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, "Stern Dining", m.Location)
}

func TestParseLocationOptions(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(menuPageFixture))
	require.NoError(t, err)

	locations, found := parseLocationOptions(doc)

	assert.True(t, found)
	assert.Equal(t, []string{"Stern Dining", "Wilbur Dining", "Arrillaga Family Dining Commons"}, locations,
		"placeholder option is filtered out")
}

func TestParseLocationOptions_SelectorAbsent(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	locations, found := parseLocationOptions(doc)

	assert.False(t, found)
	assert.Empty(t, locations)
}
