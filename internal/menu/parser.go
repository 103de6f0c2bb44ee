package menu

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/campus-dev/go-dining-bot/internal/domain/models"
)

// Structural markers of the menu page. These class names and control ids are
// an external contract of the site and may break without notice.
const (
	locationSelectID = "MainContent_lstLocations"
	daySelectID      = "MainContent_lstDay"
	mealSelectID     = "MainContent_lstMealType"

	menuItemSelector    = "div.clsMenuItem"
	itemNameSelector    = "span.clsLabel_Name"
	ingredientsSelector = "span.clsLabel_Ingredients"
	allergensSelector   = "span.clsLabel_Allergens"
	dietaryIconSelector = "img.clsLabel_IconImage"

	locationPlaceholder = "Select Location"
)

// ParseMenu extracts the repeated menu item blocks from rendered page markup.
// A page without item blocks yields an empty menu, not an error: the slot may
// legitimately have nothing on offer.
func ParseMenu(r io.Reader, location, date, meal string) (*models.Menu, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing menu page markup: %w", err)
	}

	m := models.NewMenu(location, date, meal)

	doc.Find(menuItemSelector).Each(func(_ int, block *goquery.Selection) {
		name := strings.TrimSpace(block.Find(itemNameSelector).First().Text())
		if name == "" {
			return
		}

		item := models.MenuItem{Name: name}

		if sel := block.Find(ingredientsSelector).First(); sel.Length() > 0 {
			item.Ingredients = stripFieldPrefix(sel.Text(), "Ingredients:")
		}

		if sel := block.Find(allergensSelector).First(); sel.Length() > 0 {
			item.Allergens = stripFieldPrefix(sel.Text(), "Allergens:")
		}

		block.Find(dietaryIconSelector).Each(func(_ int, icon *goquery.Selection) {
			if title, ok := icon.Attr("title"); ok && strings.TrimSpace(title) != "" {
				item.DietaryTags = append(item.DietaryTags, strings.TrimSpace(title))
			}
		})

		m.Add(item)
	})

	return m, nil
}

func stripFieldPrefix(text, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), prefix))
}

// parseLocationOptions reads the option set of the location selector. The
// second return reports whether the selector exists at all, which separates
// "page changed under us" from "no locations offered".
func parseLocationOptions(doc *goquery.Document) ([]string, bool) {
	sel := doc.Find("select#" + locationSelectID)
	if sel.Length() == 0 {
		return nil, false
	}

	var locations []string

	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		text := strings.TrimSpace(opt.Text())
		if text == "" || text == locationPlaceholder {
			return
		}

		locations = append(locations, text)
	})

	return locations, true
}
