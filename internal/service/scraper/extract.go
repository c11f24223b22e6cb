package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/ikusa-server/internal/constants"
)

// descriptionSelector matches the "desc"-style blocks the leaderboard uses for
// profile details such as the papd value.
const descriptionSelector = `[class*="desc"]`

var powerPattern = regexp.MustCompile(`\b\d{2,4}\b`)

// privateMarkers are matched case-sensitively; "PrIvAdO" is not private.
var privateMarkers = []string{"privado", "Privado", "PRIVADO"}

// Extraction is what the heuristic could read from a profile page.
type Extraction struct {
	MaxPower  *int
	IsPrivate bool
}

// ExtractProfile parses an HTML profile page and applies the power/private
// heuristics to it.
func ExtractProfile(r io.Reader) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}
	result := ExtractFromDocument(doc)
	return &result, nil
}

// ExtractFromDocument looks for the highest power value inside description
// blocks first and only widens to the whole page when those hold none.
// A page without any candidate yields a nil MaxPower.
func ExtractFromDocument(doc *goquery.Document) Extraction {
	var result Extraction

	if power, ok := maxPowerIn(doc.Find(descriptionSelector)); ok {
		result.MaxPower = &power
	} else if power, ok := maxPowerIn(doc.Find("*")); ok {
		result.MaxPower = &power
	}

	result.IsPrivate = isPrivate(doc.Text())
	return result
}

func maxPowerIn(sel *goquery.Selection) (int, bool) {
	best, found := 0, false
	sel.Each(func(_ int, s *goquery.Selection) {
		for _, match := range powerPattern.FindAllString(s.Text(), -1) {
			value, err := strconv.Atoi(match)
			if err != nil || value < constants.PowerRange.Min || value > constants.PowerRange.Max {
				continue
			}
			if !found || value > best {
				best, found = value, true
			}
		}
	})
	return best, found
}

func isPrivate(text string) bool {
	for _, marker := range privateMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
