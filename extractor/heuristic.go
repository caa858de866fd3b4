package extractor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"beaconmarket/models"
)

var (
	// priceRegexp captures a rand amount: R200, r 1,500, R5.5k, R12k
	priceRegexp = regexp.MustCompile(`(?i)\bR\s*(\d+(?:,\d{3})*(?:\.\d+)?)(k\b)?`)
	// priceTailRegexp matches from the first rand amount to the end of the text
	priceTailRegexp = regexp.MustCompile(`(?i)\bR\s*\d.*$`)
)

// Heuristic extracts listing fields with keyword rules and regular
// expressions. It is deterministic and always available.
type Heuristic struct{}

func (Heuristic) Extract(text string) Fields {
	return Fields{
		Category:    inferCategory(text),
		Title:       extractTitle(text),
		Description: text,
		Price:       extractPrice(text),
		PriceUnit:   inferUnit(text),
		Source:      SourceHeuristic,
	}
}

// ParseAmount converts the digits of a price match into rands. withK
// multiplies by 1000 ("5.5k" is 5500). Thousands separators are accepted.
func ParseAmount(digits string, withK bool) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", digits, err)
	}
	if withK {
		v *= 1000
	}
	return math.Round(v*100) / 100, nil
}

// ParsePriceString accepts "10000", "10k", "R5.5k" or "R 1,200".
func ParsePriceString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "R"), "r")
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	withK := strings.HasSuffix(lower, "k")
	if withK {
		s = s[:len(s)-1]
	}
	return ParseAmount(s, withK)
}

func extractPrice(text string) *float64 {
	m := priceRegexp.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := ParseAmount(m[1], m[2] != "")
	if err != nil {
		return nil
	}
	return &v
}

// extractTitle keeps the text before the first comma, drops a trailing
// price fragment and caps the length.
func extractTitle(text string) string {
	title, _, _ := strings.Cut(text, ",")
	title = priceTailRegexp.ReplaceAllString(title, "")
	title = strings.TrimRight(strings.TrimSpace(title), " -:;/(")
	return Truncate(title, models.TITLE_MAX_LEN)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
