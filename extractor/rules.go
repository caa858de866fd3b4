package extractor

import (
	"regexp"

	"beaconmarket/models"
)

// A unitRule sets the price unit when its pattern appears anywhere in the text.
type unitRule struct {
	pattern *regexp.Regexp
	unit    models.PriceUnit
}

// unitRules are all evaluated in order and every match overwrites the
// previous one: the LAST matching rule wins. "total" is checked last, so
// "R5k total, 3 nights" is a total price.
var unitRules = []unitRule{
	{regexp.MustCompile(`(?i)night`), models.PRICE_UNIT_NIGHT},
	{regexp.MustCompile(`(?i)hour`), models.PRICE_UNIT_HOUR},
	{regexp.MustCompile(`(?i)week`), models.PRICE_UNIT_WEEK},
	{regexp.MustCompile(`(?i)month`), models.PRICE_UNIT_MONTH},
	{regexp.MustCompile(`(?i)service`), models.PRICE_UNIT_SERVICE},
	{regexp.MustCompile(`(?i)total`), models.PRICE_UNIT_TOTAL},
}

const defaultUnit = models.PRICE_UNIT_DAY

// A categoryRule assigns a category when any of its keywords appears.
type categoryRule struct {
	pattern  *regexp.Regexp
	category models.Category
}

// categoryRules are evaluated in order and the FIRST match wins.
var categoryRules = []categoryRule{
	{regexp.MustCompile(`(?i)house|home|cottage|apartment|flat|room|timeshare|time share`), models.CATEGORY_HOLIDAY_HOMES},
	{regexp.MustCompile(`(?i)clean|chef|cook|dog|walk|handyman|plumb|electric|paint`), models.CATEGORY_SERVICES},
	{regexp.MustCompile(`(?i)easel|table|chair|tent|gazebo|party|event`), models.CATEGORY_EVENTS},
	{regexp.MustCompile(`(?i)garage|parking|storage`), models.CATEGORY_PARKING},
}

const defaultCategory = models.CATEGORY_EQUIPMENT

func inferUnit(text string) models.PriceUnit {
	unit := defaultUnit
	for _, r := range unitRules {
		if r.pattern.MatchString(text) {
			unit = r.unit
		}
	}
	return unit
}

func inferCategory(text string) models.Category {
	for _, r := range categoryRules {
		if r.pattern.MatchString(text) {
			return r.category
		}
	}
	return defaultCategory
}
