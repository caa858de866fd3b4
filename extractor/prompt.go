package extractor

import (
	"fmt"
	"strings"

	"beaconmarket/models"
)

const promptTemplate = `Extract listing details from this WhatsApp message for a community marketplace.

Message: "%s"

Return ONLY a JSON object with these fields:
- category: one of %s
- title: short descriptive title (max %d characters)
- description: the full details from the message
- price: numeric value only ("10k" = 10000, "5.5k" = 5500)
- price_unit: one of %s

Category guidelines:
- Houses, homes, cottages, apartments, timeshares -> holiday-homes
- Bikes, kayaks, SUPs, equipment, gear -> equipment
- Cleaners, chefs, services -> services
- Easels, tables, event supplies -> events
- Garage, parking, storage -> parking

Price unit guidelines:
- A date range means the price is "total"
- Use an explicit "per night", "per day" or "per hour" when given
- Holiday homes default to "per night"
- Equipment defaults to "per day"

Examples:
Input: "Beacon isle time share for 30 June to 30 July for R10k"
Output: {"category":"holiday-homes","title":"Beacon Isle timeshare - June 30 to July 30","description":"Beacon isle time share for 30 June to 30 July","price":10000,"price_unit":"total"}

Input: "Mountain bike R200 per day"
Output: {"category":"equipment","title":"Mountain bike rental","description":"Mountain bike available for rent","price":200,"price_unit":"per day"}

Input: "3 bed beach house sleeps 6 R12k per night"
Output: {"category":"holiday-homes","title":"3-bed beach house","description":"3 bedroom beach house, sleeps 6","price":12000,"price_unit":"per night"}

Return ONLY the JSON object, no markdown, no explanation.`

// Prompt builds the extraction instructions for one message.
func Prompt(text string) string {
	return fmt.Sprintf(promptTemplate,
		text,
		joinQuoted(categoryNames()),
		models.TITLE_MAX_LEN,
		joinQuoted(unitNames()),
	)
}

func categoryNames() []string {
	out := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, string(c))
	}
	return out
}

func unitNames() []string {
	out := make([]string, 0, len(models.PriceUnits))
	for _, u := range models.PriceUnits {
		out = append(out, string(u))
	}
	return out
}

func joinQuoted(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}
