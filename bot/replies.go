package bot

import (
	"fmt"
	"math"
	"strings"

	"beaconmarket/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

/************************************************
/**** MARK: REPLIES ****/
/************************************************/
const (
	REPLY_RATE_LIMITED = "⏸️ Too many commands. Please wait a few minutes."
	REPLY_ERROR        = "❌ An error occurred. Please try again."

	REPLY_LIST_EMPTY = "❌ Please provide listing details.\n\n" +
		"Example:\n" +
		"LIST: Mountain bike, R200 per day"
	REPLY_LIST_UNPARSEABLE = "❌ Couldn't parse listing. Please include:\n" +
		"• What you're listing\n" +
		"• Price (e.g., R200/day or R10k total)\n\n" +
		"Example:\n" +
		"LIST: 3-bed beach house, June 20-30, R15k total"
	REPLY_LIST_ERROR = "❌ Error creating listing. Please try again."

	REPLY_SOLD_NONE  = "❌ You have no active listings."
	REPLY_SOLD_ERROR = "❌ Error removing listing."

	REPLY_EDIT_NONE        = "❌ You have no active listings to edit."
	REPLY_EDIT_UNPARSEABLE = "❌ Couldn't understand edit request.\n\n" +
		"Examples:\n" +
		"• EDIT: Change price to R300\n" +
		"• EDIT: Add \"Helmet included\""
	REPLY_EDIT_ERROR = "❌ Error updating listing."
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders rands with thousands separators: 12000 -> "12,000",
// 5500.5 -> "5,500.5". At most two decimals, trailing zeros dropped.
func FormatPrice(v float64) string {
	v = math.Round(v*100) / 100
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	out := printer.Sprintf("%.2f", v)
	return strings.TrimRight(out, "0")
}

func listingsURL(baseURL string) string {
	return baseURL + "/listings.html"
}

func createdReply(l *models.Listing, baseURL string) string {
	price := ""
	if l.Price != nil {
		price = FormatPrice(*l.Price)
	}
	return fmt.Sprintf("✅ *Listing Created!*\n\n"+
		"%s\n"+
		"R%s %s\n\n"+
		"📱 View: %s\n\n"+
		"*To manage:*\n"+
		"• SOLD - Remove listing\n"+
		"• EDIT: [changes] - Update details",
		l.Title, price, l.PriceUnit, listingsURL(baseURL))
}

func soldReply(title string) string {
	return fmt.Sprintf("✅ *Listing Removed*\n\n"+
		"\"%s\" has been marked as sold.\n\n"+
		"List something else? Reply:\n"+
		"LIST: [details]", title)
}

func updatedReply(title, baseURL string) string {
	return fmt.Sprintf("✅ *Listing Updated*\n\n"+
		"\"%s\"\n\n"+
		"View: %s", title, listingsURL(baseURL))
}
