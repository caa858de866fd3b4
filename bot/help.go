package bot

const helpTemplate = `🏖️ *BeaconMarket Commands*

📝 *List Something:*
LIST: Mountain bike, R200 per day
LIST: 3-bed beach house, R12000 per night, sleeps 6
LIST: Beacon Isle timeshare, June 30-July 30, R10k total

🗑️ *Remove Listing:*
SOLD (removes your most recent)
SOLD: bike (removes specific listing)

✏️ *Edit Listing:*
EDIT: Change price to R300
EDIT: Add "Helmet included"

📱 Browse all: `

const helpFooter = `

All buyers contact you directly via WhatsApp - we just list it for you!`

// HelpText is the usage message. It only depends on baseURL.
func HelpText(baseURL string) string {
	return helpTemplate + baseURL + helpFooter
}
