package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/moustafa-dental/dental-lab-api/models"
)

// BuildMillingRequest renders the milling/printing request message for an
// approved case, line-item by line-item. Tooth-billed orders list their teeth;
// quantity-billed orders show "Nx".
func BuildMillingRequest(c *models.Case) string {
	var lines []string
	for _, o := range c.Orders {
		if len(o.Teeth) > 0 {
			lines = append(lines, fmt.Sprintf("- %s for teeth: %s", o.ServiceName, strings.Join(o.Teeth, ", ")))
		} else {
			lines = append(lines, fmt.Sprintf("- %dx %s", o.Quantity, o.ServiceName))
		}
	}

	color := "Not specified"
	if c.Color != nil && *c.Color != "" {
		color = *c.Color
	}

	return strings.Join([]string{
		"New Milling/Printing Request",
		"-----------------------------",
		"Case Name: " + c.CaseName,
		"Doctor: " + c.Doctor,
		"Branch: " + c.Branch,
		"Color: " + color,
		"-----------------------------",
		"Order Details:",
		strings.Join(lines, "\n"),
		"-----------------------------",
		"Thank you.",
	}, "\n")
}

// WhatsAppLink builds the wa.me URL that opens a chat with the milling
// center, message prefilled. Non-digits are stripped from the phone number.
func WhatsAppLink(center *models.MillingCenter, message string) string {
	var digits strings.Builder
	for _, r := range center.PhoneNumber {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits.String(), url.QueryEscape(message))
}
