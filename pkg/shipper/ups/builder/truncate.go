package builder

import "unicode/utf8"

// Field limits enforced by UPS, in characters.
const (
	maxAddressLine   = 35
	maxAddressLines  = 2
	maxCity          = 30
	maxState         = 5
	maxPostalCode    = 9
	maxCountryCode   = 2
	maxName          = 35
	maxPhone         = 15
	maxEmail         = 50
	maxInvoiceNumber = 35
	maxInvoiceDate   = 8
	maxTerms         = 3
	maxReason        = 20
	maxCurrency      = 3
	maxPartNumber    = 10
	maxCommodityCode = 15
)

// Truncate returns at most max characters of value. It counts runes, so
// multi-byte names are never split mid-character.
func Truncate(value string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	return string([]rune(value)[:max])
}
