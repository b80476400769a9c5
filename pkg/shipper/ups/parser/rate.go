package parser

import (
	"github.com/shopspring/decimal"
	"github.com/tournevent/upslink/pkg/shipper/ups/data"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// Money is an amount in a currency.
type Money struct {
	Currency string
	Amount   decimal.Decimal
}

// RatedShipment is one quoted service.
type RatedShipment struct {
	ServiceCode string
	ServiceName string
	Total       Money
	Warnings    []string
}

// RateResult is the outcome of a rate request.
type RateResult struct {
	Envelope
	Rates []RatedShipment
}

// ParseRates reads a RateResponse, or a RatingServiceSelectionResponse from
// the legacy API.
func ParseRates(raw []byte, g document.Generation) (*RateResult, error) {
	tree, err := decode(raw, g)
	if err != nil {
		return nil, err
	}
	root := rootName(tree, "RateResponse", "RatingServiceSelectionResponse")
	result := &RateResult{Envelope: ParseEnvelope(tree, root)}
	if !result.Success() {
		return result, nil
	}

	for _, rated := range document.List(tree.Path(root, "RatedShipment")) {
		r, err := parseRatedShipment(rated)
		if err != nil {
			return nil, err
		}
		result.Rates = append(result.Rates, r)
	}
	return result, nil
}

func parseRatedShipment(rated any) (RatedShipment, error) {
	code := document.Text(document.Lookup(rated, "Service", "Code"))
	total, err := parseMoney(rateTotal(rated))
	if err != nil {
		return RatedShipment{}, err
	}

	r := RatedShipment{
		ServiceCode: code,
		ServiceName: data.ServiceName(code),
		Total:       total,
	}
	for _, w := range document.List(document.Lookup(rated, "RatedShipmentWarning")) {
		if text := document.Text(w); text != "" {
			r.Warnings = append(r.Warnings, text)
		}
	}
	for _, a := range document.List(document.Lookup(rated, "RatedShipmentAlert")) {
		if text := document.Text(document.Lookup(a, "Description")); text != "" {
			r.Warnings = append(r.Warnings, text)
		}
	}
	return r, nil
}

// rateTotal prefers the negotiated total over the published one.
func rateTotal(rated any) any {
	if total := document.Lookup(rated, "NegotiatedRateCharges", "TotalCharge"); total != nil {
		return total
	}
	if total := document.Lookup(rated, "NegotiatedRates", "NetSummaryCharges", "GrandTotal"); total != nil {
		return total
	}
	return document.Lookup(rated, "TotalCharges")
}

func parseMoney(node any) (Money, error) {
	m := Money{Currency: document.Text(document.Lookup(node, "CurrencyCode"))}
	value := document.Text(document.Lookup(node, "MonetaryValue"))
	if value == "" {
		return m, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, malformed("Monetary value is not a number", err)
	}
	m.Amount = amount
	return m, nil
}
