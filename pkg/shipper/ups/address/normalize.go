// Package address normalizes the state/province part of a UPS address.
package address

import (
	"fmt"
	"strings"

	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/data"
)

const carrierName = "ups"

// IrelandPlaceholder is sent instead of a county when Irish validation is
// bypassed. UPS rejects an empty state for IE addresses.
const IrelandPlaceholder = "_"

// Normalize returns the state value UPS expects for the given country.
//
// US and CA names longer than two characters are abbreviated through the
// lookup tables (unknown names pass through), shorter values are upper-cased.
// IE counties are matched against the canonical list unless skipIreland is
// set. Every other country gets an empty state.
func Normalize(country, state string, skipIreland bool) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "US":
		return abbreviate(state, data.USStates), nil
	case "CA":
		return abbreviate(state, data.CanadianProvinces), nil
	case "IE":
		if skipIreland {
			return IrelandPlaceholder, nil
		}
		return MatchIrishCounty(state)
	default:
		return "", nil
	}
}

func abbreviate(state string, table map[string]string) string {
	if len([]rune(state)) > 2 {
		if abbr, ok := table[strings.ToLower(strings.TrimSpace(state))]; ok {
			return abbr
		}
		return state
	}
	return strings.ToUpper(state)
}

func invalidCounty(format string, args ...any) error {
	return shipper.InvalidAttribute(carrierName, fmt.Sprintf(format, args...))
}
