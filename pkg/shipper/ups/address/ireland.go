package address

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/tournevent/upslink/pkg/shipper/ups/data"
)

// Inputs shorter than minFuzzyCountyLength must match a county exactly;
// longer ones may be up to a quarter of their length away from it.
const minFuzzyCountyLength = 6

func maxCountyDistance(value string) int {
	n := utf8.RuneCountInString(value)
	if n < minFuzzyCountyLength {
		return 0
	}
	return n / 4
}

// MatchIrishCounty resolves a free-text Irish county ("Co. Dublin",
// "county cork", "Kilkeny") to its canonical name.
func MatchIrishCounty(state string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(state))
	if value == "" {
		return "", invalidCounty("Invalid state for Ireland: state is required")
	}

	for _, prefix := range data.IrishCountyPrefixes {
		if strings.HasPrefix(value, prefix) {
			value = strings.TrimSpace(strings.TrimPrefix(value, prefix))
			break
		}
	}
	if value == "" {
		return "", invalidCounty("Invalid state for Ireland: %q", state)
	}

	best, bestDistance := "", maxCountyDistance(value)+1
	for _, county := range data.IrishCounties {
		candidate := strings.ToLower(county)
		if candidate == value {
			return county, nil
		}
		if d := levenshtein.ComputeDistance(value, candidate); d < bestDistance {
			best, bestDistance = county, d
		}
	}
	if best == "" {
		return "", invalidCounty("Invalid state for Ireland: %q", state)
	}
	return best, nil
}
