package ai

import (
	"regexp"
	"strconv"
)

var priceTokenRe = regexp.MustCompile(`\$(\d+(\.\d{1,2})?)`)

// ExtractPrice scans a reply for dollar tokens like $180 or $149.99 and
// returns the last one; in a counteroffer sequence the final mention is the
// standing offer. The second return is false when no token is present.
func ExtractPrice(message string) (float64, bool) {
	matches := priceTokenRe.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return 0, false
	}

	last := matches[len(matches)-1][1]
	value, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
