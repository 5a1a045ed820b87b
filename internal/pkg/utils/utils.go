package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ConvertMinutesToDuration convert minutes to duration format string
// Example: 125 -> "2h 5m"
func ConvertMinutesToDuration(durationInMinutes int64) string {

	h := durationInMinutes / 60
	m := durationInMinutes % 60

	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}

	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}

	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatUSD formats a dollar amount with thousand separators.
// Example: 1234.5 -> "$1,234.50"
func FormatUSD(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := int64(amount)
	cents := int64((amount-float64(whole))*100 + 0.5)
	if cents >= 100 {
		whole++
		cents -= 100
	}

	str := strconv.FormatInt(whole, 10)

	var groups []string
	for len(str) > 3 {
		groups = append([]string{str[len(str)-3:]}, groups...)
		str = str[:len(str)-3]
	}
	groups = append([]string{str}, groups...)

	formatted := fmt.Sprintf("$%s.%02d", strings.Join(groups, ","), cents)
	if negative {
		return "-" + formatted
	}

	return formatted
}
