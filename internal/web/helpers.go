package web

import (
	"html"
	"strconv"
	"strings"
	"time"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func utoa(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func signed(value int) string {
	if value > 0 {
		return "+" + itoa(value)
	}
	return itoa(value)
}

func esc(value string) string {
	return html.EscapeString(value)
}

func pageURL(base string, page, perPage int) string {
	if strings.Contains(base, "?") {
		return base + "&page=" + itoa(page) + "&per_page=" + itoa(perPage)
	}
	return base + "?page=" + itoa(page) + "&per_page=" + itoa(perPage)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02 15:04:05")
}

// direction returns the text direction for a catalog language.
func direction(lang string) string {
	if strings.HasPrefix(lang, "fa") {
		return "rtl"
	}
	return "ltr"
}

func RoundLabel(round, maxRounds int) string {
	return "Round " + itoa(round) + " of " + itoa(maxRounds)
}
