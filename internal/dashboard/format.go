// Package dashboard holds the display helpers shared by the role dashboards
// and the background syncer that tells them to refresh.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dmitrijs2005/nsghealth/internal/common"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders a Kenyan shilling amount, e.g. "KSh 1,500".
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "KSh " + printer.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}

const (
	dateTimeLayout = "Jan 2, 2006, 03:04 PM"
	dateLayout     = "Jan 2, 2006"
)

// FormatDate renders t as "Jun 1, 2025, 09:00 AM" in t's location.
func FormatDate(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// FormatRelativeTime describes t relative to now. Anything a week or older
// is shown as a plain date.
func FormatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
	return t.Format(dateLayout)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func IsToday(t, now time.Time) bool {
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func IsThisMonth(t, now time.Time) bool {
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}

var statusColors = map[string]string{
	"active":      "green",
	"pending":     "yellow",
	"completed":   "blue",
	"cancelled":   "red",
	"confirmed":   "purple",
	"in-progress": "blue",
	"delivered":   "green",
	"shipped":     "purple",
}

// StatusColor maps a record status to its badge colour, gray if unknown.
func StatusColor(status string) string {
	if c, ok := statusColors[strings.ToLower(status)]; ok {
		return c
	}
	return "gray"
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID returns "<prefix>_<unix millis>_<9 random base36 chars>".
func GenerateID(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "id"
	}
	b := common.GenerateRandByteArray(9)
	suffix := make([]byte, len(b))
	for i, c := range b {
		suffix[i] = base36[int(c)%len(base36)]
	}
	common.WipeByteArray(b)
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), suffix)
}
