package dateutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layout is the day-first layout receipts and reminders are printed with.
const Layout = "02/01/2006"

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse accepts dd/mm/yyyy first and then any format dateparse understands
// (ISO 8601, RFC 3339, ...). Dates without a zone are read in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.ParseInLocation(Layout, s, loc); err == nil {
		return t, nil
	}

	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("dateparse.ParseIn -> %w", err)
	}

	return t, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
