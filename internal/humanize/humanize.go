// Package humanize formats loosely typed metadata values for display.
package humanize

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// NotAvailable is returned for missing or unusable values.
const NotAvailable = "N/A"

// FormatDuration formats a number of seconds as "H:MM:SS" or "M:SS". Zero,
// negative and unconvertible values yield NotAvailable.
func FormatDuration(seconds any) string {
	total, ok := toInt64(seconds)
	if !ok || total <= 0 {
		return NotAvailable
	}

	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatViews abbreviates a view count with one decimal digit and a B, M or
// K suffix. Counts below a thousand are printed as is.
func FormatViews(views any) string {
	n, ok := toInt64(views)
	if !ok {
		return NotAvailable
	}

	x := float64(n)
	switch {
	case x >= 1e9:
		return fmt.Sprintf("%.1fB", x/1e9)
	case x >= 1e6:
		return fmt.Sprintf("%.1fM", x/1e6)
	case x >= 1e3:
		return fmt.Sprintf("%.1fK", x/1e3)
	default:
		return fmt.Sprint(n)
	}
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return 0, false
		}
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
