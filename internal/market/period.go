package market

import (
	"time"

	"github.com/newthinker/quotegate/internal/collector"
)

// DefaultPeriod is used when /history is called without a period
const DefaultPeriod = "1mo"

// ResolvePeriod maps a requested period onto the vendor window.
// Unrecognized periods behave like the one-month default.
func ResolvePeriod(period string, now time.Time) collector.Window {
	switch period {
	case "1d":
		return collector.Window{From: now.AddDate(0, 0, -5), To: now, Resolution: collector.ResolutionIntraday}
	case "1y":
		return collector.Window{From: now.AddDate(0, 0, -365), To: now, Resolution: collector.ResolutionEOD}
	default:
		return collector.Window{From: now.AddDate(0, 0, -30), To: now, Resolution: collector.ResolutionEOD}
	}
}
