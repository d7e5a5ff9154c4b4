package domain

import (
	"sort"
	"time"
)

// MaxRecentFills caps how many fills are kept for display.
const MaxRecentFills = 10

// FillRole is the taker/maker classification of an executed fill,
// derived from the exchange side code.
type FillRole string

const (
	FillRoleTaker   FillRole = "TAKER"
	FillRoleMaker   FillRole = "MAKER"
	FillRoleUnknown FillRole = "UNKNOWN"
)

// ParseFillRole maps the exchange side code to a FillRole.
func ParseFillRole(code string) FillRole {
	switch code {
	case "A":
		return FillRoleTaker
	case "B":
		return FillRoleMaker
	default:
		return FillRoleUnknown
	}
}

// Fill is one executed portion of an order.
type Fill struct {
	Symbol      string
	Role        FillRole
	Size        float64
	Price       float64
	Fee         float64
	RealizedPnL float64
	Time        time.Time
}

// Value returns the notional value of the fill.
func (f Fill) Value() float64 { return f.Size * f.Price }

// RecentFills sorts fills by time descending and returns at most max
// entries. The input slice is not modified.
func RecentFills(fills []Fill, max int) []Fill {
	out := make([]Fill, len(fills))
	copy(out, fills)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
