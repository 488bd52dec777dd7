// Package history turns a user's history request into an ordered, limited
// query over stored exchanges and renders the result as a plain-text report.
package history

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindAll Kind = iota
	KindRecentDays
	KindRecentCount
	KindTopTokens
)

type Direction int

const (
	High Direction = iota
	Low
)

func (d Direction) String() string {
	if d == Low {
		return "low"
	}
	return "high"
}

// ParseDirection accepts "high" and "low".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "high":
		return High, true
	case "low":
		return Low, true
	}
	return High, false
}

// Filter selects which records a report contains.
type Filter struct {
	Kind      Kind
	Days      int
	Count     int
	Direction Direction
}

func All() Filter { return Filter{Kind: KindAll} }

func RecentDays(days int) Filter { return Filter{Kind: KindRecentDays, Days: days} }

func RecentCount(n int) Filter { return Filter{Kind: KindRecentCount, Count: n} }

func TopTokens(d Direction, n int) Filter {
	return Filter{Kind: KindTopTokens, Direction: d, Count: n}
}

// Label is the short form used in report file names: last5, days7, high10, all.
func (f Filter) Label() string {
	switch f.Kind {
	case KindRecentDays:
		return fmt.Sprintf("days%d", f.Days)
	case KindRecentCount:
		return fmt.Sprintf("last%d", f.Count)
	case KindTopTokens:
		return fmt.Sprintf("%s%d", f.Direction, f.Count)
	}
	return "all"
}

const (
	HistoryPrefix = "history_"
	CustomSuffix  = "_custom_num"
)

// ParseToken maps callback data to a filter:
//
//	history_last5, history_last10, history_days7, history_days30, history_all
//	high_5, high_10, low_5, low_10
//
// Custom-count tokens (high_custom_num, low_custom_num) are not filters; see ParseCustom.
func ParseToken(data string) (Filter, bool) {
	if tok, ok := strings.CutPrefix(data, HistoryPrefix); ok {
		switch {
		case tok == "all":
			return All(), true
		case strings.HasPrefix(tok, "last"):
			n, err := strconv.Atoi(strings.TrimPrefix(tok, "last"))
			if err != nil || n < 0 {
				return Filter{}, false
			}
			return RecentCount(n), true
		case strings.HasPrefix(tok, "days"):
			n, err := strconv.Atoi(strings.TrimPrefix(tok, "days"))
			if err != nil || n < 0 {
				return Filter{}, false
			}
			return RecentDays(n), true
		}
		return Filter{}, false
	}

	dir, num, ok := strings.Cut(data, "_")
	if !ok {
		return Filter{}, false
	}
	d, ok := ParseDirection(dir)
	if !ok {
		return Filter{}, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return Filter{}, false
	}
	return TopTokens(d, n), true
}

// ParseCustom recognizes high_custom_num / low_custom_num.
func ParseCustom(data string) (Direction, bool) {
	dir, ok := strings.CutSuffix(data, CustomSuffix)
	if !ok {
		return High, false
	}
	return ParseDirection(dir)
}
