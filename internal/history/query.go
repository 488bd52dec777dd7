package history

import "time"

type Order int

const (
	// OrderNatural is insertion order (id ascending).
	OrderNatural Order = iota
	OrderNewest
	OrderTokensDesc
	OrderTokensAsc
)

// NoLimit marks a query without LIMIT.
const NoLimit = -1

// Query is the storage-independent shape of a history lookup.
type Query struct {
	TelegramID int64
	Since      *time.Time
	Until      *time.Time
	Order      Order
	Limit      int
}

// Empty reports whether the query can only return zero rows.
func (q Query) Empty() bool { return q.Limit == 0 }

// BuildQuery computes the window, order and limit for f.
//
//	RecentDays   requested_at in [now-days, now], id ASC
//	RecentCount  requested_at DESC, id DESC, LIMIT count
//	TopTokens    total_tokens DESC|ASC, id ASC, LIMIT count
//	All          id ASC
func BuildQuery(f Filter, telegramID int64, now time.Time) Query {
	q := Query{TelegramID: telegramID, Order: OrderNatural, Limit: NoLimit}

	switch f.Kind {
	case KindRecentDays:
		since := now.AddDate(0, 0, -f.Days)
		until := now
		q.Since, q.Until = &since, &until
	case KindRecentCount:
		q.Order = OrderNewest
		q.Limit = max(f.Count, 0)
	case KindTopTokens:
		q.Order = OrderTokensDesc
		if f.Direction == Low {
			q.Order = OrderTokensAsc
		}
		q.Limit = max(f.Count, 0)
	}
	return q
}

// Row is one exchange joined with its model name.
type Row struct {
	ID          int64     `json:"id"`
	Request     string    `json:"request"`
	Answer      string    `json:"answer"`
	TotalTokens int       `json:"total_tokens"`
	ModelName   string    `json:"model"`
	RequestedAt time.Time `json:"requested_at"`
}
