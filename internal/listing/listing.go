// Package listing holds the order list contract shared by the API and its
// consumers: pagination arithmetic, the search predicate and response
// envelope normalisation.
package listing

import (
	"strings"

	"orderdesk/internal/model"
)

// Default and maximum page sizes.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is one normalised page of orders.
type Page struct {
	Items []model.Order
	Total int
}

// TotalPages returns max(1, ceil(total/limit)).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

// InRange reports whether page is a valid 1-indexed page for total/limit.
func InRange(page, total, limit int) bool {
	return page >= 1 && page <= TotalPages(total, limit)
}

// Criteria is the filter applied to an order listing.
type Criteria struct {
	Status model.Status // empty means all
	Search string
	// IncludeAddress extends the search to the delivery address, as the
	// courier view does.
	IncludeAddress bool
}

// CriteriaFor derives the filter criteria expressed by list params.
func CriteriaFor(p model.ListParams) Criteria {
	return Criteria{
		Status:         p.Status,
		Search:         p.Search,
		IncludeAddress: p.Scope == model.ScopeCourier,
	}
}

// Matches reports whether o satisfies c. The name and address comparisons
// are case-insensitive; the mobile comparison is a raw substring match.
func Matches(o model.Order, c Criteria) bool {
	if c.Status != "" && o.Status != c.Status {
		return false
	}
	term := strings.TrimSpace(c.Search)
	if term == "" {
		return true
	}
	lower := strings.ToLower(term)
	if strings.Contains(strings.ToLower(o.FullName), lower) {
		return true
	}
	if strings.Contains(o.Mobile, term) {
		return true
	}
	return c.IncludeAddress && strings.Contains(strings.ToLower(o.Address), lower)
}

// Filter returns the orders matching c, preserving order. Filtering an
// already filtered slice with the same criteria returns the same slice
// contents.
func Filter(orders []model.Order, c Criteria) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if Matches(o, c) {
			out = append(out, o)
		}
	}
	return out
}

// NormalizeLimit clamps a requested page size into [1, MaxLimit], using
// DefaultLimit for non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
