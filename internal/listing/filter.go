// Package listing narrows the set of available cars against the filters a viewer selects.
package listing

import (
	"strings"

	"seyyar/internal/domain/car"
)

// Apply returns the cars matching every active criterion, preserving input order.
func Apply(cars []*car.Car, c Criteria) []*car.Car {
	m := newMatcher(c)

	filtered := make([]*car.Car, 0, len(cars))
	for _, item := range cars {
		if item != nil && m.match(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Matches reports whether a single car satisfies c.
func Matches(item *car.Car, c Criteria) bool {
	return newMatcher(c).match(item)
}

type matcher struct {
	c     Criteria
	query string
	year  func(year int64) bool
	price func(price int64) bool
}

func newMatcher(c Criteria) *matcher {
	return &matcher{
		c:     c,
		query: strings.ToLower(c.Query),
		year:  yearBucket(c.YearRange),
		price: priceBucket(c.PriceRange),
	}
}

func (m *matcher) match(item *car.Car) bool {
	if m.query != "" && !matchesQuery(item, m.query) {
		return false
	}

	for _, eq := range [...]struct{ want, got string }{
		{m.c.Wilaya, item.Wilaya},
		{m.c.City, item.City},
		{m.c.Brand, item.Brand},
		{m.c.Model, item.Model},
		{m.c.FuelType, item.FuelType},
		{m.c.Transmission, item.Transmission},
		{m.c.Seats, item.Seats},
		{m.c.Doors, item.Doors},
		{m.c.Category, item.Category},
	} {
		if eq.want != "" && eq.want != eq.got {
			return false
		}
	}

	if m.year != nil {
		year, ok := parseLeadingInt(item.Year)
		if !ok || !m.year(year) {
			return false
		}
	}

	if m.price != nil {
		price, ok := parseLeadingInt(item.DailyPrice)
		if !ok || !m.price(price) {
			return false
		}
	}

	for _, f := range m.c.Features {
		if !item.HasFeature(f) {
			return false
		}
	}

	return true
}

func matchesQuery(item *car.Car, query string) bool {
	return strings.Contains(strings.ToLower(item.Title), query) ||
		strings.Contains(strings.ToLower(item.Brand), query) ||
		strings.Contains(strings.ToLower(item.Model), query) ||
		strings.Contains(strings.ToLower(item.Description), query)
}

// yearBucket returns nil for an empty label. A label other than "Before 2000" is read as
// "<start>-<end>"; if either bound is unreadable no car matches.
func yearBucket(label string) func(int64) bool {
	if label == "" {
		return nil
	}
	if label == YearBefore2000 {
		return func(year int64) bool { return year < 2000 }
	}

	bounds := strings.Split(label, "-")
	start, okStart := parseLeadingInt(bounds[0])
	var end int64
	okEnd := false
	if len(bounds) > 1 {
		end, okEnd = parseLeadingInt(bounds[1])
	}
	if !okStart || !okEnd {
		return func(int64) bool { return false }
	}

	return func(year int64) bool { return year >= start && year <= end }
}

// priceBucket returns nil for an empty or unknown label, so neither narrows the result.
func priceBucket(label string) func(int64) bool {
	switch label {
	case PriceUnder1000:
		return func(p int64) bool { return p < 1000 }
	case Price1000To2000:
		return between(1000, 2000)
	case Price2000To3000:
		return between(2000, 3000)
	case Price3000To5000:
		return between(3000, 5000)
	case Price5000To7000:
		return between(5000, 7000)
	case PriceOver7000:
		return func(p int64) bool { return p > 7000 }
	default:
		return nil
	}
}

func between(lo, hi int64) func(int64) bool {
	return func(p int64) bool { return p >= lo && p <= hi }
}
