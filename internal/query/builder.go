package query

import (
	"math"
	"time"
)

// Predicate is one condition of a Query. Column is set for every kind except
// CompoundOr, which sets Columns. Range predicates set Min and/or Max; the
// others set Value.
type Predicate struct {
	Kind    Kind
	Column  string
	Columns []string
	Value   any
	Min     any
	Max     any
}

// Order is one ordering term.
type Order struct {
	Column string
	Desc   bool
}

// Query is a storage-neutral list query: a conjunction of predicates, an
// ordering and a page window.
type Query struct {
	Predicates []Predicate
	Order      []Order
	Page       int
	Limit      int
	Offset     int
}

// Build turns typed params into a Query for the given audience. Predicates are
// produced in schema field order, so the result does not depend on the order
// in which parameters were supplied.
func Build(s *Schema, p Params, aud Audience) Query {
	q := Query{
		Page:  p.Page,
		Limit: p.Limit,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = s.defaultLimit()
	}
	if q.Limit > s.maxLimit() {
		q.Limit = s.maxLimit()
	}
	q.Page = clampPage(q.Page, q.Limit)
	q.Offset = (q.Page - 1) * q.Limit

	for _, f := range s.Fields {
		if s.Audience != nil && f.Kind == Exact && f.Param == s.Audience.Param {
			if pred, ok := audiencePredicate(s.Audience, p.Values[f.Param], aud); ok {
				q.Predicates = append(q.Predicates, pred)
			}
			continue
		}
		if pred, ok := fieldPredicate(f, p.Values); ok {
			q.Predicates = append(q.Predicates, pred)
		}
	}

	q.Order = s.order(p.Sort)
	return q
}

func audiencePredicate(rule *AudienceRule, value any, aud Audience) (Predicate, bool) {
	public := Predicate{Kind: Exact, Column: rule.Column, Value: rule.PublicValue}
	if aud != Privileged {
		return public, true
	}
	switch v := value.(type) {
	case nil:
		return public, true
	case string:
		if v == AllValue {
			return Predicate{}, false
		}
		return Predicate{Kind: Exact, Column: rule.Column, Value: v}, true
	}
	return public, true
}

func fieldPredicate(f Field, values map[string]any) (Predicate, bool) {
	if f.Kind == Range {
		lo, hasLo := values[f.MinParam]
		hi, hasHi := values[f.MaxParam]
		if f.MinParam == "" {
			hasLo = false
		}
		if f.MaxParam == "" {
			hasHi = false
		}
		if !hasLo && !hasHi {
			return Predicate{}, false
		}
		pred := Predicate{Kind: Range, Column: f.Column}
		if hasLo {
			pred.Min = lo
		}
		if hasHi {
			pred.Max = endOfDay(f, hi)
		}
		return pred, true
	}

	v, ok := values[f.Param]
	if !ok {
		return Predicate{}, false
	}
	if s, isStr := v.(string); isStr && f.AllowAll && s == AllValue {
		return Predicate{}, false
	}
	switch f.Kind {
	case CompoundOr:
		return Predicate{Kind: CompoundOr, Columns: f.Columns, Value: v}, true
	default:
		return Predicate{Kind: f.Kind, Column: f.Column, Value: v}, true
	}
}

// endOfDay widens a date-only upper bound to cover the whole day.
func endOfDay(f Field, v any) any {
	t, ok := v.(time.Time)
	if !ok || f.Type != Time || !t.Equal(t.Truncate(24*time.Hour)) {
		return v
	}
	return t.Add(24*time.Hour - time.Nanosecond)
}

func (s *Schema) order(sort Sort) []Order {
	col, ok := s.SortKeys[sort.Key]
	if !ok {
		sort = s.DefaultSort
		col = s.SortKeys[sort.Key]
	}
	orders := []Order{{Column: col, Desc: sort.Desc}}
	if s.IDColumn != "" && col != s.IDColumn {
		orders = append(orders, Order{Column: s.IDColumn})
	}
	return orders
}

// Result is one page of a list query.
type Result[T any] struct {
	Items []T
	Count int64
	Page  int
	Limit int
}

// TotalPages is ceil(Count / Limit).
func (r Result[T]) TotalPages() int {
	if r.Limit < 1 {
		return 0
	}
	return int((r.Count + int64(r.Limit) - 1) / int64(r.Limit))
}

// clampPage caps page so that (page-1)*limit cannot overflow. A capped page
// still lies past any real result set and comes back empty.
func clampPage(page, limit int) int {
	if limit > 0 && page > math.MaxInt/limit {
		return math.MaxInt / limit
	}
	return page
}
