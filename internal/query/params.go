package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Request keys shared by every schema.
const (
	ParamPage  = "page"
	ParamLimit = "limit"
	ParamSort  = "sort"

	// AllValue disables a field that allows it.
	AllValue = "all"
)

const dateLayout = "2006-01-02"

// Params are decoded, typed list parameters. Values is keyed by request key
// and holds string, int64, float64, bool or time.Time values.
type Params struct {
	Values map[string]any
	Page   int
	Limit  int
	Sort   Sort
}

// NewParams returns the defaults of a schema: page 1, default limit and sort, no filters.
func NewParams(s *Schema) Params {
	return Params{
		Values: map[string]any{},
		Page:   1,
		Limit:  s.defaultLimit(),
		Sort:   s.DefaultSort,
	}
}

// Decode coerces raw request values into Params. Unrecognised keys are
// ignored and values that fail coercion are dropped; Decode never fails.
func Decode(s *Schema, raw url.Values) Params {
	p := NewParams(s)
	for key := range raw {
		if _, ok := s.fieldFor(key); !ok {
			continue
		}
		if v, ok := s.DecodeValue(key, raw.Get(key)); ok {
			p.Values[key] = v
		}
	}
	p.Page = decodePage(raw.Get(ParamPage))
	p.Limit = s.ClampLimit(raw.Get(ParamLimit))
	p.Sort = s.DecodeSort(raw.Get(ParamSort))
	return p
}

// DecodeValue coerces a single raw filter value for the given request key.
func (s *Schema) DecodeValue(key, raw string) (any, bool) {
	f, ok := s.fieldFor(key)
	if !ok {
		return nil, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if f.AllowAll && strings.EqualFold(raw, AllValue) {
		return AllValue, true
	}
	switch f.Type {
	case String:
		return raw, true
	case Enum:
		for _, v := range f.Values {
			if strings.EqualFold(v, raw) {
				return v, true
			}
		}
		return nil, false
	case Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case Float:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return n, true
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, false
		}
		return b, true
	case Time:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t.UTC(), true
		}
		if t, err := time.Parse(dateLayout, raw); err == nil {
			return t.UTC(), true
		}
		return nil, false
	}
	return nil, false
}

func decodePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ClampLimit parses a page size, falling back to the default below 1 and
// capping it at the schema maximum.
func (s *Schema) ClampLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return s.defaultLimit()
	}
	if n > s.maxLimit() {
		return s.maxLimit()
	}
	return n
}

// DecodeSort parses "<key>,<ASC|DESC>". A missing direction means ascending;
// an unknown key or direction yields the schema default.
func (s *Schema) DecodeSort(raw string) Sort {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.DefaultSort
	}
	keyPart, dirPart, hasDir := strings.Cut(raw, ",")
	key, ok := s.sortKey(strings.TrimSpace(keyPart))
	if !ok {
		return s.DefaultSort
	}
	if !hasDir {
		return Sort{Key: key}
	}
	switch strings.ToUpper(strings.TrimSpace(dirPart)) {
	case "ASC":
		return Sort{Key: key}
	case "DESC":
		return Sort{Key: key, Desc: true}
	}
	return s.DefaultSort
}

// Encode renders Params back into request values, omitting empty values and
// defaults so that Decode(s, p.Encode(s)) reproduces p.
func (p Params) Encode(s *Schema) url.Values {
	out := url.Values{}
	for key, v := range p.Values {
		if raw := formatValue(v); raw != "" {
			out.Set(key, raw)
		}
	}
	if p.Page > 1 {
		out.Set(ParamPage, strconv.Itoa(p.Page))
	}
	if p.Limit > 0 && p.Limit != s.defaultLimit() {
		out.Set(ParamLimit, strconv.Itoa(p.Limit))
	}
	if p.Sort.Key != "" && p.Sort != s.DefaultSort {
		out.Set(ParamSort, EncodeSort(p.Sort))
	}
	return out
}

// EncodeSort renders a sort as "<key>,<ASC|DESC>".
func EncodeSort(s Sort) string {
	if s.Desc {
		return s.Key + ",DESC"
	}
	return s.Key + ",ASC"
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		t := x.UTC()
		if t.Equal(t.Truncate(24 * time.Hour)) {
			return t.Format(dateLayout)
		}
		return t.Format(time.RFC3339Nano)
	}
	return ""
}

// Offset is the number of rows skipped before the current page.
func (p Params) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (clampPage(p.Page, p.Limit) - 1) * p.Limit
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	cp := p
	cp.Values = make(map[string]any, len(p.Values))
	for k, v := range p.Values {
		cp.Values[k] = v
	}
	return cp
}
