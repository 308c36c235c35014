// Package clientstate keeps the filter state of list views in API clients.
// A State mirrors one list endpoint: its typed params and the URL that
// requests them are always rewritten together.
package clientstate

import (
	"fmt"
	"net/url"
	"strconv"

	"salemre/backend/internal/query"
)

// State is the filter, sort and page state of one list view. It is not safe
// for concurrent use; the Registry coordinates concurrent fetches.
type State struct {
	schema *query.Schema
	params query.Params
	url    url.URL
	gen    uint64
}

// New returns a default state requesting endpoint, e.g. "http://host/api/properties".
func New(schema *query.Schema, endpoint string) (*State, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	s := &State{schema: schema, params: query.NewParams(schema), url: *u}
	s.sync()
	return s, nil
}

// FromURL restores a state from a URL produced by State.URL. Keys the
// schema does not recognise are dropped.
func FromURL(schema *query.Schema, rawURL string) (*State, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	s := &State{schema: schema, params: query.Decode(schema, u.Query()), url: *u}
	s.sync()
	return s, nil
}

// sync rewrites the URL query from params and bumps the generation.
func (s *State) sync() {
	s.url.RawQuery = s.params.Encode(s.schema).Encode()
	s.gen++
}

func (s *State) Schema() *query.Schema { return s.schema }

// Params returns a copy of the current params.
func (s *State) Params() query.Params { return s.params.Clone() }

func (s *State) URL() string { return s.url.String() }

// Generation changes on every mutation. Fetches are tagged with it so a
// response for an older generation can be recognised.
func (s *State) Generation() uint64 { return s.gen }

// Get returns the current raw value of a filter key, "" when unset.
func (s *State) Get(key string) string {
	return s.params.Encode(s.schema).Get(key)
}

// Filtered reports whether any filter is set.
func (s *State) Filtered() bool {
	return len(s.params.Values) > 0
}

func (s *State) SetSearch(term string) error {
	return s.Set("search", term)
}

// Set changes one filter. An empty or invalid value removes the filter.
// page, limit and sort are accepted too. Changing anything but the page
// returns to page 1.
func (s *State) Set(key, value string) error {
	switch key {
	case query.ParamPage:
		n, err := strconv.Atoi(value)
		if err != nil {
			n = 1
		}
		s.SetPage(n)
		return nil
	case query.ParamLimit:
		s.params.Limit = s.schema.ClampLimit(value)
	case query.ParamSort:
		s.params.Sort = s.schema.DecodeSort(value)
	default:
		if !s.schema.Recognized(key) {
			return fmt.Errorf("%s has no filter %q", s.schema.Entity, key)
		}
		if v, ok := s.schema.DecodeValue(key, value); ok {
			s.params.Values[key] = v
		} else {
			delete(s.params.Values, key)
		}
	}
	s.params.Page = 1
	s.sync()
	return nil
}

// SetSort orders by key. An unknown key restores the default order.
func (s *State) SetSort(key string, desc bool) {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	s.params.Sort = s.schema.DecodeSort(key + "," + dir)
	s.params.Page = 1
	s.sync()
}

// SetPage moves to page n; values below 1 mean page 1.
func (s *State) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.params.Page = n
	s.sync()
}

// Clear resets every filter, the sort and the page.
func (s *State) Clear() {
	s.params = query.NewParams(s.schema)
	s.sync()
}
