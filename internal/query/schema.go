// Package query turns list request parameters into storage-neutral queries.
//
// A Schema declares, per entity, which request keys are recognised and how
// each maps to a predicate. Decode coerces raw url.Values into typed Params
// using the schema, and Build turns Params plus the caller's Audience into a
// Query that the repository packages render for their store.
package query

import "strings"

// Kind is the comparison a field performs.
type Kind int

const (
	// Exact matches on equality.
	Exact Kind = iota
	// Contains matches a case-insensitive substring.
	Contains
	// Range matches an inclusive lower and/or upper bound.
	Range
	// SetMembership matches when the value is an element of a stored set.
	SetMembership
	// CompoundOr matches a term against several columns with Contains, OR-combined.
	CompoundOr
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Contains:
		return "contains"
	case Range:
		return "range"
	case SetMembership:
		return "setMembership"
	case CompoundOr:
		return "compoundOr"
	}
	return "unknown"
}

// ValueType is the type a raw parameter is coerced to.
type ValueType int

const (
	String ValueType = iota
	Enum
	Int
	Float
	Bool
	Time
)

// Field declares one filterable attribute.
type Field struct {
	Kind Kind
	Type ValueType

	// Param is the request key for every kind except Range.
	Param string
	// MinParam and MaxParam are the request keys of a Range field. Either may be empty.
	MinParam string
	MaxParam string

	Column  string
	Columns []string // CompoundOr only

	// Values holds the accepted values of an Enum field, in canonical form.
	Values []string
	// AllowAll accepts the literal "all", which disables the field's predicate.
	AllowAll bool
}

// Params returns the request keys the field reads.
func (f Field) Params() []string {
	if f.Kind == Range {
		var keys []string
		if f.MinParam != "" {
			keys = append(keys, f.MinParam)
		}
		if f.MaxParam != "" {
			keys = append(keys, f.MaxParam)
		}
		return keys
	}
	return []string{f.Param}
}

// Audience decides which default visibility predicate applies.
type Audience int

const (
	// Public callers see only publicly visible records.
	Public Audience = iota
	// Privileged callers may choose any status, or all of them.
	Privileged
)

// AudienceRule names the status field whose default depends on the audience.
type AudienceRule struct {
	Param       string
	Column      string
	PublicValue string
}

// Sort is a sort key in request terms plus direction.
type Sort struct {
	Key  string
	Desc bool
}

// Schema declares the recognised parameters of one entity's list endpoint.
type Schema struct {
	Entity   string
	Fields   []Field
	SortKeys map[string]string // request sort key -> column
	// IDColumn is appended to every ordering as a stable tiebreak.
	IDColumn     string
	DefaultSort  Sort
	DefaultLimit int
	MaxLimit     int
	Audience     *AudienceRule
}

const (
	DefaultLimit    = 10
	DefaultMaxLimit = 100
)

// WithMaxLimit returns a copy of the schema with a different page size cap.
func (s *Schema) WithMaxLimit(n int) *Schema {
	cp := *s
	if n > 0 {
		cp.MaxLimit = n
	}
	return &cp
}

func (s *Schema) defaultLimit() int {
	if s.DefaultLimit > 0 {
		return s.DefaultLimit
	}
	return DefaultLimit
}

func (s *Schema) maxLimit() int {
	if s.MaxLimit > 0 {
		return s.MaxLimit
	}
	return DefaultMaxLimit
}

// fieldFor returns the field reading the given request key.
func (s *Schema) fieldFor(param string) (Field, bool) {
	for _, f := range s.Fields {
		for _, p := range f.Params() {
			if p == param {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Recognized reports whether key is a filter, sort or pagination key of the schema.
func (s *Schema) Recognized(key string) bool {
	switch key {
	case ParamPage, ParamLimit, ParamSort:
		return true
	}
	_, ok := s.fieldFor(key)
	return ok
}

// sortKey resolves a request sort key case-insensitively.
func (s *Schema) sortKey(key string) (string, bool) {
	if _, ok := s.SortKeys[key]; ok {
		return key, true
	}
	for k := range s.SortKeys {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}
