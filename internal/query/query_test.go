package query

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return v
}

func TestDecodeDefaults(t *testing.T) {
	p := Decode(PropertySchema, url.Values{})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, Sort{Key: "createdAt", Desc: true}, p.Sort)
	assert.Empty(t, p.Values)
	assert.Equal(t, 0, p.Offset())
}

func TestDecodePaginationClamps(t *testing.T) {
	cases := []struct {
		raw         string
		page, limit int
	}{
		{"page=0&limit=0", 1, 10},
		{"page=-4&limit=-1", 1, 10},
		{"page=abc&limit=xyz", 1, 10},
		{"page=3&limit=25", 3, 25},
		{"page=2&limit=100000", 2, DefaultMaxLimit},
	}
	for _, tc := range cases {
		p := Decode(PropertySchema, mustParse(t, tc.raw))
		assert.Equal(t, tc.page, p.Page, tc.raw)
		assert.Equal(t, tc.limit, p.Limit, tc.raw)
	}
}

func TestWithMaxLimit(t *testing.T) {
	s := PropertySchema.WithMaxLimit(20)
	p := Decode(s, mustParse(t, "limit=50"))
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, DefaultMaxLimit, PropertySchema.maxLimit(), "original schema is unchanged")
}

func TestOffsetIsPureFunctionOfPageAndLimit(t *testing.T) {
	for page := 1; page <= 5; page++ {
		for _, limit := range []int{1, 7, 10, 100} {
			q := Build(PropertySchema, Params{Page: page, Limit: limit, Sort: PropertySchema.DefaultSort}, Privileged)
			assert.Equal(t, (page-1)*limit, q.Offset)
			assert.Equal(t, limit, q.Limit)
		}
	}
}

func TestHugePageDoesNotWrapOffset(t *testing.T) {
	p := Decode(PropertySchema, mustParse(t, "page=9223372036854775807&limit=10"))
	q := Build(PropertySchema, p, Public)
	assert.Equal(t, 10, q.Limit)
	assert.Greater(t, q.Offset, 0)
	assert.Equal(t, (q.Page-1)*q.Limit, q.Offset)
	assert.Greater(t, p.Offset(), 0)

	q = Build(PropertySchema, Params{Page: math.MaxInt, Limit: 1, Sort: PropertySchema.DefaultSort}, Privileged)
	assert.Equal(t, math.MaxInt-1, q.Offset)
}

func TestDecodeSort(t *testing.T) {
	s := PropertySchema
	assert.Equal(t, Sort{Key: "price"}, s.DecodeSort("price,ASC"))
	assert.Equal(t, Sort{Key: "price", Desc: true}, s.DecodeSort("price,desc"))
	assert.Equal(t, Sort{Key: "price"}, s.DecodeSort("price"))
	assert.Equal(t, Sort{Key: "createdAt"}, s.DecodeSort("CREATEDAT,asc"))
	assert.Equal(t, s.DefaultSort, s.DecodeSort("price,sideways"))
	assert.Equal(t, s.DefaultSort, s.DecodeSort("password,ASC"))
	assert.Equal(t, s.DefaultSort, s.DecodeSort(""))
}

func TestDecodeDropsMalformedValues(t *testing.T) {
	p := Decode(PropertySchema, mustParse(t, "minPrice=abc&maxPrice=NaN&bedrooms=two&featured=maybe&type=castle&foo=bar"))
	assert.Empty(t, p.Values)

	q := Build(PropertySchema, p, Privileged)
	require.Len(t, q.Predicates, 1, "only the default status predicate remains")
	assert.Equal(t, Predicate{Kind: Exact, Column: "status", Value: "active"}, q.Predicates[0])
}

func TestUnrecognizedParamDoesNotChangeQuery(t *testing.T) {
	with := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "type=villa&foo=bar")), Public)
	without := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "type=villa")), Public)
	assert.Equal(t, without, with)
}

func TestConjunctionIsOrderIndependent(t *testing.T) {
	a := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "type=Villa&minPrice=100")), Public)
	b := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "minPrice=100&type=Villa")), Public)
	assert.Equal(t, a, b)
}

func TestEnumDecodingIsCaseInsensitive(t *testing.T) {
	p := Decode(PropertySchema, mustParse(t, "type=VILLA"))
	assert.Equal(t, "villa", p.Values["type"])

	b := Decode(BlogSchema, mustParse(t, "category=buying+guide"))
	assert.Equal(t, "Buying Guide", b.Values["category"])
}

func TestRangePredicates(t *testing.T) {
	onlyMax := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "maxPrice=500000")), Public)
	assert.Contains(t, onlyMax.Predicates, Predicate{Kind: Range, Column: "price", Max: 500000.0})

	onlyMin := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "minPrice=100")), Public)
	assert.Contains(t, onlyMin.Predicates, Predicate{Kind: Range, Column: "price", Min: 100.0})

	both := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "minPrice=100&maxPrice=200")), Public)
	assert.Contains(t, both.Predicates, Predicate{Kind: Range, Column: "price", Min: 100.0, Max: 200.0})
}

func TestDateRangeUpperBoundCoversWholeDay(t *testing.T) {
	q := Build(InquirySchema, Decode(InquirySchema, mustParse(t, "from=2024-03-01&to=2024-03-31")), Privileged)
	require.Len(t, q.Predicates, 1)
	pred := q.Predicates[0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), pred.Min)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), pred.Max)
}

func TestCompoundOrSearch(t *testing.T) {
	q := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "search=sea+view")), Privileged)
	assert.Equal(t, Predicate{Kind: CompoundOr, Columns: []string{"title", "description", "location"}, Value: "sea view"}, q.Predicates[0])
}

func TestAudienceDefaults(t *testing.T) {
	statusPredicates := func(q Query) []Predicate {
		var out []Predicate
		for _, p := range q.Predicates {
			if p.Column == "status" {
				out = append(out, p)
			}
		}
		return out
	}
	active := Predicate{Kind: Exact, Column: "status", Value: "active"}

	// Public callers cannot widen visibility.
	for _, raw := range []string{"", "status=sold", "status=all"} {
		q := Build(PropertySchema, Decode(PropertySchema, mustParse(t, raw)), Public)
		assert.Equal(t, []Predicate{active}, statusPredicates(q), raw)
	}

	// Privileged callers get the default, a chosen status, or nothing for "all".
	q := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "")), Privileged)
	assert.Equal(t, []Predicate{active}, statusPredicates(q))

	q = Build(PropertySchema, Decode(PropertySchema, mustParse(t, "status=sold")), Privileged)
	assert.Equal(t, []Predicate{{Kind: Exact, Column: "status", Value: "sold"}}, statusPredicates(q))

	q = Build(PropertySchema, Decode(PropertySchema, mustParse(t, "status=all")), Privileged)
	assert.Empty(t, statusPredicates(q))

	q = Build(BlogSchema, Decode(BlogSchema, mustParse(t, "")), Public)
	assert.Equal(t, []Predicate{{Kind: Exact, Column: "status", Value: "published"}}, statusPredicates(q))
}

func TestStatusAllWithoutAudienceRule(t *testing.T) {
	q := Build(InquirySchema, Decode(InquirySchema, mustParse(t, "status=all")), Privileged)
	assert.Empty(t, q.Predicates)

	q = Build(InquirySchema, Decode(InquirySchema, mustParse(t, "status=in-progress")), Privileged)
	assert.Equal(t, []Predicate{{Kind: Exact, Column: "status", Value: "in-progress"}}, q.Predicates)
}

func TestSetMembership(t *testing.T) {
	q := Build(BlogSchema, Decode(BlogSchema, mustParse(t, "tag=investment&status=all")), Privileged)
	assert.Equal(t, []Predicate{{Kind: SetMembership, Column: "tags", Value: "investment"}}, q.Predicates)
}

func TestOrderAppendsIDTiebreak(t *testing.T) {
	q := Build(PropertySchema, Decode(PropertySchema, mustParse(t, "sort=price,ASC")), Public)
	assert.Equal(t, []Order{{Column: "price"}, {Column: "id"}}, q.Order)

	q = Build(PropertySchema, Decode(PropertySchema, mustParse(t, "")), Public)
	assert.Equal(t, []Order{{Column: "created_at", Desc: true}, {Column: "id"}}, q.Order)
}

func TestEncodeRoundTrip(t *testing.T) {
	raws := []string{
		"",
		"type=apartment&minPrice=2000000&maxPrice=5000000&page=2&limit=25&sort=price,ASC",
		"search=sea+view&featured=true&bedrooms=3&status=all",
		"minSize=120.5&location=salem&owner=42",
	}
	for _, raw := range raws {
		p := Decode(PropertySchema, mustParse(t, raw))
		again := Decode(PropertySchema, p.Encode(PropertySchema))
		assert.Equal(t, p, again, raw)
	}

	inq := Decode(InquirySchema, mustParse(t, "from=2024-01-02&to=2024-02-03T10:30:00Z"))
	assert.Equal(t, inq, Decode(InquirySchema, inq.Encode(InquirySchema)))
}

func TestEncodeOmitsDefaults(t *testing.T) {
	p := Decode(PropertySchema, mustParse(t, "page=1&limit=10&sort=createdAt,DESC&type=villa"))
	assert.Equal(t, url.Values{"type": {"villa"}}, p.Encode(PropertySchema))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, Result[int]{Count: 0, Limit: 10}.TotalPages())
	assert.Equal(t, 1, Result[int]{Count: 2, Limit: 10}.TotalPages())
	assert.Equal(t, 1, Result[int]{Count: 10, Limit: 10}.TotalPages())
	assert.Equal(t, 2, Result[int]{Count: 11, Limit: 10}.TotalPages())
	assert.Equal(t, 0, Result[int]{Count: 11}.TotalPages())
}

func TestRecognized(t *testing.T) {
	assert.True(t, PropertySchema.Recognized("minPrice"))
	assert.True(t, PropertySchema.Recognized("page"))
	assert.False(t, PropertySchema.Recognized("foo"))
}
