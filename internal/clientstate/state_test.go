package clientstate

import (
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salemre/backend/internal/query"
)

const endpoint = "http://localhost:8080/api/properties"

func queryOf(t *testing.T, s *State) url.Values {
	t.Helper()
	u, err := url.Parse(s.URL())
	require.NoError(t, err)
	return u.Query()
}

func TestNewStateHasCleanURL(t *testing.T) {
	s, err := New(query.PropertySchema, endpoint)
	require.NoError(t, err)
	assert.Equal(t, endpoint, s.URL())
	assert.False(t, s.Filtered())
	assert.Equal(t, 1, s.Params().Page)
}

func TestMutationsRewriteURL(t *testing.T) {
	s, err := New(query.PropertySchema, endpoint)
	require.NoError(t, err)

	require.NoError(t, s.SetSearch("  garden "))
	require.NoError(t, s.Set("type", "Villa"))
	require.NoError(t, s.Set("minPrice", "150000"))
	s.SetSort("price", false)
	s.SetPage(3)

	q := queryOf(t, s)
	assert.Equal(t, "garden", q.Get("search"))
	assert.Equal(t, "villa", q.Get("type"))
	assert.Equal(t, "150000", q.Get("minPrice"))
	assert.Equal(t, "price,ASC", q.Get("sort"))
	assert.Equal(t, "3", q.Get("page"))

	p := s.Params()
	assert.Equal(t, float64(150000), p.Values["minPrice"])
	assert.Equal(t, 3, p.Page)
}

func TestChangingFilterResetsPage(t *testing.T) {
	s, err := New(query.PropertySchema, endpoint)
	require.NoError(t, err)
	s.SetPage(4)

	require.NoError(t, s.Set("bedrooms", "3"))
	assert.Equal(t, 1, s.Params().Page)
	assert.Empty(t, queryOf(t, s).Get("page"))

	s.SetPage(2)
	s.SetSort("views", true)
	assert.Equal(t, 1, s.Params().Page)
}

func TestEmptyOrInvalidValueRemovesKey(t *testing.T) {
	s, err := New(query.PropertySchema, endpoint)
	require.NoError(t, err)

	require.NoError(t, s.Set("bedrooms", "2"))
	require.NoError(t, s.Set("bedrooms", ""))
	assert.NotContains(t, queryOf(t, s), "bedrooms")

	require.NoError(t, s.Set("type", "castle"))
	assert.NotContains(t, queryOf(t, s), "type")

	// Default values never reach the URL.
	require.NoError(t, s.Set("limit", "10"))
	s.SetSort("createdAt", true)
	s.SetPage(1)
	assert.Equal(t, endpoint, s.URL())
}

func TestUnknownKey(t *testing.T) {
	s, err := New(query.BlogSchema, "http://localhost/api/blog")
	require.NoError(t, err)
	gen := s.Generation()
	assert.Error(t, s.Set("bedrooms", "2"))
	assert.Equal(t, gen, s.Generation())
}

func TestClear(t *testing.T) {
	s, err := New(query.PropertySchema, endpoint)
	require.NoError(t, err)
	require.NoError(t, s.Set("location", "Clifton"))
	s.SetSort("price", true)
	s.SetPage(5)

	s.Clear()
	assert.Equal(t, endpoint, s.URL())
	assert.False(t, s.Filtered())
	assert.Equal(t, query.NewParams(query.PropertySchema), s.Params())
}

func TestURLRoundTrip(t *testing.T) {
	s, err := New(query.InquirySchema, "http://localhost/api/inquiries")
	require.NoError(t, err)
	require.NoError(t, s.Set("status", "In-Progress"))
	require.NoError(t, s.Set("from", "2026-02-01"))
	require.NoError(t, s.Set("property", "12"))
	require.NoError(t, s.Set("limit", "25"))
	s.SetSort("name", false)
	s.SetPage(2)

	restored, err := FromURL(query.InquirySchema, s.URL())
	require.NoError(t, err)
	assert.Equal(t, s.Params(), restored.Params())
	assert.Equal(t, s.URL(), restored.URL())
}

func TestFromURLDropsUnknownAndInvalid(t *testing.T) {
	s, err := FromURL(query.PropertySchema, endpoint+"?utm_source=mail&bedrooms=two&type=house&page=0")
	require.NoError(t, err)
	assert.Equal(t, endpoint+"?type=house", s.URL())
}

func TestGenerationBumpsOnEveryMutation(t *testing.T) {
	s, err := New(query.PropertySchema, endpoint)
	require.NoError(t, err)
	seen := map[uint64]bool{s.Generation(): true}

	steps := []func(){
		func() { _ = s.SetSearch("a") },
		func() { s.SetPage(2) },
		func() { s.SetSort("title", false) },
		func() { s.Clear() },
	}
	for _, step := range steps {
		step()
		assert.False(t, seen[s.Generation()])
		seen[s.Generation()] = true
	}
}

func TestRegistryDropsSupersededFetch(t *testing.T) {
	r := NewRegistry()

	first := r.Begin("properties")
	second := r.Begin("properties")
	assert.True(t, r.Status("properties").Loading)

	assert.False(t, r.Finish(first, errors.New("stale timeout")))
	assert.True(t, r.Status("properties").Loading)
	assert.False(t, r.Current(first))

	assert.True(t, r.Finish(second, nil))
	st := r.Status("properties")
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)

	// Finishing twice is harmless.
	assert.True(t, r.Finish(second, errors.New("late")))
}

func TestRegistryKeysAreIndependent(t *testing.T) {
	r := NewRegistry()
	p := r.Begin("properties")
	b := r.Begin("blog")

	assert.True(t, r.Finish(p, errors.New("boom")))
	assert.True(t, r.Status("blog").Loading)
	assert.EqualError(t, r.Status("properties").Err, "boom")
	assert.True(t, r.Finish(b, nil))
	assert.Equal(t, Status{}, r.Status("inquiries"))
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	tokens := make(chan Token, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens <- r.Begin("properties")
		}()
	}
	wg.Wait()
	close(tokens)

	won := 0
	for tok := range tokens {
		if r.Finish(tok, nil) {
			won++
		}
	}
	assert.Equal(t, 1, won)
	assert.False(t, r.Status("properties").Loading)
}
