package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salemre/backend/internal/apperrors"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title, want string
	}{
		{"Sea View Villa in Salem", "sea-view-villa-in-salem"},
		{"  3BHK -- Apartment!! ", "3bhk-apartment"},
		{"Café Près du Lac", "café-près-du-lac"},
		{"2024", "post-2024"},
		{"!!!", "post"},
		{"", "post"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.title, "post"), tc.title)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "word "
	}
	slug := Slugify(long, "post")
	assert.LessOrEqual(t, len(slug), maxSlugLength)
	assert.NotEqual(t, '-', rune(slug[len(slug)-1]))
}

func TestSlugCandidate(t *testing.T) {
	assert.Equal(t, "villa", SlugCandidate("villa", 0))
	assert.Equal(t, "villa-2", SlugCandidate("villa", 1))
	assert.Equal(t, "villa-3", SlugCandidate("villa", 2))
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Investment", "investment", "", "Legal ", "LEGAL"})
	assert.Equal(t, StringList{"investment", "legal"}, got)
}

func TestStringListValueAndScan(t *testing.T) {
	v, err := StringList{"a.jpg", "b.jpg"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a.jpg","b.jpg"]`, v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["x"]`)))
	assert.Equal(t, StringList{"x"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(42))
}

func TestValidateProperty(t *testing.T) {
	p := Property{
		Title:    "Villa",
		Type:     PropertyTypeVilla,
		Status:   PropertyStatusActive,
		Location: "Salem",
		Price:    100,
	}
	assert.NoError(t, Validate(&p))

	p.Price = -1
	p.Type = "castle"
	p.Title = ""
	err := Validate(&p)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Details, "title is required")
	assert.Contains(t, appErr.Details, "price must be 0 or greater")
	assert.Contains(t, appErr.Details, "type must be one of: apartment, villa, house, plot, commercial, farmhouse")
}

func TestValidateInquiryEmail(t *testing.T) {
	inq := Inquiry{Name: "Asha", Email: "not-an-email", Message: "Hi", Status: InquiryStatusNew}
	err := Validate(&inq)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"email must be a valid email address"}, appErr.Details)
}

func TestValidateBlogCategory(t *testing.T) {
	post := BlogPost{Title: "T", Content: "C", Category: "Gossip", Status: BlogStatusDraft}
	err := Validate(&post)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Len(t, appErr.Details, 1)
	assert.Contains(t, appErr.Details[0], "category must be one of")

	post.Category = "Legal"
	assert.NoError(t, Validate(&post))
}
