package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"salemre/backend/internal/clientstate"
	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
)

type sortOption struct {
	label string
	key   string
	desc  bool
}

// listView is one entity tab.
type listView struct {
	name       string
	state      *clientstate.State
	columns    []string
	toRow      rowFunc
	kindParam  string
	kinds      []string
	statuses   []string
	sorts      []sortOption
	sortIdx    int
	page       *listPage
	rowsLoaded bool
}

func cycle(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func withNone(values []string) []string {
	return append([]string{""}, values...)
}

func propertyRow(raw json.RawMessage) ([]string, error) {
	var p models.Property
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	beds := "-"
	if p.Bedrooms != nil {
		beds = strconv.Itoa(*p.Bedrooms)
	}
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Title,
		string(p.Type),
		string(p.Status),
		p.Location,
		strconv.FormatFloat(p.Price, 'f', 0, 64),
		beds,
		strconv.FormatInt(p.Views, 10),
	}, nil
}

func blogRow(raw json.RawMessage) ([]string, error) {
	var p models.BlogPost
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	published := "-"
	if p.PublishedAt != nil {
		published = p.PublishedAt.Format("2006-01-02")
	}
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Title,
		p.Category,
		string(p.Status),
		strings.Join(p.Tags, ","),
		published,
		strconv.FormatInt(p.Views, 10),
	}, nil
}

func newViews(apiBase string) ([]*listView, error) {
	apiBase = strings.TrimRight(apiBase, "/")
	props, err := clientstate.New(query.PropertySchema, apiBase+"/api/properties")
	if err != nil {
		return nil, err
	}
	blog, err := clientstate.New(query.BlogSchema, apiBase+"/api/blog")
	if err != nil {
		return nil, err
	}

	return []*listView{
		{
			name:      "properties",
			state:     props,
			columns:   []string{"ID", "Title", "Type", "Status", "Location", "Price", "Beds", "Views"},
			toRow:     propertyRow,
			kindParam: "type",
			kinds:     withNone(models.PropertyTypes),
			statuses:  withNone(append(append([]string{}, models.PropertyStatuses...), query.AllValue)),
			sorts: []sortOption{
				{"newest", "createdAt", true},
				{"price ↑", "price", false},
				{"price ↓", "price", true},
				{"size ↓", "size", true},
				{"most viewed", "views", true},
				{"title", "title", false},
			},
		},
		{
			name:      "blog",
			state:     blog,
			columns:   []string{"ID", "Title", "Category", "Status", "Tags", "Published", "Views"},
			toRow:     blogRow,
			kindParam: "category",
			kinds:     withNone(models.BlogCategories),
			statuses:  withNone(append(append([]string{}, models.BlogStatuses...), query.AllValue)),
			sorts: []sortOption{
				{"newest", "createdAt", true},
				{"recently published", "publishedAt", true},
				{"most viewed", "views", true},
				{"title", "title", false},
			},
		},
	}, nil
}

func (v *listView) cycleKind() {
	_ = v.state.Set(v.kindParam, cycle(v.kinds, v.state.Get(v.kindParam)))
}

func (v *listView) cycleStatus() {
	_ = v.state.Set("status", cycle(v.statuses, v.state.Get("status")))
}

func (v *listView) cycleSort() {
	v.sortIdx = (v.sortIdx + 1) % len(v.sorts)
	s := v.sorts[v.sortIdx]
	v.state.SetSort(s.key, s.desc)
}

func (v *listView) clear() {
	v.sortIdx = 0
	v.state.Clear()
}

func (v *listView) nextPage() bool {
	if v.page == nil || v.page.CurrentPage >= v.page.TotalPages {
		return false
	}
	v.state.SetPage(v.page.CurrentPage + 1)
	return true
}

func (v *listView) prevPage() bool {
	p := v.state.Params().Page
	if p <= 1 {
		return false
	}
	v.state.SetPage(p - 1)
	return true
}

func (v *listView) summary() string {
	var parts []string
	if s := v.state.Get("search"); s != "" {
		parts = append(parts, fmt.Sprintf("search=%q", s))
	}
	if k := v.state.Get(v.kindParam); k != "" {
		parts = append(parts, v.kindParam+"="+k)
	}
	if s := v.state.Get("status"); s != "" {
		parts = append(parts, "status="+s)
	}
	parts = append(parts, "sort="+v.sorts[v.sortIdx].label)
	return strings.Join(parts, "  ")
}
