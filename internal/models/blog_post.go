package models

import "time"

// BlogStatus is the editorial state of a blog post.
type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
)

// BlogStatuses lists every accepted blog post status.
var BlogStatuses = []string{string(BlogStatusDraft), string(BlogStatusPublished)}

// BlogCategories is the fixed editorial category list.
var BlogCategories = []string{
	"Buying Guide",
	"Selling Tips",
	"Market Trends",
	"Investment",
	"Home Improvement",
	"Legal",
	"Lifestyle",
	"News",
}

// BlogPost represents an article on the public blog.
type BlogPost struct {
	ID          int64      `bson:"_id" json:"id" db:"id"`
	Title       string     `bson:"title" json:"title" db:"title" validate:"required,max=200"`
	Slug        string     `bson:"slug" json:"slug" db:"slug"`
	Excerpt     string     `bson:"excerpt" json:"excerpt" db:"excerpt" validate:"max=500"`
	Content     string     `bson:"content" json:"content" db:"content" validate:"required"`
	Category    string     `bson:"category" json:"category" db:"category" validate:"required,category"`
	Tags        StringList `bson:"tags" json:"tags" db:"-"`
	CoverImage  string     `bson:"cover_image" json:"coverImage" db:"cover_image" validate:"omitempty,url"`
	Status      BlogStatus `bson:"status" json:"status" db:"status" validate:"required,oneof=draft published"`
	Featured    bool       `bson:"featured" json:"featured" db:"featured"`
	Views       int64      `bson:"views" json:"views" db:"views"`
	AuthorID    int64      `bson:"author_id" json:"authorId" db:"author_id"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"publishedAt,omitempty" db:"published_at"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt" db:"updated_at"`
}

// IsPublic reports whether anonymous visitors may read the post.
func (p *BlogPost) IsPublic() bool {
	return p.Status == BlogStatusPublished
}
