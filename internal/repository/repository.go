// Package repository declares the persistence ports of the listing backend.
// sqlrepo implements them on PostgreSQL or SQLite, mongorepo on MongoDB.
package repository

import (
	"context"
	"errors"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
)

var (
	// ErrNotFound is returned when no record matches an identifier.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (slug, email) is already taken.
	ErrDuplicate = errors.New("duplicate key")
	// ErrReferenced is returned when a delete would orphan dependent records.
	ErrReferenced = errors.New("record is still referenced")
)

// IsDuplicate reports whether err is a unique key violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// PropertyRepository persists properties.
type PropertyRepository interface {
	List(ctx context.Context, q query.Query) ([]models.Property, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Property, error)
	GetBySlug(ctx context.Context, slug string) (*models.Property, error)
	// IncrementViews atomically adds one to the view counter and returns the updated record.
	IncrementViews(ctx context.Context, id int64) (*models.Property, error)
	Create(ctx context.Context, p *models.Property) error
	Update(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id int64) error
}

// BlogRepository persists blog posts and their tags.
type BlogRepository interface {
	List(ctx context.Context, q query.Query) ([]models.BlogPost, int64, error)
	GetByID(ctx context.Context, id int64) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	IncrementViews(ctx context.Context, id int64) (*models.BlogPost, error)
	Create(ctx context.Context, p *models.BlogPost) error
	Update(ctx context.Context, p *models.BlogPost) error
	Delete(ctx context.Context, id int64) error
	// PublishedTags returns the distinct tags of published posts, sorted.
	PublishedTags(ctx context.Context) ([]string, error)
}

// InquiryRepository persists inquiries.
type InquiryRepository interface {
	List(ctx context.Context, q query.Query) ([]models.Inquiry, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Inquiry, error)
	Create(ctx context.Context, i *models.Inquiry) error
	Update(ctx context.Context, i *models.Inquiry) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository persists users.
type UserRepository interface {
	List(ctx context.Context, q query.Query) ([]models.User, int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
	CountActiveAdmins(ctx context.Context) (int64, error)
}

// Store groups the repositories of one backing database.
type Store interface {
	Properties() PropertyRepository
	Blog() BlogRepository
	Inquiries() InquiryRepository
	Users() UserRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
