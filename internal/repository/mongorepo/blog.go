package mongorepo

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// BlogRepository implements repository.BlogRepository. Tags live on the
// post document as an array.
type BlogRepository struct {
	s    *Store
	coll *mongo.Collection
}

var _ repository.BlogRepository = (*BlogRepository)(nil)

func blogSet(p *models.BlogPost) bson.M {
	tags := p.Tags
	if tags == nil {
		tags = models.StringList{}
	}
	return bson.M{
		"title":        p.Title,
		"slug":         p.Slug,
		"excerpt":      p.Excerpt,
		"content":      p.Content,
		"category":     p.Category,
		"tags":         tags,
		"cover_image":  p.CoverImage,
		"status":       p.Status,
		"featured":     p.Featured,
		"author_id":    p.AuthorID,
		"published_at": p.PublishedAt,
		"updated_at":   p.UpdatedAt,
	}
}

func (r *BlogRepository) List(ctx context.Context, q query.Query) ([]models.BlogPost, int64, error) {
	return listPage[models.BlogPost](ctx, r.coll, q)
}

func (r *BlogRepository) GetByID(ctx context.Context, id int64) (*models.BlogPost, error) {
	return findOne[models.BlogPost](ctx, r.coll, bson.M{"_id": id})
}

func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return findOne[models.BlogPost](ctx, r.coll, bson.M{"slug": slug})
}

func (r *BlogRepository) IncrementViews(ctx context.Context, id int64) (*models.BlogPost, error) {
	return incViews[models.BlogPost](ctx, r.coll, id)
}

func (r *BlogRepository) Create(ctx context.Context, p *models.BlogPost) error {
	id, err := r.s.nextID(ctx, blogCollection)
	if err != nil {
		return err
	}
	if p.Tags == nil {
		p.Tags = models.StringList{}
	}
	p.ID = id
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		p.ID = 0
		return fmt.Errorf("inserting blog post: %w", mapErr(err))
	}
	return nil
}

func (r *BlogRepository) Update(ctx context.Context, p *models.BlogPost) error {
	if err := setByID(ctx, r.coll, p.ID, blogSet(p)); err != nil {
		return fmt.Errorf("updating blog post %d: %w", p.ID, err)
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, r.coll, id); err != nil {
		return fmt.Errorf("deleting blog post %d: %w", id, err)
	}
	return nil
}

func (r *BlogRepository) PublishedTags(ctx context.Context) ([]string, error) {
	raw, err := r.coll.Distinct(ctx, "tags", bson.M{"status": models.BlogStatusPublished})
	if err != nil {
		return nil, fmt.Errorf("listing published tags: %w", err)
	}
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			tags = append(tags, s)
		}
	}
	sort.Strings(tags)
	return tags, nil
}
