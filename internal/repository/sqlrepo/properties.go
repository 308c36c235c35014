package sqlrepo

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

var propertiesTable = table{
	name: "properties",
	columns: []any{
		"id", "title", "slug", "description", "type", "status", "location", "price", "size",
		"bedrooms", "bathrooms", "featured", "images", "views", "owner_id", "created_at", "updated_at",
	},
}

// PropertyRepository implements repository.PropertyRepository.
type PropertyRepository struct {
	*base
}

var _ repository.PropertyRepository = (*PropertyRepository)(nil)

func propertyRecord(p *models.Property) goqu.Record {
	images := p.Images
	if images == nil {
		images = models.StringList{}
	}
	return goqu.Record{
		"title":       p.Title,
		"slug":        p.Slug,
		"description": p.Description,
		"type":        string(p.Type),
		"status":      string(p.Status),
		"location":    p.Location,
		"price":       p.Price,
		"size":        p.Size,
		"bedrooms":    p.Bedrooms,
		"bathrooms":   p.Bathrooms,
		"featured":    p.Featured,
		"images":      images,
		"owner_id":    p.OwnerID,
		"updated_at":  p.UpdatedAt,
	}
}

func (r *PropertyRepository) List(ctx context.Context, q query.Query) ([]models.Property, int64, error) {
	return listPage[models.Property](ctx, r.base, propertiesTable, q)
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	return getOne[models.Property](ctx, r.base, propertiesTable, goqu.C("id").Eq(id))
}

func (r *PropertyRepository) GetBySlug(ctx context.Context, slug string) (*models.Property, error) {
	return getOne[models.Property](ctx, r.base, propertiesTable, goqu.C("slug").Eq(slug))
}

func (r *PropertyRepository) IncrementViews(ctx context.Context, id int64) (*models.Property, error) {
	if err := r.incrementViews(ctx, propertiesTable.name, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	rec := propertyRecord(p)
	rec["views"] = p.Views
	rec["created_at"] = p.CreatedAt
	id, err := r.insert(ctx, r.db, propertiesTable.name, rec)
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	p.ID = id
	return nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *models.Property) error {
	if err := r.updateByID(ctx, r.db, propertiesTable.name, p.ID, propertyRecord(p)); err != nil {
		return fmt.Errorf("updating property %d: %w", p.ID, err)
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id int64) error {
	if err := r.deleteByID(ctx, propertiesTable.name, id); err != nil {
		return fmt.Errorf("deleting property %d: %w", id, err)
	}
	return nil
}
