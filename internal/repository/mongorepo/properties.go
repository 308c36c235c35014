package mongorepo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// PropertyRepository implements repository.PropertyRepository.
type PropertyRepository struct {
	s    *Store
	coll *mongo.Collection
}

var _ repository.PropertyRepository = (*PropertyRepository)(nil)

func propertySet(p *models.Property) bson.M {
	images := p.Images
	if images == nil {
		images = models.StringList{}
	}
	return bson.M{
		"title":       p.Title,
		"slug":        p.Slug,
		"description": p.Description,
		"type":        p.Type,
		"status":      p.Status,
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
	return listPage[models.Property](ctx, r.coll, q)
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	return findOne[models.Property](ctx, r.coll, bson.M{"_id": id})
}

func (r *PropertyRepository) GetBySlug(ctx context.Context, slug string) (*models.Property, error) {
	return findOne[models.Property](ctx, r.coll, bson.M{"slug": slug})
}

func (r *PropertyRepository) IncrementViews(ctx context.Context, id int64) (*models.Property, error) {
	return incViews[models.Property](ctx, r.coll, id)
}

func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	id, err := r.s.nextID(ctx, propertiesCollection)
	if err != nil {
		return err
	}
	if p.Images == nil {
		p.Images = models.StringList{}
	}
	p.ID = id
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		p.ID = 0
		return fmt.Errorf("inserting property: %w", mapErr(err))
	}
	return nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *models.Property) error {
	if err := setByID(ctx, r.coll, p.ID, propertySet(p)); err != nil {
		return fmt.Errorf("updating property %d: %w", p.ID, err)
	}
	return nil
}

// Delete removes the property and detaches inquiries that referenced it.
func (r *PropertyRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, r.coll, id); err != nil {
		return fmt.Errorf("deleting property %d: %w", id, err)
	}
	_, err := r.s.db.Collection(inquiriesCollection).UpdateMany(ctx,
		bson.M{"property_id": id}, bson.M{"$unset": bson.M{"property_id": ""}})
	if err != nil {
		return fmt.Errorf("detaching inquiries of property %d: %w", id, err)
	}
	return nil
}
