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

// InquiryRepository implements repository.InquiryRepository.
type InquiryRepository struct {
	s    *Store
	coll *mongo.Collection
}

var _ repository.InquiryRepository = (*InquiryRepository)(nil)

func (r *InquiryRepository) List(ctx context.Context, q query.Query) ([]models.Inquiry, int64, error) {
	return listPage[models.Inquiry](ctx, r.coll, q)
}

func (r *InquiryRepository) GetByID(ctx context.Context, id int64) (*models.Inquiry, error) {
	return findOne[models.Inquiry](ctx, r.coll, bson.M{"_id": id})
}

func (r *InquiryRepository) Create(ctx context.Context, i *models.Inquiry) error {
	id, err := r.s.nextID(ctx, inquiriesCollection)
	if err != nil {
		return err
	}
	i.ID = id
	if _, err := r.coll.InsertOne(ctx, i); err != nil {
		i.ID = 0
		return fmt.Errorf("inserting inquiry: %w", mapErr(err))
	}
	return nil
}

func (r *InquiryRepository) Update(ctx context.Context, i *models.Inquiry) error {
	set := bson.M{
		"name":        i.Name,
		"email":       i.Email,
		"phone":       i.Phone,
		"message":     i.Message,
		"property_id": i.PropertyID,
		"user_id":     i.UserID,
		"status":      i.Status,
		"updated_at":  i.UpdatedAt,
	}
	if err := setByID(ctx, r.coll, i.ID, set); err != nil {
		return fmt.Errorf("updating inquiry %d: %w", i.ID, err)
	}
	return nil
}

func (r *InquiryRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, r.coll, id); err != nil {
		return fmt.Errorf("deleting inquiry %d: %w", id, err)
	}
	return nil
}
