package sqlrepo

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

var inquiriesTable = table{
	name: "inquiries",
	columns: []any{
		"id", "name", "email", "phone", "message", "property_id", "user_id", "status", "created_at", "updated_at",
	},
}

// InquiryRepository implements repository.InquiryRepository.
type InquiryRepository struct {
	*base
}

var _ repository.InquiryRepository = (*InquiryRepository)(nil)

func inquiryRecord(i *models.Inquiry) goqu.Record {
	return goqu.Record{
		"name":        i.Name,
		"email":       i.Email,
		"phone":       i.Phone,
		"message":     i.Message,
		"property_id": i.PropertyID,
		"user_id":     i.UserID,
		"status":      string(i.Status),
		"updated_at":  i.UpdatedAt,
	}
}

func (r *InquiryRepository) List(ctx context.Context, q query.Query) ([]models.Inquiry, int64, error) {
	return listPage[models.Inquiry](ctx, r.base, inquiriesTable, q)
}

func (r *InquiryRepository) GetByID(ctx context.Context, id int64) (*models.Inquiry, error) {
	return getOne[models.Inquiry](ctx, r.base, inquiriesTable, goqu.C("id").Eq(id))
}

func (r *InquiryRepository) Create(ctx context.Context, i *models.Inquiry) error {
	rec := inquiryRecord(i)
	rec["created_at"] = i.CreatedAt
	id, err := r.insert(ctx, r.db, inquiriesTable.name, rec)
	if err != nil {
		return fmt.Errorf("inserting inquiry: %w", err)
	}
	i.ID = id
	return nil
}

func (r *InquiryRepository) Update(ctx context.Context, i *models.Inquiry) error {
	if err := r.updateByID(ctx, r.db, inquiriesTable.name, i.ID, inquiryRecord(i)); err != nil {
		return fmt.Errorf("updating inquiry %d: %w", i.ID, err)
	}
	return nil
}

func (r *InquiryRepository) Delete(ctx context.Context, id int64) error {
	if err := r.deleteByID(ctx, inquiriesTable.name, id); err != nil {
		return fmt.Errorf("deleting inquiry %d: %w", id, err)
	}
	return nil
}
