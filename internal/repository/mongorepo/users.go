package mongorepo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// UserRepository implements repository.UserRepository.
type UserRepository struct {
	s    *Store
	coll *mongo.Collection
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) List(ctx context.Context, q query.Query) ([]models.User, int64, error) {
	return listPage[models.User](ctx, r.coll, q)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	id, err := r.s.nextID(ctx, usersCollection)
	if err != nil {
		return err
	}
	u.ID = id
	u.Email = strings.ToLower(u.Email)
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		u.ID = 0
		return fmt.Errorf("inserting user: %w", mapErr(err))
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	set := bson.M{
		"name":          u.Name,
		"email":         strings.ToLower(u.Email),
		"password_hash": u.PasswordHash,
		"role":          u.Role,
		"status":        u.Status,
		"phone":         u.Phone,
		"updated_at":    u.UpdatedAt,
	}
	if err := setByID(ctx, r.coll, u.ID, set); err != nil {
		return fmt.Errorf("updating user %d: %w", u.ID, err)
	}
	return nil
}

// Delete refuses to remove users who still own properties or posts, and
// detaches their inquiries otherwise.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	refs := map[string]string{propertiesCollection: "owner_id", blogCollection: "author_id"}
	for coll, key := range refs {
		n, err := r.s.db.Collection(coll).CountDocuments(ctx, bson.M{key: id})
		if err != nil {
			return fmt.Errorf("checking references to user %d: %w", id, err)
		}
		if n > 0 {
			return fmt.Errorf("deleting user %d: %w: %s", id, repository.ErrReferenced, coll)
		}
	}
	if err := deleteByID(ctx, r.coll, id); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	_, err := r.s.db.Collection(inquiriesCollection).UpdateMany(ctx,
		bson.M{"user_id": id}, bson.M{"$unset": bson.M{"user_id": ""}})
	if err != nil {
		return fmt.Errorf("detaching inquiries of user %d: %w", id, err)
	}
	return nil
}

func (r *UserRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": models.RoleAdmin, "status": models.UserStatusActive})
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}
