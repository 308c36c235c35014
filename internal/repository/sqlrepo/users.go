package sqlrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

var usersTable = table{
	name: "users",
	columns: []any{
		"id", "name", "email", "password_hash", "role", "status", "phone", "created_at", "updated_at",
	},
}

// UserRepository implements repository.UserRepository.
type UserRepository struct {
	*base
}

var _ repository.UserRepository = (*UserRepository)(nil)

func userRecord(u *models.User) goqu.Record {
	return goqu.Record{
		"name":          u.Name,
		"email":         strings.ToLower(u.Email),
		"password_hash": u.PasswordHash,
		"role":          string(u.Role),
		"status":        string(u.Status),
		"phone":         u.Phone,
		"updated_at":    u.UpdatedAt,
	}
}

func (r *UserRepository) List(ctx context.Context, q query.Query) ([]models.User, int64, error) {
	return listPage[models.User](ctx, r.base, usersTable, q)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return getOne[models.User](ctx, r.base, usersTable, goqu.C("id").Eq(id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return getOne[models.User](ctx, r.base, usersTable, goqu.C("email").Eq(strings.ToLower(email)))
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	rec := userRecord(u)
	rec["created_at"] = u.CreatedAt
	id, err := r.insert(ctx, r.db, usersTable.name, rec)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	if err := r.updateByID(ctx, r.db, usersTable.name, u.ID, userRecord(u)); err != nil {
		return fmt.Errorf("updating user %d: %w", u.ID, err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.deleteByID(ctx, usersTable.name, id); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}

func (r *UserRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	sqlStr, args, err := r.dialect.From(usersTable.name).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.Ex{"role": string(models.RoleAdmin), "status": string(models.UserStatusActive)}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building admin count: %w", err)
	}
	var n int64
	if err := r.db.GetContext(ctx, &n, sqlStr, args...); err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}
