// Package services holds the business rules of the listing backend. Handlers
// call services; services call the repository ports and translate storage
// failures into apperrors.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/db"
	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
	"salemre/backend/internal/utils"
)

// Actor is the authenticated caller of an operation. A nil *Actor is an
// anonymous visitor.
type Actor struct {
	UserID int64
	Role   models.UserRole
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// Audience is Privileged for admins and Public for everyone else.
func (a *Actor) Audience() query.Audience {
	if a.IsAdmin() {
		return query.Privileged
	}
	return query.Public
}

// CanManage reports whether the actor may mutate a record owned by ownerID.
func (a *Actor) CanManage(ownerID int64) bool {
	if a == nil {
		return false
	}
	return a.IsAdmin() || a.UserID == ownerID
}

// ListCache caches public list pages per entity. Get returns the cache
// version it read; Set stores under that version.
type ListCache interface {
	Get(ctx context.Context, entity, canonical string, dest any) (bool, int64, error)
	Set(ctx context.Context, entity, canonical string, version int64, value any) error
	Invalidate(ctx context.Context, entity string) error
}

// TaskEnqueuer schedules background work.
type TaskEnqueuer interface {
	EnqueueInquiryNotification(ctx context.Context, inquiryID int64) error
	EnqueueThumbnail(ctx context.Context, name string) error
}

func requireActor(a *Actor) error {
	if a == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	return nil
}

func requireAdmin(a *Actor) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return apperrors.NewForbiddenError("admin access required")
	}
	return nil
}

// now is the write timestamp. Truncated so every store round-trips it unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// parseRef splits a path reference into a numeric id or a slug.
func parseRef(ref string) (int64, string, bool) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, "", true
	}
	return 0, ref, false
}

// slugFor returns the slug candidate of the given attempt. The last attempt
// falls back to a random suffix.
func slugFor(base string, attempt int) string {
	if attempt < db.DefaultMaxRetries {
		return models.SlugCandidate(base, attempt)
	}
	return base + "-" + strings.ToLower(utils.NewSixID().String())
}

// storeError translates repository failures into apperrors. AppErrors pass through.
func storeError(entity, action string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFoundError(entity + " not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflictError(entity + " already exists")
	case errors.Is(err, repository.ErrReferenced):
		return apperrors.NewConflictError(entity + " is still referenced by other records")
	}
	return apperrors.NewInternalError(fmt.Sprintf("failed to %s %s", action, entity), err)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
