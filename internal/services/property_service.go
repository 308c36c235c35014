package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/config"
	"salemre/backend/internal/db"
	"salemre/backend/internal/events"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// IPropertyService defines the interface for property operations.
type IPropertyService interface {
	List(ctx context.Context, raw url.Values, actor *Actor) (*query.Result[models.Property], error)
	// Get fetches by numeric id or slug and counts the view.
	Get(ctx context.Context, ref string, actor *Actor) (*models.Property, error)
	Create(ctx context.Context, in PropertyInput, actor *Actor) (*models.Property, error)
	Update(ctx context.Context, id int64, in PropertyInput, actor *Actor) (*models.Property, error)
	Delete(ctx context.Context, id int64, actor *Actor) error
	AddImages(ctx context.Context, id int64, urls []string, actor *Actor) (*models.Property, error)
}

// PropertyInput is the body of property create and update requests. Nil
// fields are left unchanged on update.
type PropertyInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Status      *string  `json:"status"`
	Location    *string  `json:"location"`
	Price       *float64 `json:"price"`
	Size        *float64 `json:"size"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	Featured    *bool    `json:"featured"`
	Images      []string `json:"images"`
	// OwnerID is honoured for admins only.
	OwnerID *int64 `json:"ownerId"`
}

func (in *PropertyInput) apply(p *models.Property, admin bool) {
	if in.Title != nil {
		p.Title = trimmed(in.Title)
	}
	if in.Description != nil {
		p.Description = trimmed(in.Description)
	}
	if in.Type != nil {
		p.Type = models.PropertyType(strings.ToLower(trimmed(in.Type)))
	}
	if in.Status != nil {
		p.Status = models.PropertyStatus(strings.ToLower(trimmed(in.Status)))
	}
	if in.Location != nil {
		p.Location = trimmed(in.Location)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Size != nil {
		p.Size = *in.Size
	}
	if in.Bedrooms != nil {
		p.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = in.Bathrooms
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Images != nil {
		p.Images = models.StringList(in.Images)
	}
	if admin && in.OwnerID != nil {
		p.OwnerID = *in.OwnerID
	}
}

// StatusChange is the payload of property.status_changed events.
type StatusChange struct {
	PropertyID int64  `json:"propertyId"`
	Slug       string `json:"slug"`
	From       string `json:"from"`
	To         string `json:"to"`
}

type propertyService struct {
	repo      repository.PropertyRepository
	lister    *lister[models.Property]
	publisher events.Publisher
	log       zerolog.Logger
}

// NewPropertyService creates a new PropertyService. cache may be nil.
func NewPropertyService(store repository.Store, cfg *config.Config, cache ListCache, publisher events.Publisher) IPropertyService {
	logger := logging.Component("properties")
	repo := store.Properties()
	return &propertyService{
		repo: repo,
		lister: &lister[models.Property]{
			schema: query.PropertySchema.WithMaxLimit(cfg.ListMaxLimit),
			cache:  cache,
			fetch:  repo.List,
			log:    logger,
		},
		publisher: publisher,
		log:       logger,
	}
}

func (s *propertyService) List(ctx context.Context, raw url.Values, actor *Actor) (*query.Result[models.Property], error) {
	return s.lister.list(ctx, raw, actor.Audience())
}

func (s *propertyService) find(ctx context.Context, ref string) (*models.Property, error) {
	id, slug, isID := parseRef(ref)
	var (
		p   *models.Property
		err error
	)
	switch {
	case isID:
		p, err = s.repo.GetByID(ctx, id)
	case slug != "":
		p, err = s.repo.GetBySlug(ctx, slug)
	default:
		return nil, apperrors.NewNotFoundError("property not found")
	}
	if err != nil {
		return nil, storeError("property", "load", err)
	}
	return p, nil
}

func (s *propertyService) Get(ctx context.Context, ref string, actor *Actor) (*models.Property, error) {
	p, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic() && !actor.CanManage(p.OwnerID) {
		return nil, apperrors.NewNotFoundError("property not found")
	}
	viewed, err := s.repo.IncrementViews(ctx, p.ID)
	if err != nil {
		return nil, storeError("property", "load", err)
	}
	return viewed, nil
}

func (s *propertyService) Create(ctx context.Context, in PropertyInput, actor *Actor) (*models.Property, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ts := now()
	p := &models.Property{
		Status:    models.PropertyStatusActive,
		Images:    models.StringList{},
		OwnerID:   actor.UserID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	in.apply(p, actor.IsAdmin())
	if err := models.Validate(p); err != nil {
		return nil, err
	}

	base := models.Slugify(p.Title, "property")
	err := db.Try(func(attempt int) error {
		p.Slug = slugFor(base, attempt)
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, storeError("property", "create", err)
	}
	s.lister.invalidate(ctx)
	s.log.Info().Int64("id", p.ID).Int64("owner", p.OwnerID).Msg("property created")
	return p, nil
}

func (s *propertyService) loadManaged(ctx context.Context, id int64, actor *Actor) (*models.Property, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("property", "load", err)
	}
	if !actor.CanManage(p.OwnerID) {
		return nil, apperrors.NewForbiddenError("only the owner or an admin may modify this property")
	}
	return p, nil
}

func (s *propertyService) Update(ctx context.Context, id int64, in PropertyInput, actor *Actor) (*models.Property, error) {
	p, err := s.loadManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	oldTitle, oldStatus := p.Title, p.Status
	in.apply(p, actor.IsAdmin())
	p.UpdatedAt = now()
	if err := models.Validate(p); err != nil {
		return nil, err
	}

	retitled := p.Title != oldTitle
	base := models.Slugify(p.Title, "property")
	err = db.Try(func(attempt int) error {
		if retitled {
			p.Slug = slugFor(base, attempt)
		}
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, storeError("property", "update", err)
	}
	s.lister.invalidate(ctx)

	if p.Status != oldStatus {
		s.publish(ctx, StatusChange{PropertyID: p.ID, Slug: p.Slug, From: string(oldStatus), To: string(p.Status)})
	}
	return p, nil
}

func (s *propertyService) publish(ctx context.Context, change StatusChange) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.PropertyStatusChanged, change); err != nil {
		s.log.Error().Err(err).Int64("id", change.PropertyID).Msg("failed to publish status change")
	}
}

func (s *propertyService) Delete(ctx context.Context, id int64, actor *Actor) error {
	if _, err := s.loadManaged(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("property", "delete", err)
	}
	s.lister.invalidate(ctx)
	s.log.Info().Int64("id", id).Int64("by", actor.UserID).Msg("property deleted")
	return nil
}

type imageList struct {
	Images []string `json:"images" validate:"dive,url"`
}

func (s *propertyService) AddImages(ctx context.Context, id int64, urls []string, actor *Actor) (*models.Property, error) {
	if len(urls) == 0 {
		return nil, apperrors.NewValidationError("images is required")
	}
	if err := models.Validate(imageList{Images: urls}); err != nil {
		return nil, err
	}
	p, err := s.loadManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	for _, u := range urls {
		if !p.Images.Contains(u) {
			p.Images = append(p.Images, u)
		}
	}
	p.UpdatedAt = now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, storeError("property", "update", err)
	}
	s.lister.invalidate(ctx)
	return p, nil
}
