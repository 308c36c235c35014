package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/config"
	"salemre/backend/internal/events"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// IInquiryService defines the interface for inquiry operations.
type IInquiryService interface {
	// Create records a visitor inquiry. actor may be nil.
	Create(ctx context.Context, in InquiryInput, actor *Actor) (*models.Inquiry, error)
	List(ctx context.Context, raw url.Values, actor *Actor) (*query.Result[models.Inquiry], error)
	Get(ctx context.Context, id int64, actor *Actor) (*models.Inquiry, error)
	Update(ctx context.Context, id int64, in InquiryUpdate, actor *Actor) (*models.Inquiry, error)
	Delete(ctx context.Context, id int64, actor *Actor) error
	// Since returns every inquiry created at or after t, oldest first.
	Since(ctx context.Context, t time.Time) ([]models.Inquiry, error)
}

// InquiryInput is the public inquiry form.
type InquiryInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	PropertyID *int64 `json:"propertyId"`
}

// InquiryUpdate is the admin edit of an inquiry.
type InquiryUpdate struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Message *string `json:"message"`
	Status  *string `json:"status"`
}

// InquiryCreatedEvent is the payload of inquiry.created events.
type InquiryCreatedEvent struct {
	InquiryID  int64  `json:"inquiryId"`
	PropertyID *int64 `json:"propertyId,omitempty"`
	Email      string `json:"email"`
}

type inquiryService struct {
	repo       repository.InquiryRepository
	properties repository.PropertyRepository
	lister     *lister[models.Inquiry]
	tasks      TaskEnqueuer
	publisher  events.Publisher
	log        zerolog.Logger
}

// NewInquiryService creates a new InquiryService. tasks and publisher may be nil.
func NewInquiryService(store repository.Store, cfg *config.Config, tasks TaskEnqueuer, publisher events.Publisher) IInquiryService {
	logger := logging.Component("inquiries")
	repo := store.Inquiries()
	return &inquiryService{
		repo:       repo,
		properties: store.Properties(),
		lister: &lister[models.Inquiry]{
			schema: query.InquirySchema.WithMaxLimit(cfg.ListMaxLimit),
			fetch:  repo.List,
			log:    logger,
		},
		tasks:     tasks,
		publisher: publisher,
		log:       logger,
	}
}

func (s *inquiryService) Create(ctx context.Context, in InquiryInput, actor *Actor) (*models.Inquiry, error) {
	ts := now()
	i := &models.Inquiry{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:      strings.TrimSpace(in.Phone),
		Message:    strings.TrimSpace(in.Message),
		PropertyID: in.PropertyID,
		Status:     models.InquiryStatusNew,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if actor != nil {
		uid := actor.UserID
		i.UserID = &uid
	}
	if err := models.Validate(i); err != nil {
		return nil, err
	}
	if i.PropertyID != nil {
		if _, err := s.properties.GetByID(ctx, *i.PropertyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewValidationError("propertyId does not reference an existing property")
			}
			return nil, storeError("property", "load", err)
		}
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, storeError("inquiry", "create", err)
	}
	s.log.Info().Int64("id", i.ID).Msg("inquiry received")

	if s.tasks != nil {
		if err := s.tasks.EnqueueInquiryNotification(ctx, i.ID); err != nil {
			s.log.Error().Err(err).Int64("id", i.ID).Msg("failed to enqueue inquiry notification")
		}
	}
	if s.publisher != nil {
		evt := InquiryCreatedEvent{InquiryID: i.ID, PropertyID: i.PropertyID, Email: i.Email}
		if err := s.publisher.Publish(ctx, events.InquiryCreated, evt); err != nil {
			s.log.Error().Err(err).Int64("id", i.ID).Msg("failed to publish inquiry event")
		}
	}
	return i, nil
}

func (s *inquiryService) List(ctx context.Context, raw url.Values, actor *Actor) (*query.Result[models.Inquiry], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.lister.list(ctx, raw, query.Privileged)
}

func (s *inquiryService) Get(ctx context.Context, id int64, actor *Actor) (*models.Inquiry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("inquiry", "load", err)
	}
	return i, nil
}

func (s *inquiryService) Update(ctx context.Context, id int64, in InquiryUpdate, actor *Actor) (*models.Inquiry, error) {
	i, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		i.Name = trimmed(in.Name)
	}
	if in.Email != nil {
		i.Email = strings.ToLower(trimmed(in.Email))
	}
	if in.Phone != nil {
		i.Phone = trimmed(in.Phone)
	}
	if in.Message != nil {
		i.Message = trimmed(in.Message)
	}
	if in.Status != nil {
		i.Status = models.InquiryStatus(strings.ToLower(trimmed(in.Status)))
	}
	i.UpdatedAt = now()
	if err := models.Validate(i); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, i); err != nil {
		return nil, storeError("inquiry", "update", err)
	}
	return i, nil
}

func (s *inquiryService) Delete(ctx context.Context, id int64, actor *Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("inquiry", "delete", err)
	}
	return nil
}

func (s *inquiryService) Since(ctx context.Context, t time.Time) ([]models.Inquiry, error) {
	schema := s.lister.schema
	params := query.NewParams(schema)
	params.Values["from"] = t.UTC()
	params.Limit = query.DefaultMaxLimit
	params.Sort = query.Sort{Key: "createdAt"}

	var out []models.Inquiry
	for {
		res, err := s.lister.run(ctx, params, query.Privileged)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if params.Page >= res.TotalPages() {
			return out, nil
		}
		params.Page++
	}
}
