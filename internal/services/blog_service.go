package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/config"
	"salemre/backend/internal/db"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// IBlogService defines the interface for blog operations.
type IBlogService interface {
	List(ctx context.Context, raw url.Values, actor *Actor) (*query.Result[models.BlogPost], error)
	Get(ctx context.Context, ref string, actor *Actor) (*models.BlogPost, error)
	Create(ctx context.Context, in BlogInput, actor *Actor) (*models.BlogPost, error)
	Update(ctx context.Context, id int64, in BlogInput, actor *Actor) (*models.BlogPost, error)
	Delete(ctx context.Context, id int64, actor *Actor) error
	Categories() []string
	Tags(ctx context.Context) ([]string, error)
}

// BlogInput is the body of blog create and update requests.
type BlogInput struct {
	Title      *string  `json:"title"`
	Excerpt    *string  `json:"excerpt"`
	Content    *string  `json:"content"`
	Category   *string  `json:"category"`
	Tags       []string `json:"tags"`
	CoverImage *string  `json:"coverImage"`
	Status     *string  `json:"status"`
	Featured   *bool    `json:"featured"`
}

func (in *BlogInput) apply(p *models.BlogPost) {
	if in.Title != nil {
		p.Title = trimmed(in.Title)
	}
	if in.Excerpt != nil {
		p.Excerpt = trimmed(in.Excerpt)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Category != nil {
		p.Category = canonicalCategory(trimmed(in.Category))
	}
	if in.Tags != nil {
		p.Tags = models.NormalizeTags(in.Tags)
	}
	if in.CoverImage != nil {
		p.CoverImage = trimmed(in.CoverImage)
	}
	if in.Status != nil {
		p.Status = models.BlogStatus(strings.ToLower(trimmed(in.Status)))
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
}

// canonicalCategory matches c against the editorial list ignoring case.
func canonicalCategory(c string) string {
	for _, known := range models.BlogCategories {
		if strings.EqualFold(known, c) {
			return known
		}
	}
	return c
}

type blogService struct {
	repo   repository.BlogRepository
	lister *lister[models.BlogPost]
	log    zerolog.Logger
}

// NewBlogService creates a new BlogService. cache may be nil.
func NewBlogService(store repository.Store, cfg *config.Config, cache ListCache) IBlogService {
	logger := logging.Component("blog")
	repo := store.Blog()
	return &blogService{
		repo: repo,
		lister: &lister[models.BlogPost]{
			schema: query.BlogSchema.WithMaxLimit(cfg.ListMaxLimit),
			cache:  cache,
			fetch:  repo.List,
			log:    logger,
		},
		log: logger,
	}
}

func (s *blogService) List(ctx context.Context, raw url.Values, actor *Actor) (*query.Result[models.BlogPost], error) {
	return s.lister.list(ctx, raw, actor.Audience())
}

func (s *blogService) Get(ctx context.Context, ref string, actor *Actor) (*models.BlogPost, error) {
	id, slug, isID := parseRef(ref)
	var (
		p   *models.BlogPost
		err error
	)
	switch {
	case isID:
		p, err = s.repo.GetByID(ctx, id)
	case slug != "":
		p, err = s.repo.GetBySlug(ctx, slug)
	default:
		return nil, apperrors.NewNotFoundError("blog post not found")
	}
	if err != nil {
		return nil, storeError("blog post", "load", err)
	}
	if !p.IsPublic() && !actor.CanManage(p.AuthorID) {
		return nil, apperrors.NewNotFoundError("blog post not found")
	}
	viewed, err := s.repo.IncrementViews(ctx, p.ID)
	if err != nil {
		return nil, storeError("blog post", "load", err)
	}
	return viewed, nil
}

// Create is open to admins and agents; the caller becomes the author.
func (s *blogService) Create(ctx context.Context, in BlogInput, actor *Actor) (*models.BlogPost, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.Role != models.RoleAgent {
		return nil, apperrors.NewForbiddenError("only authors may write blog posts")
	}
	ts := now()
	p := &models.BlogPost{
		Status:    models.BlogStatusDraft,
		Tags:      models.StringList{},
		AuthorID:  actor.UserID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	in.apply(p)
	markPublished(p, ts)
	if err := models.Validate(p); err != nil {
		return nil, err
	}

	base := models.Slugify(p.Title, "post")
	err := db.Try(func(attempt int) error {
		p.Slug = slugFor(base, attempt)
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, storeError("blog post", "create", err)
	}
	s.lister.invalidate(ctx)
	s.log.Info().Int64("id", p.ID).Str("slug", p.Slug).Msg("blog post created")
	return p, nil
}

// markPublished stamps the first publication.
func markPublished(p *models.BlogPost, ts time.Time) {
	if p.Status == models.BlogStatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &ts
	}
}

func (s *blogService) loadManaged(ctx context.Context, id int64, actor *Actor) (*models.BlogPost, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("blog post", "load", err)
	}
	if !actor.CanManage(p.AuthorID) {
		return nil, apperrors.NewForbiddenError("only the author or an admin may modify this post")
	}
	return p, nil
}

func (s *blogService) Update(ctx context.Context, id int64, in BlogInput, actor *Actor) (*models.BlogPost, error) {
	p, err := s.loadManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	oldTitle := p.Title
	in.apply(p)
	ts := now()
	p.UpdatedAt = ts
	markPublished(p, ts)
	if err := models.Validate(p); err != nil {
		return nil, err
	}

	retitled := p.Title != oldTitle
	base := models.Slugify(p.Title, "post")
	err = db.Try(func(attempt int) error {
		if retitled {
			p.Slug = slugFor(base, attempt)
		}
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, storeError("blog post", "update", err)
	}
	s.lister.invalidate(ctx)
	return p, nil
}

func (s *blogService) Delete(ctx context.Context, id int64, actor *Actor) error {
	if _, err := s.loadManaged(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("blog post", "delete", err)
	}
	s.lister.invalidate(ctx)
	return nil
}

func (s *blogService) Categories() []string {
	out := make([]string, len(models.BlogCategories))
	copy(out, models.BlogCategories)
	return out
}

func (s *blogService) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.repo.PublishedTags(ctx)
	if err != nil {
		return nil, storeError("blog tags", "load", err)
	}
	return emptyIfNil(tags), nil
}
