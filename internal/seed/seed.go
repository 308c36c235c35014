// Package seed loads demo users, properties and blog posts from a YAML file
// through the regular services, so every record passes the same validation
// as one created over the API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/services"
)

type Fixtures struct {
	Users      []User     `yaml:"users"`
	Properties []Property `yaml:"properties"`
	Posts      []Post     `yaml:"posts"`
}

type User struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Phone    string `yaml:"phone"`
	Role     string `yaml:"role"`
}

type Property struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Type        string   `yaml:"type"`
	Status      string   `yaml:"status"`
	Location    string   `yaml:"location"`
	Price       float64  `yaml:"price"`
	Size        float64  `yaml:"size"`
	Bedrooms    *int     `yaml:"bedrooms"`
	Bathrooms   *int     `yaml:"bathrooms"`
	Featured    bool     `yaml:"featured"`
	Images      []string `yaml:"images"`
	// Owner is the email of a seeded or existing user. Empty means the admin.
	Owner string `yaml:"owner"`
}

type Post struct {
	Title      string   `yaml:"title"`
	Excerpt    string   `yaml:"excerpt"`
	Content    string   `yaml:"content"`
	Category   string   `yaml:"category"`
	Tags       []string `yaml:"tags"`
	CoverImage string   `yaml:"cover_image"`
	Status     string   `yaml:"status"`
	Featured   bool     `yaml:"featured"`
	Author     string   `yaml:"author"`
}

// Load reads a fixtures file. Unknown keys are an error.
func Load(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &fx, nil
}

// Summary counts what a run created and skipped.
type Summary struct {
	UsersCreated, UsersSkipped           int
	PropertiesCreated, PropertiesSkipped int
	PostsCreated, PostsSkipped           int
}

type Seeder struct {
	users      services.IUserService
	properties services.IPropertyService
	blog       services.IBlogService
	log        zerolog.Logger
}

func NewSeeder(users services.IUserService, properties services.IPropertyService, blog services.IBlogService) *Seeder {
	return &Seeder{users: users, properties: properties, blog: blog, log: logging.Component("seed")}
}

// Run inserts the fixtures on behalf of the admin account with adminEmail,
// or the first active admin when adminEmail is empty. Records that already
// exist (same email, or same title) are skipped, so a run can be repeated.
func (s *Seeder) Run(ctx context.Context, fx *Fixtures, adminEmail string) (*Summary, error) {
	admin, err := s.findAdmin(ctx, adminEmail)
	if err != nil {
		return nil, err
	}
	sum := &Summary{}

	owners := map[string]int64{strings.ToLower(admin.Email): admin.ID}
	actor := &services.Actor{UserID: admin.ID, Role: models.RoleAdmin}
	for _, u := range fx.Users {
		id, created, err := s.ensureUser(ctx, u, actor)
		if err != nil {
			return sum, err
		}
		owners[strings.ToLower(u.Email)] = id
		if created {
			sum.UsersCreated++
		} else {
			sum.UsersSkipped++
		}
	}

	for _, p := range fx.Properties {
		owner, err := s.actorFor(ctx, p.Owner, actor, owners)
		if err != nil {
			return sum, fmt.Errorf("property %q: %w", p.Title, err)
		}
		created, err := s.ensureProperty(ctx, p, owner)
		if err != nil {
			return sum, fmt.Errorf("property %q: %w", p.Title, err)
		}
		if created {
			sum.PropertiesCreated++
		} else {
			sum.PropertiesSkipped++
		}
	}

	for _, p := range fx.Posts {
		author, err := s.actorFor(ctx, p.Author, actor, owners)
		if err != nil {
			return sum, fmt.Errorf("post %q: %w", p.Title, err)
		}
		created, err := s.ensurePost(ctx, p, author)
		if err != nil {
			return sum, fmt.Errorf("post %q: %w", p.Title, err)
		}
		if created {
			sum.PostsCreated++
		} else {
			sum.PostsSkipped++
		}
	}

	s.log.Info().
		Int("users", sum.UsersCreated).
		Int("properties", sum.PropertiesCreated).
		Int("posts", sum.PostsCreated).
		Int("skipped", sum.UsersSkipped+sum.PropertiesSkipped+sum.PostsSkipped).
		Msg("seed complete")
	return sum, nil
}

// system can list every account; it is never written anywhere.
var system = &services.Actor{Role: models.RoleAdmin}

func (s *Seeder) findAdmin(ctx context.Context, email string) (*models.User, error) {
	q := url.Values{"role": {string(models.RoleAdmin)}, "status": {string(models.UserStatusActive)}, "sort": {"createdAt,ASC"}}
	if email != "" {
		q.Set("search", email)
	}
	res, err := s.users.List(ctx, q, system)
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	for i := range res.Items {
		if email == "" || strings.EqualFold(res.Items[i].Email, email) {
			return &res.Items[i], nil
		}
	}
	return nil, errors.New("seeding needs an active admin account; set ADMIN_EMAIL and ADMIN_PASSWORD")
}

func (s *Seeder) lookupUser(ctx context.Context, email string) (*models.User, error) {
	res, err := s.users.List(ctx, url.Values{"search": {email}, "status": {query.AllValue}}, system)
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		if strings.EqualFold(res.Items[i].Email, email) {
			return &res.Items[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("user " + email + " not found")
}

func (s *Seeder) ensureUser(ctx context.Context, u User, admin *services.Actor) (int64, bool, error) {
	created, err := s.users.Create(ctx, services.UserInput{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Phone:    u.Phone,
		Role:     u.Role,
	}, admin)
	if err == nil {
		return created.ID, true, nil
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeConflict) {
		return 0, false, fmt.Errorf("user %s: %w", u.Email, err)
	}
	existing, err := s.lookupUser(ctx, u.Email)
	if err != nil {
		return 0, false, fmt.Errorf("user %s: %w", u.Email, err)
	}
	return existing.ID, false, nil
}

// actorFor acts as the named user with admin rights, so seeded records
// keep their owner or author.
func (s *Seeder) actorFor(ctx context.Context, email string, admin *services.Actor, known map[string]int64) (*services.Actor, error) {
	if email == "" {
		return admin, nil
	}
	if id, ok := known[strings.ToLower(email)]; ok {
		return &services.Actor{UserID: id, Role: models.RoleAdmin}, nil
	}
	u, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}
	known[strings.ToLower(email)] = u.ID
	return &services.Actor{UserID: u.ID, Role: models.RoleAdmin}, nil
}

func (s *Seeder) ensureProperty(ctx context.Context, p Property, actor *services.Actor) (bool, error) {
	res, err := s.properties.List(ctx, url.Values{"search": {p.Title}, "status": {query.AllValue}}, system)
	if err != nil {
		return false, err
	}
	for _, existing := range res.Items {
		if strings.EqualFold(existing.Title, p.Title) {
			return false, nil
		}
	}

	in := services.PropertyInput{
		Title:       &p.Title,
		Description: &p.Description,
		Type:        &p.Type,
		Location:    &p.Location,
		Price:       &p.Price,
		Size:        &p.Size,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Featured:    &p.Featured,
		Images:      p.Images,
		OwnerID:     &actor.UserID,
	}
	if p.Status != "" {
		in.Status = &p.Status
	}
	if _, err := s.properties.Create(ctx, in, actor); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) ensurePost(ctx context.Context, p Post, actor *services.Actor) (bool, error) {
	res, err := s.blog.List(ctx, url.Values{"search": {p.Title}, "status": {query.AllValue}}, system)
	if err != nil {
		return false, err
	}
	for _, existing := range res.Items {
		if strings.EqualFold(existing.Title, p.Title) {
			return false, nil
		}
	}

	in := services.BlogInput{
		Title:    &p.Title,
		Excerpt:  &p.Excerpt,
		Content:  &p.Content,
		Category: &p.Category,
		Tags:     p.Tags,
		Featured: &p.Featured,
	}
	if p.CoverImage != "" {
		in.CoverImage = &p.CoverImage
	}
	if p.Status != "" {
		in.Status = &p.Status
	}
	if _, err := s.blog.Create(ctx, in, actor); err != nil {
		return false, err
	}
	return true, nil
}
