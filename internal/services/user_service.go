package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/auth"
	"salemre/backend/internal/config"
	"salemre/backend/internal/logging"
	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/repository"
)

// IUserService defines the interface for account operations.
type IUserService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, actor *Actor) (*models.User, error)
	UpdateProfile(ctx context.Context, actor *Actor, in ProfileInput) (*models.User, error)

	List(ctx context.Context, raw url.Values, actor *Actor) (*query.Result[models.User], error)
	Get(ctx context.Context, id int64, actor *Actor) (*models.User, error)
	Create(ctx context.Context, in UserInput, actor *Actor) (*models.User, error)
	Update(ctx context.Context, id int64, in UserUpdate, actor *Actor) (*models.User, error)
	Delete(ctx context.Context, id int64, actor *Actor) error

	// BootstrapAdmin makes sure an active admin exists, creating or promoting
	// the account with the given email when none does.
	BootstrapAdmin(ctx context.Context, email, password string) error
}

// RegisterInput is the self sign-up form.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserInput is the admin create form.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// ProfileInput is what users may change about themselves.
type ProfileInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// UserUpdate is the admin edit of an account.
type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

type userService struct {
	repo   repository.UserRepository
	lister *lister[models.User]
	cfg    *config.Config
	log    zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store repository.Store, cfg *config.Config) IUserService {
	logger := logging.Component("users")
	repo := store.Users()
	return &userService{
		repo: repo,
		lister: &lister[models.User]{
			schema: query.UserSchema.WithMaxLimit(cfg.ListMaxLimit),
			fetch:  repo.List,
			log:    logger,
		},
		cfg: cfg,
		log: logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(pw string) error {
	if len(pw) < auth.MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}
	if len(pw) > auth.MaxPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at most %d characters", auth.MaxPasswordLength))
	}
	return nil
}

func (s *userService) issue(u *models.User) (*AuthResult, error) {
	token, err := auth.GenerateJWT(u.ID, u.Role, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

// insert hashes the password, validates and stores u.
func (s *userService) insert(ctx context.Context, u *models.User, password string) error {
	if err := models.Validate(u); err != nil {
		return err
	}
	if err := checkPassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}
	u.PasswordHash = hash
	if err := s.repo.Create(ctx, u); err != nil {
		if repository.IsDuplicate(err) {
			return apperrors.NewConflictError("email is already registered")
		}
		return storeError("user", "create", err)
	}
	return nil
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	ts := now()
	u := &models.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      models.RoleUser,
		Status:    models.UserStatusActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.insert(ctx, u, in.Password); err != nil {
		return nil, err
	}
	s.log.Info().Int64("id", u.ID).Msg("user registered")
	return s.issue(u)
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := apperrors.NewUnauthorizedError("invalid email or password")
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, storeError("user", "load", err)
	}
	if !auth.CheckPasswordHash(password, u.PasswordHash) {
		return nil, invalid
	}
	if u.Status != models.UserStatusActive {
		return nil, apperrors.NewForbiddenError("account is not active")
	}
	return s.issue(u)
}

func (s *userService) Me(ctx context.Context, actor *Actor) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeError("user", "load", err)
	}
	return u, nil
}

func (s *userService) setPassword(u *models.User, pw *string) error {
	if pw == nil {
		return nil
	}
	if err := checkPassword(*pw); err != nil {
		return err
	}
	hash, err := auth.HashPassword(*pw)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}
	u.PasswordHash = hash
	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor *Actor, in ProfileInput) (*models.User, error) {
	u, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = trimmed(in.Name)
	}
	if in.Phone != nil {
		u.Phone = trimmed(in.Phone)
	}
	if err := models.Validate(u); err != nil {
		return nil, err
	}
	if err := s.setPassword(u, in.Password); err != nil {
		return nil, err
	}
	u.UpdatedAt = now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, storeError("user", "update", err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, raw url.Values, actor *Actor) (*query.Result[models.User], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.lister.list(ctx, raw, query.Privileged)
}

// Get is allowed for admins and for the user themself.
func (s *userService) Get(ctx context.Context, id int64, actor *Actor) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.CanManage(id) {
		return nil, apperrors.NewForbiddenError("admin access required")
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("user", "load", err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, in UserInput, actor *Actor) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	ts := now()
	u := &models.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      models.UserRole(strings.ToLower(strings.TrimSpace(in.Role))),
		Status:    models.UserStatus(strings.ToLower(strings.TrimSpace(in.Status))),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	if err := s.insert(ctx, u, in.Password); err != nil {
		return nil, err
	}
	s.log.Info().Int64("id", u.ID).Str("role", string(u.Role)).Int64("by", actor.UserID).Msg("user created")
	return u, nil
}

// keepsAdmin fails when changing before into after would leave no active admin.
// after is nil for deletions.
func (s *userService) keepsAdmin(ctx context.Context, before, after *models.User) error {
	if !before.IsActiveAdmin() || (after != nil && after.IsActiveAdmin()) {
		return nil
	}
	n, err := s.repo.CountActiveAdmins(ctx)
	if err != nil {
		return storeError("user", "count", err)
	}
	if n <= 1 {
		return apperrors.NewConflictError("at least one active admin must remain")
	}
	return nil
}

func (s *userService) Update(ctx context.Context, id int64, in UserUpdate, actor *Actor) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("user", "load", err)
	}
	u := *before
	if in.Name != nil {
		u.Name = trimmed(in.Name)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Phone != nil {
		u.Phone = trimmed(in.Phone)
	}
	if in.Role != nil {
		u.Role = models.UserRole(strings.ToLower(trimmed(in.Role)))
	}
	if in.Status != nil {
		u.Status = models.UserStatus(strings.ToLower(trimmed(in.Status)))
	}
	if err := models.Validate(&u); err != nil {
		return nil, err
	}
	if err := s.setPassword(&u, in.Password); err != nil {
		return nil, err
	}
	if err := s.keepsAdmin(ctx, before, &u); err != nil {
		return nil, err
	}
	u.UpdatedAt = now()
	if err := s.repo.Update(ctx, &u); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.NewConflictError("email is already registered")
		}
		return nil, storeError("user", "update", err)
	}
	return &u, nil
}

func (s *userService) Delete(ctx context.Context, id int64, actor *Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return storeError("user", "load", err)
	}
	if err := s.keepsAdmin(ctx, u, nil); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return apperrors.NewConflictError("user still owns properties or blog posts")
		}
		return storeError("user", "delete", err)
	}
	s.log.Info().Int64("id", id).Int64("by", actor.UserID).Msg("user deleted")
	return nil
}

func (s *userService) BootstrapAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	n, err := s.repo.CountActiveAdmins(ctx)
	if err != nil {
		return storeError("user", "count", err)
	}
	if n > 0 {
		return nil
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = models.RoleAdmin
		existing.Status = models.UserStatusActive
		existing.UpdatedAt = now()
		if err := s.repo.Update(ctx, existing); err != nil {
			return storeError("user", "update", err)
		}
		s.log.Info().Int64("id", existing.ID).Msg("promoted bootstrap admin")
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return storeError("user", "load", err)
	}

	ts := now()
	u := &models.User{
		Name:      "Administrator",
		Email:     email,
		Role:      models.RoleAdmin,
		Status:    models.UserStatusActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.insert(ctx, u, password); err != nil {
		return err
	}
	s.log.Info().Int64("id", u.ID).Msg("created bootstrap admin")
	return nil
}
