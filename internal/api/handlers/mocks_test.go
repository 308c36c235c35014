package handlers_test

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/stretchr/testify/mock"

	"salemre/backend/internal/models"
	"salemre/backend/internal/query"
	"salemre/backend/internal/services"
)

// --- Mocks ---

// MockPropertyService
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) List(ctx context.Context, raw url.Values, actor *services.Actor) (*query.Result[models.Property], error) {
	args := m.Called(ctx, raw, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result[models.Property]), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, ref string, actor *services.Actor) (*models.Property, error) {
	args := m.Called(ctx, ref, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Create(ctx context.Context, in services.PropertyInput, actor *services.Actor) (*models.Property, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Update(ctx context.Context, id int64, in services.PropertyInput, actor *services.Actor) (*models.Property, error) {
	args := m.Called(ctx, id, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Delete(ctx context.Context, id int64, actor *services.Actor) error {
	return m.Called(ctx, id, actor).Error(0)
}

func (m *MockPropertyService) AddImages(ctx context.Context, id int64, urls []string, actor *services.Actor) (*models.Property, error) {
	args := m.Called(ctx, id, urls, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

// MockBlogService
type MockBlogService struct {
	mock.Mock
}

func (m *MockBlogService) List(ctx context.Context, raw url.Values, actor *services.Actor) (*query.Result[models.BlogPost], error) {
	args := m.Called(ctx, raw, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result[models.BlogPost]), args.Error(1)
}

func (m *MockBlogService) Get(ctx context.Context, ref string, actor *services.Actor) (*models.BlogPost, error) {
	args := m.Called(ctx, ref, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

func (m *MockBlogService) Create(ctx context.Context, in services.BlogInput, actor *services.Actor) (*models.BlogPost, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

func (m *MockBlogService) Update(ctx context.Context, id int64, in services.BlogInput, actor *services.Actor) (*models.BlogPost, error) {
	args := m.Called(ctx, id, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}

func (m *MockBlogService) Delete(ctx context.Context, id int64, actor *services.Actor) error {
	return m.Called(ctx, id, actor).Error(0)
}

func (m *MockBlogService) Categories() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockBlogService) Tags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockInquiryService
type MockInquiryService struct {
	mock.Mock
}

func (m *MockInquiryService) Create(ctx context.Context, in services.InquiryInput, actor *services.Actor) (*models.Inquiry, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) List(ctx context.Context, raw url.Values, actor *services.Actor) (*query.Result[models.Inquiry], error) {
	args := m.Called(ctx, raw, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result[models.Inquiry]), args.Error(1)
}

func (m *MockInquiryService) Get(ctx context.Context, id int64, actor *services.Actor) (*models.Inquiry, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) Update(ctx context.Context, id int64, in services.InquiryUpdate, actor *services.Actor) (*models.Inquiry, error) {
	args := m.Called(ctx, id, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) Delete(ctx context.Context, id int64, actor *services.Actor) error {
	return m.Called(ctx, id, actor).Error(0)
}

func (m *MockInquiryService) Since(ctx context.Context, t time.Time) ([]models.Inquiry, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockUserService) Me(ctx context.Context, actor *services.Actor) (*models.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, actor *services.Actor, in services.ProfileInput) (*models.User, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, raw url.Values, actor *services.Actor) (*query.Result[models.User], error) {
	args := m.Called(ctx, raw, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result[models.User]), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id int64, actor *services.Actor) (*models.User, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, in services.UserInput, actor *services.Actor) (*models.User, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id int64, in services.UserUpdate, actor *services.Actor) (*models.User, error) {
	args := m.Called(ctx, id, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64, actor *services.Actor) error {
	return m.Called(ctx, id, actor).Error(0)
}

func (m *MockUserService) BootstrapAdmin(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

// MockUploadService
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, files []services.UploadFile, actor *services.Actor) ([]services.UploadResult, error) {
	args := m.Called(ctx, files, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.UploadResult), args.Error(1)
}

func (m *MockUploadService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}
