package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salemre/backend/internal/auth"
	"salemre/backend/internal/config"
	"salemre/backend/internal/models"
	"salemre/backend/internal/repository"
	"salemre/backend/internal/storage"
	"salemre/backend/internal/utils"
)

type mockListCache struct {
	mock.Mock
}

func (m *mockListCache) Get(ctx context.Context, entity, canonical string, dest any) (bool, int64, error) {
	args := m.Called(ctx, entity, canonical, dest)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockListCache) Set(ctx context.Context, entity, canonical string, version int64, value any) error {
	args := m.Called(ctx, entity, canonical, version, value)
	return args.Error(0)
}

func (m *mockListCache) Invalidate(ctx context.Context, entity string) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

type mockTaskEnqueuer struct {
	mock.Mock
}

func (m *mockTaskEnqueuer) EnqueueInquiryNotification(ctx context.Context, inquiryID int64) error {
	args := m.Called(ctx, inquiryID)
	return args.Error(0)
}

func (m *mockTaskEnqueuer) EnqueueThumbnail(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return nil
}

// memFileStore is an in-memory storage.FileStore.
type memFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}, types: map[string]string{}}
}

func (s *memFileStore) Put(_ context.Context, name, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
	s.types[name] = contentType
	return s.URL(name), nil
}

func (s *memFileStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	if !ok {
		return nil, "", storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), s.types[name], nil
}

func (s *memFileStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

func (s *memFileStore) URL(name string) string {
	return "https://cdn.example.com/uploads/" + name
}

func (s *memFileStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func testConfig() *config.Config {
	return &config.Config{
		ListMaxLimit:   100,
		JwtSecret:      "test-secret",
		JwtTTL:         time.Hour,
		UploadMaxBytes: 1 << 20,
	}
}

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	return utils.SetupTestStore(t)
}

// seedUser inserts an active user with the given role and returns an Actor for it.
func seedUser(t *testing.T, store repository.Store, email string, role models.UserRole) *Actor {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	ts := time.Now().UTC().Truncate(time.Microsecond)
	u := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserStatusActive,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return &Actor{UserID: u.ID, Role: role}
}

func ptr[T any](v T) *T {
	return &v
}
