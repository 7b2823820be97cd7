package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/homefinder/api/internal/filters"
	"github.com/stwalsh4118/homefinder/api/internal/models"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) List(ctx context.Context, f filters.PropertyFilter) ([]models.Property, error) {
	args := m.Called(ctx, f)
	props, _ := args.Get(0).([]models.Property)
	return props, args.Error(1)
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]models.Property, error) {
	args := m.Called(ctx, ids)
	props, _ := args.Get(0).(map[int64]models.Property)
	return props, args.Error(1)
}

func (m *MockPropertyRepository) Create(ctx context.Context, p *models.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) Update(ctx context.Context, p *models.Property) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockPropertyTypeRepository is a mock implementation of PropertyTypeRepository for testing
type MockPropertyTypeRepository struct {
	mock.Mock
}

func (m *MockPropertyTypeRepository) List(ctx context.Context) ([]models.PropertyType, error) {
	args := m.Called(ctx)
	types, _ := args.Get(0).([]models.PropertyType)
	return types, args.Error(1)
}

func (m *MockPropertyTypeRepository) FindByID(ctx context.Context, id int64) (*models.PropertyType, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.PropertyType)
	return t, args.Error(1)
}

func (m *MockPropertyTypeRepository) Create(ctx context.Context, t *models.PropertyType) error {
	return m.Called(ctx, t).Error(0)
}

// MockImageRepository is a mock implementation of ImageRepository for testing
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, img *models.PropertyImage) error {
	return m.Called(ctx, img).Error(0)
}

func (m *MockImageRepository) FindByID(ctx context.Context, id int64) (*models.PropertyImage, error) {
	args := m.Called(ctx, id)
	img, _ := args.Get(0).(*models.PropertyImage)
	return img, args.Error(1)
}

func (m *MockImageRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockFavoriteRepository is a mock implementation of FavoriteRepository for testing
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Create(ctx context.Context, f *models.Favorite) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFavoriteRepository) FindByID(ctx context.Context, id int64) (*models.Favorite, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.Favorite)
	return f, args.Error(1)
}

func (m *MockFavoriteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	args := m.Called(ctx, userID)
	favs, _ := args.Get(0).([]models.Favorite)
	return favs, args.Error(1)
}

func (m *MockFavoriteRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockReviewRepository is a mock implementation of ReviewRepository for testing
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Review)
	return r, args.Error(1)
}

func (m *MockReviewRepository) List(ctx context.Context, propertyID *int64) ([]models.Review, error) {
	args := m.Called(ctx, propertyID)
	reviews, _ := args.Get(0).([]models.Review)
	return reviews, args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// MockImageStore is a mock implementation of storage.ImageStore for testing
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, propertyID int64, filename string, r io.Reader, size int64, contentType string) (string, string, error) {
	args := m.Called(ctx, propertyID, filename, r, size, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// recordingPublisher captures published subjects.
type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

// memoryTokenStore applies token transitions to a map, mirroring the
// single-statement upserts of the database store.
type memoryTokenStore struct {
	mu     sync.Mutex
	states map[string]models.TokenState
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{states: map[string]models.TokenState{}}
}

func (s *memoryTokenStore) Transition(_ context.Context, rec models.TokenRecord, to models.TokenState) (models.TokenState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.states[rec.JTI]
	if !ok {
		current = models.TokenIssued
	}
	if current.CanTransition(to) {
		s.states[rec.JTI] = to
		return to, nil
	}
	return current, nil
}

func (s *memoryTokenStore) State(_ context.Context, jti string) (models.TokenState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[jti]; ok {
		return st, nil
	}
	return models.TokenIssued, nil
}

func (s *memoryTokenStore) count(state models.TokenState) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.states {
		if st == state {
			n++
		}
	}
	return n
}

func ptr[T any](v T) *T { return &v }

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
