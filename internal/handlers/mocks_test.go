package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/homefinder/api/internal/errors"
	"github.com/stwalsh4118/homefinder/api/internal/logger"
	"github.com/stwalsh4118/homefinder/api/internal/middleware"
	"github.com/stwalsh4118/homefinder/api/internal/models"
	"github.com/stwalsh4118/homefinder/api/internal/services"
)

// newTestRouter creates a router with the request-scoped middleware. A
// non-zero userID simulates a request authenticated as that user.
func newTestRouter(userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	apierrors.UseJSONFieldNames()
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.NewNop()))
	if userID != 0 {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, userID)
			c.Set(middleware.AccessTokenKey, "access-token")
			c.Next()
		})
	}
	return router
}

func doJSON(router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()
	var response apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

// MockPropertyService is a mock implementation of PropertyService for testing
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) List(ctx context.Context, query url.Values) ([]models.Property, error) {
	args := m.Called(ctx, query)
	props, _ := args.Get(0).([]models.Property)
	return props, args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyService) Create(ctx context.Context, callerID int64, in services.PropertyInput) (*models.Property, error) {
	args := m.Called(ctx, callerID, in)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyService) Update(ctx context.Context, callerID, id int64, in services.PropertyInput) (*models.Property, error) {
	args := m.Called(ctx, callerID, id, in)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

func (m *MockPropertyService) Delete(ctx context.Context, callerID, id int64) error {
	return m.Called(ctx, callerID, id).Error(0)
}

// MockPropertyTypeService is a mock implementation of PropertyTypeService for testing
type MockPropertyTypeService struct {
	mock.Mock
}

func (m *MockPropertyTypeService) List(ctx context.Context) ([]models.PropertyType, error) {
	args := m.Called(ctx)
	types, _ := args.Get(0).([]models.PropertyType)
	return types, args.Error(1)
}

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, callerID int64, in services.ImageUpload) (*models.PropertyImage, error) {
	args := m.Called(ctx, callerID, in)
	img, _ := args.Get(0).(*models.PropertyImage)
	return img, args.Error(1)
}

func (m *MockImageService) Delete(ctx context.Context, callerID, id int64) error {
	return m.Called(ctx, callerID, id).Error(0)
}

// MockFavoriteService is a mock implementation of FavoriteService for testing
type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) List(ctx context.Context, callerID int64) ([]models.Favorite, error) {
	args := m.Called(ctx, callerID)
	favs, _ := args.Get(0).([]models.Favorite)
	return favs, args.Error(1)
}

func (m *MockFavoriteService) Get(ctx context.Context, callerID, id int64) (*models.Favorite, error) {
	args := m.Called(ctx, callerID, id)
	f, _ := args.Get(0).(*models.Favorite)
	return f, args.Error(1)
}

func (m *MockFavoriteService) Create(ctx context.Context, callerID, propertyID int64) (*models.Favorite, error) {
	args := m.Called(ctx, callerID, propertyID)
	f, _ := args.Get(0).(*models.Favorite)
	return f, args.Error(1)
}

func (m *MockFavoriteService) Delete(ctx context.Context, callerID, id int64) error {
	return m.Called(ctx, callerID, id).Error(0)
}

// MockReviewService is a mock implementation of ReviewService for testing
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, propertyID *int64) ([]models.Review, error) {
	args := m.Called(ctx, propertyID)
	reviews, _ := args.Get(0).([]models.Review)
	return reviews, args.Error(1)
}

func (m *MockReviewService) Get(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.Review)
	return r, args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, callerID, propertyID int64, rating int) (*models.Review, error) {
	args := m.Called(ctx, callerID, propertyID, rating)
	r, _ := args.Get(0).(*models.Review)
	return r, args.Error(1)
}

// MockUserService is a mock implementation of UserService for testing
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*services.Session, error) {
	args := m.Called(ctx, username, password)
	s, _ := args.Get(0).(*services.Session)
	return s, args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	args := m.Called(ctx, refresh)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Verify(ctx context.Context, raw string) error {
	return m.Called(ctx, raw).Error(0)
}

func (m *MockAuthService) VerifyAccess(ctx context.Context, raw string) (int64, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, callerID int64, access, refresh string) error {
	return m.Called(ctx, callerID, access, refresh).Error(0)
}
