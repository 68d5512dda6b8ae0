package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/storefront-sync/internal/admin/service"
	"github.com/ridloal/storefront-sync/internal/admin/service/mocks"
	"github.com/ridloal/storefront-sync/internal/platform/web"
	"github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, svc service.AdminService) (*gin.Engine, *service.DevGate) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gate, err := service.NewDevGate("admin123", "test-secret", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	NewAdminHandler(svc, gate, web.NewCookieStore("test-session-secret")).RegisterRoutes(router.Group("/api/v1"))
	return router, gate
}

func bearer(t *testing.T, gate *service.DevGate) string {
	t.Helper()
	token, err := gate.Login("admin123")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAdminHandler_Login(t *testing.T) {
	router, _ := setupRouter(t, new(mocks.MockAdminService))

	t.Run("Wrong password", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"guess"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Session cookie opens protected routes", func(t *testing.T) {
		svc := new(mocks.MockAdminService)
		router, _ := setupRouter(t, svc)
		svc.On("Dashboard", mock.Anything).Return(domain.Counts{Total: 1, Furniture: 1}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"admin123"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"total":1,"furniture":1,"properties":0,"auto":0}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("Protected route without login", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminHandler_Submit(t *testing.T) {
	svc := new(mocks.MockAdminService)
	router, gate := setupRouter(t, svc)
	auth := bearer(t, gate)

	t.Run("Successful add", func(t *testing.T) {
		product := &domain.Product{ID: "1", Name: "Sofa", Price: domain.ParsePrice("$500"), Category: domain.CategoryFurniture}
		svc.On("State").Return(service.FormState{Mode: service.ModeIdle}).Once()
		svc.On("Submit", mock.Anything, service.FormInput{Name: "Sofa", Price: "$500", Category: "furniture", Image: "x"}).
			Return(&service.MutationResult{Product: product, Counts: domain.Counts{Total: 1, Furniture: 1}}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products",
			strings.NewReader(`{"name":"Sofa","price":"$500","category":"furniture","image":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var body struct {
			Message string                 `json:"message"`
			Result  service.MutationResult `json:"result"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Product added successfully!", body.Message)
		assert.Equal(t, "$500.00", body.Result.Product.Price.String())
		svc.AssertExpectations(t)
	})

	t.Run("Validation error", func(t *testing.T) {
		svc.On("State").Return(service.FormState{Mode: service.ModeIdle}).Once()
		svc.On("Submit", mock.Anything, mock.AnythingOfType("service.FormInput")).
			Return(nil, domain.NewValidationError("Please fill in all required fields.", "name")).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(`{"price":"1"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please fill in all required fields.")
		svc.AssertExpectations(t)
	})

	t.Run("Store unavailable", func(t *testing.T) {
		svc.On("State").Return(service.FormState{Mode: service.ModeEditing, EditID: "1"}).Once()
		svc.On("Submit", mock.Anything, mock.AnythingOfType("service.FormInput")).
			Return(nil, &domain.StoreError{Op: "update", Err: errors.New("connection refused")}).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products",
			strings.NewReader(`{"name":"Sofa","price":"1","category":"furniture"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
		svc.AssertExpectations(t)
	})
}

func TestAdminHandler_Remove(t *testing.T) {
	svc := new(mocks.MockAdminService)
	router, gate := setupRouter(t, svc)
	auth := bearer(t, gate)

	tests := []struct {
		name   string
		query  string
		setup  func()
		status int
	}{
		{
			name:  "Missing confirmation",
			query: "",
			setup: func() {
				svc.On("Remove", mock.Anything, "1", false).Return(nil, service.ErrConfirmationRequired).Once()
			},
			status: http.StatusConflict,
		},
		{
			name:  "Confirmed",
			query: "?confirm=true",
			setup: func() {
				svc.On("Remove", mock.Anything, "1", true).Return(&service.MutationResult{}, nil).Once()
			},
			status: http.StatusOK,
		},
		{
			name:  "Already gone",
			query: "?confirm=true",
			setup: func() {
				svc.On("Remove", mock.Anything, "1", true).Return(nil, &domain.NotFoundError{ID: "1"}).Once()
			},
			status: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/1"+tt.query, nil)
			req.Header.Set("Authorization", auth)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
	svc.AssertExpectations(t)
}

func TestAdminHandler_EditAndImport(t *testing.T) {
	svc := new(mocks.MockAdminService)
	router, gate := setupRouter(t, svc)
	auth := bearer(t, gate)

	t.Run("Start edit of a missing product", func(t *testing.T) {
		svc.On("StartEdit", mock.Anything, "9").Return(service.FormState{Mode: service.ModeIdle}, &domain.NotFoundError{ID: "9"}).Once()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/9/edit", nil)
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Import from multipart file", func(t *testing.T) {
		payload := []byte(`[{"id":"1","name":"Sofa","price":"$1.00","category":"furniture"}]`)
		svc.On("Import", mock.Anything, payload).Return(&service.MutationResult{}, nil).Once()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "products.json")
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Import on the remote backing", func(t *testing.T) {
		svc.On("Import", mock.Anything, []byte(`[]`)).Return(nil, service.ErrImportUnsupported).Once()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/import", strings.NewReader(`[]`))
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Export", func(t *testing.T) {
		svc.On("Export", mock.Anything).Return([]byte(`[]`), nil).Once()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/export", nil)
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "products.json")
	})

	t.Run("Format price", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/price-format?raw=12.345abc", nil)
		req.Header.Set("Authorization", auth)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"price":"$12.34"}`, w.Body.String())
	})
	svc.AssertExpectations(t)
}
