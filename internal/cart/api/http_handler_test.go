package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/storefront-sync/internal/cart/domain"
	"github.com/ridloal/storefront-sync/internal/cart/repository"
	"github.com/ridloal/storefront-sync/internal/cart/service"
	"github.com/ridloal/storefront-sync/internal/platform/kvstore"
	"github.com/ridloal/storefront-sync/internal/platform/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "carts.db"), repository.BucketCarts)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	svc := service.NewCartService(repository.NewBoltCartRepository(kv), service.DefaultBankDetails)
	router := gin.New()
	NewCartHandler(svc, web.NewCookieStore("test-session-secret")).RegisterRoutes(router.Group("/api/v1"))
	return router
}

// browser replays the cookies it was given, like one browser profile would.
type browser struct {
	router  *gin.Engine
	cookies []*http.Cookie
}

func (b *browser) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return w
}

func TestCartHandler_Flow(t *testing.T) {
	router := setupRouter(t)
	alice := &browser{router: router}
	bob := &browser{router: router}

	w := alice.do(t, http.MethodPost, "/api/v1/cart/items", `{"name":"Sofa","price":"$120.50","category":"furniture"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Item added to cart!","count":1}`, w.Body.String())

	w = alice.do(t, http.MethodPost, "/api/v1/cart/items", `{"name":"Lamp","price":"$9.49","category":"furniture"}`)
	assert.JSONEq(t, `{"message":"Item added to cart!","count":2}`, w.Body.String())

	w = alice.do(t, http.MethodPost, "/api/v1/cart/checkout", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary domain.CheckoutSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "$129.99", summary.Total)

	w = bob.do(t, http.MethodGet, "/api/v1/cart", "")
	var cart domain.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, 0, cart.Count, "another profile has its own cart")

	w = alice.do(t, http.MethodDelete, "/api/v1/cart/items/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, 2, cart.Count, "out of range remove is a no-op")

	w = alice.do(t, http.MethodDelete, "/api/v1/cart/items/0", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, 1, cart.Count)
	assert.Equal(t, "$9.49", cart.Total)

	w = alice.do(t, http.MethodDelete, "/api/v1/cart/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = alice.do(t, http.MethodDelete, "/api/v1/cart", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = alice.do(t, http.MethodGet, "/api/v1/cart", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Equal(t, 0, cart.Count)
}

func TestCartHandler_BadPayload(t *testing.T) {
	b := &browser{router: setupRouter(t)}
	w := b.do(t, http.MethodPost, "/api/v1/cart/items", `{"price":"$1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
