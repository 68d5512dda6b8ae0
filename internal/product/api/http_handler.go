package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/storefront-sync/internal/platform/web"
	"github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/ridloal/storefront-sync/internal/product/service"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(ps service.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	productRoutes := router.Group("/products")
	{
		productRoutes.GET("", h.ListProducts)
		productRoutes.GET("/", h.ListProducts)
		productRoutes.GET("/counts", h.Counts)
		productRoutes.GET("/category/:category", h.ListByCategory)
		productRoutes.GET("/:id", h.GetProduct)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		web.RespondError(c, "ListProducts", err, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) ListByCategory(c *gin.Context) {
	category := domain.ParseCategory(c.Param("category"))
	products, err := h.productService.ListByCategory(c.Request.Context(), category)
	if err != nil {
		web.RespondError(c, "ListByCategory", err, "Failed to retrieve products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProductDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.RespondError(c, "GetProduct", err, "Failed to retrieve product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Counts(c *gin.Context) {
	counts, err := h.productService.Counts(c.Request.Context())
	if err != nil {
		web.RespondError(c, "Counts", err, "Failed to count products")
		return
	}
	c.JSON(http.StatusOK, counts)
}
