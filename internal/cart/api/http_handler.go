package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/ridloal/storefront-sync/internal/cart/domain"
	"github.com/ridloal/storefront-sync/internal/cart/service"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/platform/web"
)

const (
	sessionProfileKey = "profile"
	ctxProfileKey     = "cartProfile"
)

type CartHandler struct {
	cartService service.CartService
	sessions    sessions.Store
}

func NewCartHandler(cs service.CartService, store sessions.Store) *CartHandler {
	return &CartHandler{cartService: cs, sessions: store}
}

func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	cartRoutes := router.Group("/cart", h.Profile)
	{
		cartRoutes.GET("", h.GetCart)
		cartRoutes.DELETE("", h.ClearCart)
		cartRoutes.POST("/items", h.AddItem)
		cartRoutes.DELETE("/items/:index", h.RemoveItem)
		cartRoutes.POST("/checkout", h.Checkout)
	}
}

// Profile resolves the browser profile id, issuing one on the first visit.
func (h *CartHandler) Profile(c *gin.Context) {
	sess := web.Session(c, h.sessions)
	profileID, _ := sess.Values[sessionProfileKey].(string)
	if profileID == "" {
		profileID = uuid.NewString()
		sess.Values[sessionProfileKey] = profileID
		if err := web.SaveSession(c, sess); err != nil {
			logger.Error("Cart.Profile: failed to save session", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start cart session"})
			return
		}
	}
	c.Set(ctxProfileKey, profileID)
	c.Next()
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.Get(c.Request.Context(), c.GetString(ctxProfileKey))
	if err != nil {
		web.RespondError(c, "GetCart", err, "Failed to load cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var item domain.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	count, err := h.cartService.Add(c.Request.Context(), c.GetString(ctxProfileKey), item)
	if err != nil {
		web.RespondError(c, "AddItem", err, "Failed to add item to cart")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart!", "count": count})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item index"})
		return
	}
	cart, err := h.cartService.Remove(c.Request.Context(), c.GetString(ctxProfileKey), index)
	if err != nil {
		web.RespondError(c, "RemoveItem", err, "Failed to update cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Checkout(c *gin.Context) {
	summary, err := h.cartService.Checkout(c.Request.Context(), c.GetString(ctxProfileKey))
	if err != nil {
		web.RespondError(c, "Checkout", err, "Failed to load cart")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), c.GetString(ctxProfileKey)); err != nil {
		web.RespondError(c, "ClearCart", err, "Failed to clear cart")
		return
	}
	c.Status(http.StatusNoContent)
}
