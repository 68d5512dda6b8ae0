package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/ridloal/storefront-sync/internal/admin/service"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/platform/web"
	"github.com/ridloal/storefront-sync/internal/product/domain"
)

const sessionAdminKey = "admin"

type AdminHandler struct {
	adminService service.AdminService
	gate         *service.DevGate
	sessions     sessions.Store
}

func NewAdminHandler(as service.AdminService, gate *service.DevGate, store sessions.Store) *AdminHandler {
	return &AdminHandler{adminService: as, gate: gate, sessions: store}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	adminRoutes := router.Group("/admin")
	{
		adminRoutes.POST("/login", h.Login)
		adminRoutes.POST("/logout", h.Logout)

		protected := adminRoutes.Group("", h.RequireAdmin)
		protected.GET("/dashboard", h.Dashboard)
		protected.GET("/products", h.ListProducts)
		protected.POST("/products", h.Submit)
		protected.POST("/products/:id/edit", h.StartEdit)
		protected.DELETE("/products/:id", h.Remove)
		protected.GET("/form", h.FormState)
		protected.POST("/form/reset", h.ResetForm)
		protected.POST("/images", h.UploadImage)
		protected.GET("/price-format", h.FormatPrice)
		protected.GET("/export", h.Export)
		protected.POST("/import", h.Import)
	}
}

type loginRequest struct {
	Password string `json:"password" form:"password" binding:"required"`
}

// Login is the development password gate. On success the cookie session is marked and a
// bearer token is returned for non-browser clients.
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	token, err := h.gate.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password!"})
			return
		}
		logger.Error("Login: gate error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	sess := web.Session(c, h.sessions)
	sess.Values[sessionAdminKey] = true
	if err := web.SaveSession(c, sess); err != nil {
		logger.Error("Login: failed to save session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) Logout(c *gin.Context) {
	sess := web.Session(c, h.sessions)
	delete(sess.Values, sessionAdminKey)
	if err := web.SaveSession(c, sess); err != nil {
		logger.Error("Logout: failed to save session", err)
	}
	c.Status(http.StatusNoContent)
}

// RequireAdmin accepts either the marked cookie session or a bearer token from Login.
func (h *AdminHandler) RequireAdmin(c *gin.Context) {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if err := h.gate.Verify(strings.TrimPrefix(auth, "Bearer ")); err == nil {
			c.Next()
			return
		}
	}
	if ok, _ := web.Session(c, h.sessions).Values[sessionAdminKey].(bool); ok {
		c.Next()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin login required"})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	counts, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		web.RespondError(c, "Dashboard", err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *AdminHandler) ListProducts(c *gin.Context) {
	products, err := h.adminService.ListProducts(c.Request.Context(), c.DefaultQuery("filter", "all"))
	if err != nil {
		web.RespondError(c, "ListProducts", err, "Failed to load products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *AdminHandler) FormState(c *gin.Context) {
	c.JSON(http.StatusOK, h.adminService.State())
}

func (h *AdminHandler) ResetForm(c *gin.Context) {
	h.adminService.Reset()
	c.JSON(http.StatusOK, h.adminService.State())
}

func (h *AdminHandler) StartEdit(c *gin.Context) {
	state, err := h.adminService.StartEdit(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.RespondError(c, "StartEdit", err, "Failed to load product")
		return
	}
	c.JSON(http.StatusOK, state)
}

// Submit accepts JSON or a multipart form. A multipart "imageFile" part overrides the
// image field.
func (h *AdminHandler) Submit(c *gin.Context) {
	var in service.FormInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	if header, err := c.FormFile("imageFile"); err == nil {
		uri, err := service.ImageFromUpload(header)
		if err != nil {
			web.RespondError(c, "Submit", err, "Failed to read image")
			return
		}
		in.Image = uri
	}

	editing := h.adminService.State().Mode == service.ModeEditing
	res, err := h.adminService.Submit(c.Request.Context(), in)
	if err != nil {
		web.RespondError(c, "Submit", err, "Failed to save product")
		return
	}

	status, message := http.StatusCreated, "Product added successfully!"
	if editing {
		status, message = http.StatusOK, "Product updated successfully!"
	}
	c.JSON(status, gin.H{"message": message, "result": res})
}

func (h *AdminHandler) Remove(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	res, err := h.adminService.Remove(c.Request.Context(), c.Param("id"), confirmed)
	if err != nil {
		if errors.Is(err, service.ErrConfirmationRequired) {
			c.JSON(http.StatusConflict, gin.H{"error": "Are you sure you want to delete this product? Repeat with confirm=true."})
			return
		}
		web.RespondError(c, "Remove", err, "Failed to delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully!", "result": res})
}

func (h *AdminHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a valid image file."})
		return
	}
	uri, err := service.ImageFromUpload(header)
	if err != nil {
		web.RespondError(c, "UploadImage", err, "Failed to read image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": uri})
}

func (h *AdminHandler) FormatPrice(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"price": domain.FormatPriceInput(c.Query("raw"))})
}

func (h *AdminHandler) Export(c *gin.Context) {
	data, err := h.adminService.Export(c.Request.Context())
	if err != nil {
		web.RespondError(c, "Export", err, "Failed to export products")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="products.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import takes the JSON array either as the raw body or as a multipart "file" part.
func (h *AdminHandler) Import(c *gin.Context) {
	var (
		data []byte
		err  error
	)
	if header, ferr := c.FormFile("file"); ferr == nil {
		f, oerr := header.Open()
		if oerr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read import file"})
			return
		}
		defer f.Close()
		data, err = io.ReadAll(f)
	} else {
		data, err = io.ReadAll(c.Request.Body)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read import file"})
		return
	}

	res, err := h.adminService.Import(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, service.ErrImportUnsupported) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		web.RespondError(c, "Import", err, "Failed to import products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Products imported successfully!", "result": res})
}
