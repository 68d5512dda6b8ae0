package api

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/platform/web"
	"github.com/ridloal/storefront-sync/internal/storefront/service"
	"github.com/ridloal/storefront-sync/internal/syncsignal"
)

const gridTemplate = `{{define "grid"}}<div class="{{gridClass .Category}}">
{{- if .Empty}}
<div class="empty-state">
<h3>No products available yet</h3>
<p>Check back later for new {{.Category}} products.</p>
<button onclick="loadCategoryProducts()" class="btn">Refresh Products</button>
</div>
{{- else}}{{range .Cards}}
<div class="{{.Class}}" data-category="{{.Category}}" data-id="{{.ID}}">
<img src="{{image .Image}}" alt="{{.Name}}" onerror="this.src='{{placeholder}}'">
<div class="product-info">
<h3>{{.Name}}</h3>
<p class="price">{{.Price}}</p>
{{- if .Condition}}
<span class="condition-tag">{{.Condition}}</span>{{end}}
{{- if .Description}}
<p class="description">{{.Description}}</p>{{end}}
<button class="add-to-cart">Add to Cart</button>
</div>
</div>{{end}}{{end}}
</div>{{end}}`

var gridTmpl = template.Must(template.New("storefront").Funcs(template.FuncMap{
	"gridClass": func(c interface{}) string {
		if s := fmt.Sprint(c); s != "properties" {
			return s + "-grid"
		}
		return "property-grid"
	},
	"placeholder": func() string { return service.PlaceholderImage },
	"image":       safeImage,
}).Parse(gridTemplate))

// safeImage lets data:image URIs and http(s) URLs through; anything else gets the placeholder.
func safeImage(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"):
		return template.URL(src)
	}
	return template.URL(service.PlaceholderImage)
}

type StorefrontHandler struct {
	renderer service.Renderer
	notifier syncsignal.ChangeNotifier
}

func NewStorefrontHandler(r service.Renderer, n syncsignal.ChangeNotifier) *StorefrontHandler {
	return &StorefrontHandler{renderer: r, notifier: n}
}

func (h *StorefrontHandler) RegisterRoutes(router *gin.RouterGroup) {
	pageRoutes := router.Group("/pages")
	{
		pageRoutes.GET("", h.ListPages)
		pageRoutes.GET("/:page", h.GetPage)
		pageRoutes.POST("/:page/focus", h.Focus)
		pageRoutes.GET("/:page/events", h.Events)
	}
}

// ListPages renders every category page at once.
func (h *StorefrontHandler) ListPages(c *gin.Context) {
	views, err := h.renderer.LoadAll(c.Request.Context())
	if err != nil {
		web.RespondError(c, "ListPages", err, "Failed to load pages")
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetPage is the manual reload. HTML by default, JSON with ?format=json.
func (h *StorefrontHandler) GetPage(c *gin.Context) {
	view, ok := h.load(c)
	if !ok {
		return
	}
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, view)
		return
	}
	c.Render(http.StatusOK, render.HTML{Template: gridTmpl, Name: "grid", Data: view})
}

func (h *StorefrontHandler) Focus(c *gin.Context) {
	page := c.Param("page")
	if _, err := service.CategoryForPage(page); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.renderer.Focus(page)
	c.Status(http.StatusAccepted)
}

func (h *StorefrontHandler) load(c *gin.Context) (*service.View, bool) {
	view, err := h.renderer.Load(c.Request.Context(), c.Param("page"))
	if err != nil {
		if errors.Is(err, service.ErrNotCategoryPage) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return nil, false
		}
		web.RespondError(c, "GetPage", err, "Failed to load products")
		return nil, false
	}
	return view, true
}

// Events streams the sync signals for one page as server-sent events. The first event is
// the current "view"; each later signal is followed by a "view" event with the re-rendered
// grid whenever the signal concerned the page.
func (h *StorefrontHandler) Events(c *gin.Context) {
	page := c.Param("page")
	if _, err := service.CategoryForPage(page); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	updates := make(chan service.Update, 16)
	watchErr := make(chan error, 1)
	go func() {
		defer close(updates)
		watchErr <- h.renderer.Watch(ctx, page, h.notifier, func(u service.Update) {
			select {
			case updates <- u:
			case <-ctx.Done():
			}
		})
	}()

	streaming := false
	for u := range updates {
		if !streaming {
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Status(http.StatusOK)
			streaming = true
		}
		if u.Signal.Kind != "" {
			c.SSEvent(string(u.Signal.Kind), signalPayload(u.Signal))
		}
		if u.View != nil {
			h.writeView(c, u.View)
		}
		c.Writer.Flush()
	}

	err := <-watchErr
	switch {
	case err == nil, errors.Is(err, ctx.Err()):
	case !streaming:
		web.RespondError(c, "Events", err, "Failed to load products")
	default:
		logger.Error("Events: watch of "+page+" ended", err)
	}
}

func (h *StorefrontHandler) writeView(c *gin.Context, view *service.View) {
	var html strings.Builder
	if err := gridTmpl.ExecuteTemplate(&html, "grid", view); err != nil {
		logger.Error("Events: render grid failed", err)
		return
	}
	c.SSEvent("view", gin.H{"page": view.Page, "empty": view.Empty, "source": view.Source, "html": html.String()})
	c.Writer.Flush()
}

func signalPayload(sig syncsignal.Signal) interface{} {
	switch sig.Kind {
	case syncsignal.KindStorage:
		return gin.H{"key": sig.Key, "newValue": sig.Value}
	case syncsignal.KindProductsUpdated:
		if sig.Counts != nil {
			return gin.H{"furniture": sig.Counts.Furniture, "properties": sig.Counts.Properties, "auto": sig.Counts.Auto}
		}
	case syncsignal.KindFocus:
		return gin.H{"page": sig.Key}
	}
	return gin.H{}
}
