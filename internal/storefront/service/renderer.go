package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/ridloal/storefront-sync/internal/product/repository"
	"github.com/ridloal/storefront-sync/internal/syncsignal"
	"golang.org/x/sync/errgroup"
)

var ErrNotCategoryPage = errors.New("not a category page")

// PlaceholderImage is a grey 300x200 "No Image" SVG.
const PlaceholderImage = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMzAwIiBoZWlnaHQ9IjIwMCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMTAwJSIgaGVpZ2h0PSIxMDAlIiBmaWxsPSIjZGRkIi8+PHRleHQgeD0iNTAlIiB5PSI1MCUiIGZvbnQtZmFtaWx5PSJBcmlhbCwgc2Fucy1zZXJpZiIgZm9udC1zaXplPSIxNCIgZmlsbD0iIzk5OSIgdGV4dC1hbmNob3I9Im1pZGRsZSIgZHk9Ii4zZW0iPk5vIEltYWdlPC90ZXh0Pjwvc3ZnPg=="

const descriptionLimit = 100

var pageCategories = map[string]domain.Category{
	"furniture.html":  domain.CategoryFurniture,
	"properties.html": domain.CategoryProperties,
	"auto.html":       domain.CategoryAuto,
}

// Pages returns the category pages in display order.
func Pages() []string {
	return []string{"furniture.html", "properties.html", "auto.html"}
}

func CategoryForPage(page string) (domain.Category, error) {
	c, ok := pageCategories[page]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotCategoryPage, page)
	}
	return c, nil
}

// Reader is the read side of a product backing.
type Reader interface {
	GetByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
}

var _ Reader = (repository.ProductStore)(nil)

type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Condition   string `json:"condition,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image"`
	Class       string `json:"class"`
}

type View struct {
	Page     string          `json:"page"`
	Category domain.Category `json:"category"`
	Cards    []Card          `json:"cards"`
	Empty    bool            `json:"empty"`
	// Source is "remote" or "local", whichever backing answered.
	Source string `json:"source"`
}

// Update is handed to a Watch callback for the initial load and for every signal. The
// initial update has a zero Signal. View is nil when the signal was not relevant to the page
// or the reload failed.
type Update struct {
	Signal syncsignal.Signal
	View   *View
}

type Renderer interface {
	Load(ctx context.Context, page string) (*View, error)
	LoadAll(ctx context.Context) (map[string]*View, error)
	Focus(page string)
	Watch(ctx context.Context, page string, notifier syncsignal.ChangeNotifier, onUpdate func(Update)) error
}

type rendererImpl struct {
	remote Reader
	local  Reader
	focus  *syncsignal.Feed
}

// NewRenderer prefers remote when it is non-nil and falls back to local on any remote
// error. local may be nil when only the remote backing is configured.
func NewRenderer(remote, local Reader) Renderer {
	return &rendererImpl{remote: remote, local: local, focus: syncsignal.NewFeed()}
}

func (r *rendererImpl) Load(ctx context.Context, page string) (*View, error) {
	category, err := CategoryForPage(page)
	if err != nil {
		return nil, err
	}

	products, source, err := r.read(ctx, category)
	if err != nil {
		return nil, err
	}

	view := &View{Page: page, Category: category, Cards: make([]Card, 0, len(products)), Source: source}
	for _, p := range products {
		view.Cards = append(view.Cards, NewCard(p))
	}
	view.Empty = len(view.Cards) == 0
	return view, nil
}

func (r *rendererImpl) read(ctx context.Context, category domain.Category) ([]domain.Product, string, error) {
	if r.remote != nil {
		products, err := r.remote.GetByCategory(ctx, category)
		if err == nil {
			return products, "remote", nil
		}
		if r.local == nil {
			return nil, "", err
		}
		logger.Warn("Renderer.Load: remote read for %s failed, falling back to local: %v", category, err)
	}
	if r.local == nil {
		return nil, "", &domain.StoreError{Op: "get by category", Err: errors.New("no backing configured")}
	}
	products, err := r.local.GetByCategory(ctx, category)
	if err != nil {
		return nil, "", err
	}
	return products, "local", nil
}

// LoadAll refreshes every category page concurrently.
func (r *rendererImpl) LoadAll(ctx context.Context) (map[string]*View, error) {
	pages := Pages()
	views := make([]*View, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			v, err := r.Load(gctx, page)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*View, len(pages))
	for i, page := range pages {
		out[page] = views[i]
	}
	return out, nil
}

// Focus reloads every watcher of page, as a browser tab regaining focus would.
func (r *rendererImpl) Focus(page string) {
	r.focus.Send(syncsignal.Signal{Kind: syncsignal.KindFocus, Key: page})
}

// Watch subscribes, then hands the first load to onUpdate, then reloads the page on every
// relevant signal until ctx ends or the notifier closes. A change published while the first
// load runs is therefore never missed. A failed first load ends Watch with its error.
// Loads are not tagged: when two overlap the last one to finish wins.
func (r *rendererImpl) Watch(ctx context.Context, page string, notifier syncsignal.ChangeNotifier, onUpdate func(Update)) error {
	category, err := CategoryForPage(page)
	if err != nil {
		return err
	}

	signals, cancel := notifier.Subscribe(16)
	defer cancel()
	focus, cancelFocus := r.focus.Subscribe(4)
	defer cancelFocus()

	initial, err := r.Load(ctx, page)
	if err != nil {
		return err
	}
	onUpdate(Update{View: initial})

	var mu sync.Mutex
	handle := func(sig syncsignal.Signal) {
		mu.Lock()
		defer mu.Unlock()
		if !relevant(sig, page, category) {
			onUpdate(Update{Signal: sig})
			return
		}
		view, err := r.Load(ctx, page)
		if err != nil {
			logger.Error("Renderer.Watch: reload of "+page+" failed", err)
		}
		onUpdate(Update{Signal: sig, View: view})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			handle(sig)
		case sig, ok := <-focus:
			if !ok {
				return nil
			}
			handle(sig)
		}
	}
}

func relevant(sig syncsignal.Signal, page string, category domain.Category) bool {
	switch sig.Kind {
	case syncsignal.KindStorage:
		return sig.Key == repository.CategoryKey(category)
	case syncsignal.KindFocus:
		return sig.Key == page
	}
	return true
}

// NewCard shapes one product for display: placeholder image when empty, description cut to
// 100 characters.
func NewCard(p domain.Product) Card {
	card := Card{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Category:    string(p.Category),
		Condition:   p.Condition,
		Description: p.Description,
		Image:       p.Image,
		Class:       cardClass(p.Category),
	}
	if card.Image == "" {
		card.Image = PlaceholderImage
	}
	if runes := []rune(card.Description); len(runes) > descriptionLimit {
		card.Description = string(runes[:descriptionLimit]) + "..."
	}
	return card
}

func cardClass(c domain.Category) string {
	switch c {
	case domain.CategoryProperties:
		return "property-card"
	case domain.CategoryAuto:
		return "auto-card"
	}
	return "product-card"
}
