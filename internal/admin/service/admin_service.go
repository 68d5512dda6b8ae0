package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ridloal/storefront-sync/internal/catalog"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/ridloal/storefront-sync/internal/product/repository"
	"github.com/ridloal/storefront-sync/internal/syncsignal"
)

var (
	ErrConfirmationRequired = errors.New("delete requires explicit confirmation")
	ErrImportUnsupported    = errors.New("import is only available on the local backing")
)

const defaultCondition = "new"

type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeEditing Mode = "editing"
)

// FormInput is the raw product form as submitted.
type FormInput struct {
	Name        string `json:"name" form:"name"`
	Price       string `json:"price" form:"price"`
	Category    string `json:"category" form:"category"`
	Condition   string `json:"condition" form:"condition"`
	Description string `json:"description" form:"description"`
	Image       string `json:"image" form:"image"`
}

type FormState struct {
	Mode   Mode      `json:"mode"`
	EditID string    `json:"edit_id,omitempty"`
	Form   FormInput `json:"form"`
}

// MutationResult is what the management view re-renders after a successful mutation.
type MutationResult struct {
	Product  *domain.Product  `json:"product"`
	Counts   domain.Counts    `json:"counts"`
	Products []domain.Product `json:"products"`
}

// Importer is implemented by backings that can swap the whole collection.
type Importer interface {
	ReplaceAll(ctx context.Context, products []domain.Product) error
}

type Options struct {
	RequireImage bool
}

type AdminService interface {
	State() FormState
	StartEdit(ctx context.Context, id string) (FormState, error)
	Reset()
	Submit(ctx context.Context, in FormInput) (*MutationResult, error)
	Remove(ctx context.Context, id string, confirmed bool) (*MutationResult, error)
	Dashboard(ctx context.Context) (domain.Counts, error)
	ListProducts(ctx context.Context, filter string) ([]domain.Product, error)
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) (*MutationResult, error)
}

type adminServiceImpl struct {
	store    repository.ProductStore
	notifier syncsignal.ChangeNotifier
	importer Importer
	opts     Options

	mu    sync.Mutex
	state FormState
}

// NewAdminService wires the controller. importer may be nil when the backing cannot
// replace its whole collection.
func NewAdminService(store repository.ProductStore, notifier syncsignal.ChangeNotifier, importer Importer, opts Options) AdminService {
	return &adminServiceImpl{
		store:    store,
		notifier: notifier,
		importer: importer,
		opts:     opts,
		state:    FormState{Mode: ModeIdle},
	}
}

func (s *adminServiceImpl) State() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartEdit preloads the form with the stored record. A second call replaces the
// current edit context without asking.
func (s *adminServiceImpl) StartEdit(ctx context.Context, id string) (FormState, error) {
	products, err := s.store.GetAll(ctx)
	if err != nil {
		return s.State(), err
	}
	var found *domain.Product
	for i := range products {
		if products[i].ID == id {
			found = &products[i]
			break
		}
	}
	if found == nil {
		return s.State(), &domain.NotFoundError{ID: id}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = FormState{
		Mode:   ModeEditing,
		EditID: id,
		Form: FormInput{
			Name:        found.Name,
			Price:       found.Price.String(),
			Category:    string(found.Category),
			Condition:   found.Condition,
			Description: found.Description,
			Image:       found.Image,
		},
	}
	return s.state, nil
}

func (s *adminServiceImpl) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = FormState{Mode: ModeIdle}
}

func (s *adminServiceImpl) Submit(ctx context.Context, in FormInput) (*MutationResult, error) {
	product, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	started := s.State()
	var saved *domain.Product
	if started.Mode == ModeEditing {
		saved, err = s.store.Update(ctx, started.EditID, product)
	} else {
		saved, err = s.store.Add(ctx, product)
	}
	if err != nil {
		logger.Error(fmt.Sprintf("Svc.Submit: %s failed", started.Mode), err)
		return nil, err
	}

	s.mu.Lock()
	// a StartEdit that arrived while the write was in flight wins
	if s.state.Mode == started.Mode && s.state.EditID == started.EditID {
		s.state = FormState{Mode: ModeIdle}
	}
	s.mu.Unlock()

	return s.afterMutation(ctx, saved), nil
}

func (s *adminServiceImpl) Remove(ctx context.Context, id string, confirmed bool) (*MutationResult, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		logger.Error("Svc.Remove: delete failed for "+id, err)
		return nil, err
	}

	s.mu.Lock()
	if s.state.Mode == ModeEditing && s.state.EditID == id {
		s.state = FormState{Mode: ModeIdle}
	}
	s.mu.Unlock()

	return s.afterMutation(ctx, removed), nil
}

// Dashboard is always recomputed from the full collection.
func (s *adminServiceImpl) Dashboard(ctx context.Context) (domain.Counts, error) {
	products, err := s.store.GetAll(ctx)
	if err != nil {
		return domain.Counts{}, err
	}
	return catalog.Count(products), nil
}

func (s *adminServiceImpl) ListProducts(ctx context.Context, filter string) ([]domain.Product, error) {
	products, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(products, filter), nil
}

func (s *adminServiceImpl) Export(ctx context.Context) ([]byte, error) {
	products, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(products, "", "  ")
}

func (s *adminServiceImpl) Import(ctx context.Context, data []byte) (*MutationResult, error) {
	if s.importer == nil {
		return nil, ErrImportUnsupported
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, domain.NewValidationError("Invalid JSON format.")
	}
	if products == nil {
		return nil, domain.NewValidationError("Invalid JSON format.")
	}
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if seen[p.ID] {
			return nil, domain.NewValidationError("Duplicate product id "+p.ID+" in import.", "id")
		}
		seen[p.ID] = true
	}
	if err := s.importer.ReplaceAll(ctx, products); err != nil {
		logger.Error("Svc.Import: replace failed", err)
		return nil, err
	}
	return s.afterMutation(ctx, nil), nil
}

func (s *adminServiceImpl) validate(in FormInput) (domain.ProductInput, error) {
	name := strings.TrimSpace(in.Name)
	price := strings.TrimSpace(in.Price)
	category := strings.TrimSpace(in.Category)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if price == "" {
		missing = append(missing, "price")
	}
	if category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return domain.ProductInput{}, domain.NewValidationError("Please fill in all required fields.", missing...)
	}
	if s.opts.RequireImage && strings.TrimSpace(in.Image) == "" {
		return domain.ProductInput{}, domain.NewValidationError("Please upload a product image.", "image")
	}

	condition := strings.TrimSpace(in.Condition)
	if condition == "" {
		condition = defaultCondition
	}
	return domain.ProductInput{
		Name:        name,
		Price:       domain.ParsePrice(price),
		Category:    domain.ParseCategory(category),
		Description: strings.TrimSpace(in.Description),
		Image:       in.Image,
		Condition:   condition,
	}, nil
}

// afterMutation re-reads the whole collection, recomputes the dashboard and publishes the
// sync signal. The mutation itself already succeeded, so failures here are only logged.
func (s *adminServiceImpl) afterMutation(ctx context.Context, changed *domain.Product) *MutationResult {
	res := &MutationResult{Product: changed, Products: []domain.Product{}}
	products, err := s.store.GetAll(ctx)
	if err != nil {
		logger.Error("Svc.afterMutation: reload products failed", err)
		return res
	}
	res.Products = products
	res.Counts = catalog.Count(products)
	if err := s.notifier.Publish(ctx, products); err != nil {
		logger.Error("Svc.afterMutation: publish sync signal failed", err)
	}
	return res
}
