package service

import (
	"context"

	"github.com/ridloal/storefront-sync/internal/catalog"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/ridloal/storefront-sync/internal/product/repository"
)

// ProductService is the public read side of the catalog.
type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
	GetProductDetails(ctx context.Context, productID string) (*domain.Product, error)
	Counts(ctx context.Context) (domain.Counts, error)
}

type productServiceImpl struct {
	store repository.ProductStore
}

func NewProductService(store repository.ProductStore) ProductService {
	return &productServiceImpl{store: store}
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.GetAll(ctx)
}

// ListByCategory returns an empty list for unknown categories without touching the store.
func (s *productServiceImpl) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	if !category.IsKnown() {
		return []domain.Product{}, nil
	}
	return s.store.GetByCategory(ctx, category)
}

func (s *productServiceImpl) GetProductDetails(ctx context.Context, productID string) (*domain.Product, error) {
	products, err := s.store.GetAll(ctx)
	if err != nil {
		logger.Error("GetProductDetails: failed to list products for "+productID, err)
		return nil, err
	}
	for i := range products {
		if products[i].ID == productID {
			return &products[i], nil
		}
	}
	return nil, &domain.NotFoundError{ID: productID}
}

func (s *productServiceImpl) Counts(ctx context.Context) (domain.Counts, error) {
	products, err := s.store.GetAll(ctx)
	if err != nil {
		return domain.Counts{}, err
	}
	return catalog.Count(products), nil
}
