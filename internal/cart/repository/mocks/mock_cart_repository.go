package mocks

import (
	"context"

	"github.com/ridloal/storefront-sync/internal/cart/domain"

	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetItems(ctx context.Context, profileID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, profileID)
	if res := args.Get(0); res != nil {
		return res.([]domain.CartItem), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateItems applies fn to the items given as the first return value, so tests can assert on
// what the service did with them.
func (m *MockCartRepository) UpdateItems(ctx context.Context, profileID string, fn func([]domain.CartItem) []domain.CartItem) ([]domain.CartItem, error) {
	args := m.Called(ctx, profileID, fn)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	var current []domain.CartItem
	if res := args.Get(0); res != nil {
		current = append(current, res.([]domain.CartItem)...)
	}
	return fn(current), nil
}

func (m *MockCartRepository) DeleteItems(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}
