package mocks

import (
	"context"

	pDomain "github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/ridloal/storefront-sync/internal/product/repository"

	"github.com/stretchr/testify/mock"
)

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) GetAll(ctx context.Context) ([]pDomain.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) GetByCategory(ctx context.Context, category pDomain.Category) ([]pDomain.Product, error) {
	args := m.Called(ctx, category)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) Add(ctx context.Context, in pDomain.ProductInput) (*pDomain.Product, error) {
	args := m.Called(ctx, in)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) Update(ctx context.Context, id string, in pDomain.ProductInput) (*pDomain.Product, error) {
	args := m.Called(ctx, id, in)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) Delete(ctx context.Context, id string) (*pDomain.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSubscribingStore adds the optional change-subscription capability.
type MockSubscribingStore struct {
	MockProductStore
}

func (m *MockSubscribingStore) Subscribe(ctx context.Context, onChange func()) (*repository.Subscription, error) {
	args := m.Called(ctx, onChange)
	if res := args.Get(0); res != nil {
		return res.(*repository.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubscribingStore) Unsubscribe(sub *repository.Subscription) {
	m.Called(sub)
	sub.Close()
}
