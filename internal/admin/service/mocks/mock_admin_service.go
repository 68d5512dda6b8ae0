package mocks

import (
	"context"

	"github.com/ridloal/storefront-sync/internal/admin/service"
	pDomain "github.com/ridloal/storefront-sync/internal/product/domain"

	"github.com/stretchr/testify/mock"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) State() service.FormState {
	args := m.Called()
	return args.Get(0).(service.FormState)
}

func (m *MockAdminService) StartEdit(ctx context.Context, id string) (service.FormState, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(service.FormState), args.Error(1)
}

func (m *MockAdminService) Reset() {
	m.Called()
}

func (m *MockAdminService) Submit(ctx context.Context, in service.FormInput) (*service.MutationResult, error) {
	args := m.Called(ctx, in)
	if res := args.Get(0); res != nil {
		return res.(*service.MutationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminService) Remove(ctx context.Context, id string, confirmed bool) (*service.MutationResult, error) {
	args := m.Called(ctx, id, confirmed)
	if res := args.Get(0); res != nil {
		return res.(*service.MutationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminService) Dashboard(ctx context.Context) (pDomain.Counts, error) {
	args := m.Called(ctx)
	return args.Get(0).(pDomain.Counts), args.Error(1)
}

func (m *MockAdminService) ListProducts(ctx context.Context, filter string) ([]pDomain.Product, error) {
	args := m.Called(ctx, filter)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminService) Export(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminService) Import(ctx context.Context, data []byte) (*service.MutationResult, error) {
	args := m.Called(ctx, data)
	if res := args.Get(0); res != nil {
		return res.(*service.MutationResult), args.Error(1)
	}
	return nil, args.Error(1)
}
