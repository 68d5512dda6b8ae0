package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ridloal/storefront-sync/internal/cart/domain"
	"github.com/ridloal/storefront-sync/internal/cart/repository/mocks"
	pDomain "github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func item(name, price string) domain.CartItem {
	return domain.CartItem{Name: name, Price: pDomain.ParsePrice(price), Category: "furniture"}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.CartItem
		want  string
	}{
		{"empty", nil, "$0.00"},
		{"two prices", []domain.CartItem{item("a", "$120.50"), item("b", "$9.49")}, "$129.99"},
		{"malformed price counts as zero", []domain.CartItem{item("a", "$120.50"), item("b", "N/A")}, "$120.50"},
		{"thousands separators", []domain.CartItem{item("a", "$1,250.00"), item("b", "$0.99")}, "$1250.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(tt.items).String())
		})
	}
}

func TestCartService_Add(t *testing.T) {
	mockRepo := new(mocks.MockCartRepository)
	svc := NewCartService(mockRepo, DefaultBankDetails)
	ctx := context.TODO()

	t.Run("Successful add returns badge count", func(t *testing.T) {
		mockRepo.On("UpdateItems", ctx, "p1", mock.Anything).Return([]domain.CartItem{item("a", "$1")}, nil).Once()

		count, err := svc.Add(ctx, "p1", item(" Sofa ", "$500"))
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Nameless item", func(t *testing.T) {
		_, err := svc.Add(ctx, "p1", item("  ", "$1"))
		assert.ErrorIs(t, err, pDomain.ErrInvalid)
	})

	t.Run("Store failure", func(t *testing.T) {
		mockRepo.On("UpdateItems", ctx, "p1", mock.Anything).Return(nil, &pDomain.StoreError{Op: "save cart", Err: errors.New("disk full")}).Once()

		_, err := svc.Add(ctx, "p1", item("Sofa", "$500"))
		assert.ErrorIs(t, err, pDomain.ErrStore)
		mockRepo.AssertExpectations(t)
	})
}

func TestCartService_Remove(t *testing.T) {
	mockRepo := new(mocks.MockCartRepository)
	svc := NewCartService(mockRepo, DefaultBankDetails)
	ctx := context.TODO()
	current := []domain.CartItem{item("a", "$1"), item("b", "$2"), item("c", "$3")}

	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{"middle", 1, []string{"a", "c"}},
		{"out of bounds", 3, []string{"a", "b", "c"}},
		{"negative", -1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.On("UpdateItems", ctx, "p1", mock.Anything).Return(current, nil).Once()

			cart, err := svc.Remove(ctx, "p1", tt.index)
			require.NoError(t, err)
			var names []string
			for _, it := range cart.Items {
				names = append(names, it.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), cart.Count)
		})
	}
	assert.Len(t, current, 3, "input slice untouched")
	mockRepo.AssertExpectations(t)
}

func TestCartService_CheckoutAndClear(t *testing.T) {
	mockRepo := new(mocks.MockCartRepository)
	svc := NewCartService(mockRepo, DefaultBankDetails)
	ctx := context.TODO()
	items := []domain.CartItem{item("a", "$120.50"), item("b", "$9.49")}

	mockRepo.On("GetItems", ctx, "p1").Return(items, nil).Once()
	summary, err := svc.Checkout(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "$129.99", summary.Total)
	assert.Equal(t, "1234567890", summary.Bank.AccountNumber)
	assert.Contains(t, summary.FollowUp, "08036122868")
	mockRepo.AssertNotCalled(t, "DeleteItems", mock.Anything, mock.Anything)

	mockRepo.On("GetItems", ctx, "p1").Return(items, nil).Once()
	cart, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Count, "checkout does not clear the cart")

	mockRepo.On("DeleteItems", ctx, "p1").Return(nil).Once()
	assert.NoError(t, svc.Clear(ctx, "p1"))
	mockRepo.AssertExpectations(t)
}
