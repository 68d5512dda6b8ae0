package service

import (
	"context"
	"strings"

	"github.com/ridloal/storefront-sync/internal/cart/domain"
	"github.com/ridloal/storefront-sync/internal/cart/repository"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	pDomain "github.com/ridloal/storefront-sync/internal/product/domain"
)

// DefaultBankDetails are the payment instructions shown at checkout.
var DefaultBankDetails = domain.BankDetails{
	Bank:          "Your Bank Name",
	AccountNumber: "1234567890",
	AccountName:   "OLATECH PROPERTIES AND ASSETS",
	ContactPhone:  "08036122868",
}

type CartService interface {
	Get(ctx context.Context, profileID string) (*domain.Cart, error)
	Add(ctx context.Context, profileID string, item domain.CartItem) (int, error)
	Remove(ctx context.Context, profileID string, index int) (*domain.Cart, error)
	Checkout(ctx context.Context, profileID string) (*domain.CheckoutSummary, error)
	Clear(ctx context.Context, profileID string) error
}

type cartServiceImpl struct {
	repo repository.CartRepository
	bank domain.BankDetails
}

func NewCartService(repo repository.CartRepository, bank domain.BankDetails) CartService {
	return &cartServiceImpl{repo: repo, bank: bank}
}

// Total sums the parsed item prices. Malformed prices contribute zero.
func Total(items []domain.CartItem) pDomain.Price {
	total := pDomain.NewPrice(0, pDomain.DefaultCurrency)
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}

func (s *cartServiceImpl) Get(ctx context.Context, profileID string) (*domain.Cart, error) {
	items, err := s.repo.GetItems(ctx, profileID)
	if err != nil {
		logger.Error("CartSvc.Get: failed to load cart "+profileID, err)
		return nil, err
	}
	return newCart(profileID, items), nil
}

// Add appends a copy of item and returns the new badge count.
func (s *cartServiceImpl) Add(ctx context.Context, profileID string, item domain.CartItem) (int, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return 0, pDomain.NewValidationError("Cart item needs a name.", "name")
	}
	items, err := s.repo.UpdateItems(ctx, profileID, func(in []domain.CartItem) []domain.CartItem {
		return append(in, item)
	})
	if err != nil {
		logger.Error("CartSvc.Add: failed to save cart "+profileID, err)
		return 0, err
	}
	return len(items), nil
}

// Remove drops the item at index. An index outside the cart changes nothing.
func (s *cartServiceImpl) Remove(ctx context.Context, profileID string, index int) (*domain.Cart, error) {
	items, err := s.repo.UpdateItems(ctx, profileID, func(in []domain.CartItem) []domain.CartItem {
		if index < 0 || index >= len(in) {
			return in
		}
		return append(in[:index:index], in[index+1:]...)
	})
	if err != nil {
		logger.Error("CartSvc.Remove: failed to save cart "+profileID, err)
		return nil, err
	}
	return newCart(profileID, items), nil
}

// Checkout returns the payment instructions. The cart is left as it is.
func (s *cartServiceImpl) Checkout(ctx context.Context, profileID string) (*domain.CheckoutSummary, error) {
	items, err := s.repo.GetItems(ctx, profileID)
	if err != nil {
		logger.Error("CartSvc.Checkout: failed to load cart "+profileID, err)
		return nil, err
	}
	return &domain.CheckoutSummary{
		Items:        items,
		Total:        Total(items).String(),
		Instructions: "Please transfer the total amount to:",
		Bank:         s.bank,
		FollowUp:     "After payment, please contact us at " + s.bank.ContactPhone + " with your transaction reference.",
	}, nil
}

func (s *cartServiceImpl) Clear(ctx context.Context, profileID string) error {
	return s.repo.DeleteItems(ctx, profileID)
}

func newCart(profileID string, items []domain.CartItem) *domain.Cart {
	return &domain.Cart{
		ProfileID: profileID,
		Items:     items,
		Total:     Total(items).String(),
		Count:     len(items),
	}
}
