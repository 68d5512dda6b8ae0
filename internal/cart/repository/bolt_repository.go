package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ridloal/storefront-sync/internal/cart/domain"
	"github.com/ridloal/storefront-sync/internal/platform/kvstore"
	pDomain "github.com/ridloal/storefront-sync/internal/product/domain"
)

const BucketCarts = "carts"

type CartRepository interface {
	GetItems(ctx context.Context, profileID string) ([]domain.CartItem, error)
	// UpdateItems applies fn to the stored items and saves the result in one transaction.
	UpdateItems(ctx context.Context, profileID string, fn func([]domain.CartItem) []domain.CartItem) ([]domain.CartItem, error)
	DeleteItems(ctx context.Context, profileID string) error
}

type boltCartRepository struct {
	kv *kvstore.Store
}

func NewBoltCartRepository(kv *kvstore.Store) CartRepository {
	return &boltCartRepository{kv: kv}
}

// GetItems returns an empty cart for a profile that never stored one.
func (r *boltCartRepository) GetItems(ctx context.Context, profileID string) ([]domain.CartItem, error) {
	raw, err := r.kv.Get(BucketCarts, profileID)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return []domain.CartItem{}, nil
		}
		return nil, &pDomain.StoreError{Op: "get cart", Err: err}
	}
	items, err := decodeItems(raw)
	if err != nil {
		return nil, &pDomain.StoreError{Op: "get cart", Err: fmt.Errorf("cart %s: %w", profileID, err)}
	}
	return items, nil
}

func (r *boltCartRepository) UpdateItems(ctx context.Context, profileID string, fn func([]domain.CartItem) []domain.CartItem) ([]domain.CartItem, error) {
	var out []domain.CartItem
	err := r.kv.Update(func(tx *kvstore.Tx) error {
		items, err := decodeItems(tx.Get(BucketCarts, profileID))
		if err != nil {
			return err
		}
		out = fn(items)
		raw, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}
		return tx.Put(BucketCarts, profileID, raw)
	})
	if err != nil {
		return nil, &pDomain.StoreError{Op: "save cart", Err: err}
	}
	return out, nil
}

func (r *boltCartRepository) DeleteItems(ctx context.Context, profileID string) error {
	if err := r.kv.Delete(BucketCarts, profileID); err != nil {
		return &pDomain.StoreError{Op: "clear cart", Err: err}
	}
	return nil
}

func decodeItems(raw []byte) ([]domain.CartItem, error) {
	items := []domain.CartItem{}
	if raw == nil {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}
