package repository

import (
	"context"
	"sync"

	"github.com/ridloal/storefront-sync/internal/product/domain"
)

// ProductStore is the contract both backings satisfy identically. Lists are ordered
// newest-created first. Failures are *domain.StoreError or *domain.NotFoundError.
type ProductStore interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	GetByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
	Add(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	Ping(ctx context.Context) error
}

// Subscriber is the optional change-notification capability. The callback carries no
// payload: it only means "something changed, re-fetch".
type Subscriber interface {
	Subscribe(ctx context.Context, onChange func()) (*Subscription, error)
	Unsubscribe(sub *Subscription)
}

// Subscription is the handle returned by Subscribe. Closing it more than once is safe.
type Subscription struct {
	once sync.Once
	stop func()
}

func NewSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop}
}

func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}
