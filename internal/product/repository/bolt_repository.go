package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ridloal/storefront-sync/internal/catalog"
	"github.com/ridloal/storefront-sync/internal/platform/kvstore"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/product/domain"
)

// Persisted keys of the local backing. KeyProducts holds every product in insertion
// order; the category keys hold the derived per-category arrays that independently
// loaded pages read.
const (
	BucketStorage = "storage"
	KeyProducts   = "adminProducts"
	KeyRevision   = "revision"
)

var categoryKeys = map[domain.Category]string{
	domain.CategoryFurniture:  "furnitureProducts",
	domain.CategoryProperties: "propertyProducts",
	domain.CategoryAuto:       "autoProducts",
}

// CategoryKey returns the persisted key of a category's derived array, "" for unknown
// categories.
func CategoryKey(c domain.Category) string {
	return categoryKeys[c]
}

var errNoSuchProduct = errors.New("no such product")

type BoltProductStore struct {
	kv   *kvstore.Store
	node *snowflake.Node
	now  func() time.Time
}

var _ ProductStore = (*BoltProductStore)(nil)

func NewBoltProductStore(kv *kvstore.Store) (*BoltProductStore, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	return &BoltProductStore{
		kv:   kv,
		node: node,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *BoltProductStore) Ping(ctx context.Context) error {
	if _, err := r.Revision(ctx); err != nil {
		return err
	}
	return nil
}

func (r *BoltProductStore) GetAll(ctx context.Context) ([]domain.Product, error) {
	products, err := r.read(KeyProducts)
	if err != nil {
		logger.Error("GetAll: read local products failed", err)
		return nil, &domain.StoreError{Op: "get all", Err: err}
	}
	return newestFirst(products), nil
}

// GetByCategory reads the derived category array. Records whose category is unknown never
// reach a derived array, so they are excluded here as well.
func (r *BoltProductStore) GetByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	key := CategoryKey(category)
	if key == "" {
		return []domain.Product{}, nil
	}
	products, err := r.read(key)
	if err != nil {
		logger.Error("GetByCategory: read "+key+" failed", err)
		return nil, &domain.StoreError{Op: "get by category", Err: err}
	}
	return newestFirst(products), nil
}

func (r *BoltProductStore) Add(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	p := domain.Product{
		ID:          r.node.Generate().String(),
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
		Condition:   in.Condition,
		CreatedAt:   r.now(),
	}

	err := r.mutate(func(products []domain.Product) ([]domain.Product, error) {
		return append(products, p), nil
	})
	if err != nil {
		logger.Error("Add: failed to save product", err)
		return nil, &domain.StoreError{Op: "add", Err: err}
	}
	return &p, nil
}

// Update replaces every mutable field of the record and refreshes LastModified, which
// strictly increases per record even when the clock has not moved.
func (r *BoltProductStore) Update(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	var updated domain.Product
	err := r.mutate(func(products []domain.Product) ([]domain.Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, errNoSuchProduct
		}
		modified := r.now()
		if prev := products[i].LastModified; prev != nil && !modified.After(*prev) {
			modified = prev.Add(time.Millisecond)
		}
		p := products[i]
		p.Name = in.Name
		p.Price = in.Price
		p.Category = in.Category
		p.Description = in.Description
		p.Image = in.Image
		p.Condition = in.Condition
		p.LastModified = &modified
		products[i] = p
		updated = p
		return products, nil
	})
	if err != nil {
		if errors.Is(err, errNoSuchProduct) {
			return nil, &domain.NotFoundError{ID: id}
		}
		logger.Error("Update: failed to save product "+id, err)
		return nil, &domain.StoreError{Op: "update", Err: err}
	}
	return &updated, nil
}

func (r *BoltProductStore) Delete(ctx context.Context, id string) (*domain.Product, error) {
	var removed domain.Product
	err := r.mutate(func(products []domain.Product) ([]domain.Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, errNoSuchProduct
		}
		removed = products[i]
		return append(products[:i], products[i+1:]...), nil
	})
	if err != nil {
		if errors.Is(err, errNoSuchProduct) {
			return nil, &domain.NotFoundError{ID: id}
		}
		logger.Error("Delete: failed to save products", err)
		return nil, &domain.StoreError{Op: "delete", Err: err}
	}
	return &removed, nil
}

// ReplaceAll swaps the whole collection, as a JSON import does. Records without an id or
// creation time get one; a record repeating an earlier id gets a fresh one.
func (r *BoltProductStore) ReplaceAll(ctx context.Context, products []domain.Product) error {
	next := make([]domain.Product, len(products))
	copy(next, products)
	seen := make(map[string]bool, len(next))
	for i := range next {
		if next[i].ID == "" || seen[next[i].ID] {
			next[i].ID = r.node.Generate().String()
		}
		seen[next[i].ID] = true
		if next[i].CreatedAt.IsZero() {
			next[i].CreatedAt = r.now()
		}
	}
	err := r.mutate(func([]domain.Product) ([]domain.Product, error) {
		return next, nil
	})
	if err != nil {
		logger.Error("ReplaceAll: failed to save products", err)
		return &domain.StoreError{Op: "replace all", Err: err}
	}
	return nil
}

// Revision is bumped on every successful mutation. Pollers compare it to detect writes.
func (r *BoltProductStore) Revision(ctx context.Context) (uint64, error) {
	raw, err := r.kv.Get(BucketStorage, KeyRevision)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, &domain.StoreError{Op: "revision", Err: err}
	}
	return strconv.ParseUint(string(raw), 10, 64)
}

// mutate runs fn over the stored collection and writes the result, the derived category
// arrays and the bumped revision in one transaction.
func (r *BoltProductStore) mutate(fn func([]domain.Product) ([]domain.Product, error)) error {
	return r.kv.Update(func(tx *kvstore.Tx) error {
		products := []domain.Product{}
		if raw := tx.Get(BucketStorage, KeyProducts); raw != nil {
			if err := json.Unmarshal(raw, &products); err != nil {
				return fmt.Errorf("decode %s: %w", KeyProducts, err)
			}
		}

		next, err := fn(products)
		if err != nil {
			return err
		}

		if err := putJSON(tx, KeyProducts, next); err != nil {
			return err
		}
		for category, subset := range catalog.Partition(next) {
			if err := putJSON(tx, CategoryKey(category), subset); err != nil {
				return err
			}
		}

		var rev uint64
		if raw := tx.Get(BucketStorage, KeyRevision); raw != nil {
			rev, _ = strconv.ParseUint(string(raw), 10, 64)
		}
		return tx.Put(BucketStorage, KeyRevision, []byte(strconv.FormatUint(rev+1, 10)))
	})
}

func (r *BoltProductStore) read(key string) ([]domain.Product, error) {
	raw, err := r.kv.Get(BucketStorage, key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return []domain.Product{}, nil
	}
	if err != nil {
		return nil, err
	}
	products := []domain.Product{}
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return products, nil
}

func putJSON(tx *kvstore.Tx, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return tx.Put(BucketStorage, key, raw)
}

func indexOf(products []domain.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// newestFirst orders by creation time descending. Products are stored in insertion
// order, so reversing first keeps later inserts ahead on equal timestamps.
func newestFirst(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[len(products)-1-i] = p
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
