package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/product/domain"
)

// ChangeChannel is the NOTIFY channel the products table trigger publishes on:
//
//	CREATE TRIGGER products_notify AFTER INSERT OR UPDATE OR DELETE ON products
//	FOR EACH ROW EXECUTE FUNCTION notify_products_changes();
//
// where the function runs pg_notify('products_changes', TG_OP).
const ChangeChannel = "products_changes"

const (
	sqlStateUndefinedTable  = "42P01"
	sqlStateInvalidTextRepr = "22P02" // e.g. an id that is not a valid uuid
)

const productColumns = `id, name, price, COALESCE(description, ''), category, COALESCE(image, ''), created_at`

type PostgresProductStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresProductStore returns the remote backing. dsn is used for the dedicated
// LISTEN connection behind Subscribe.
func NewPostgresProductStore(db *sql.DB, dsn string) *PostgresProductStore {
	return &PostgresProductStore{db: db, dsn: dsn}
}

var (
	_ ProductStore = (*PostgresProductStore)(nil)
	_ Subscriber   = (*PostgresProductStore)(nil)
)

func (r *PostgresProductStore) Ping(ctx context.Context) error {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM products LIMIT 1`).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error("Ping: products table check failed", err)
		return storeError("ping", err)
	}
	return nil
}

func (r *PostgresProductStore) GetAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	return r.list(ctx, "GetAll", query)
}

func (r *PostgresProductStore) GetByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	if !category.IsKnown() {
		return []domain.Product{}, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at DESC`
	return r.list(ctx, "GetByCategory", query, string(category))
}

func (r *PostgresProductStore) list(ctx context.Context, op, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error(op+": query failed", err)
		return nil, storeError(op, err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			logger.Error(op+": scan failed", err)
			return nil, storeError(op, err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		logger.Error(op+": rows iteration error", err)
		return nil, storeError(op, err)
	}
	return products, nil
}

func (r *PostgresProductStore) Add(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	query := `INSERT INTO products (name, price, description, category, image, created_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + productColumns

	row := r.db.QueryRowContext(ctx, query,
		in.Name, in.Price.String(), in.Description, string(in.Category), in.Image, time.Now().UTC())
	p, err := scanProduct(row)
	if err != nil {
		logger.Error("Add: failed to insert product", err)
		return nil, storeError("add", err)
	}
	return p, nil
}

func (r *PostgresProductStore) Update(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	query := `UPDATE products SET name = $1, price = $2, description = $3, category = $4, image = $5
              WHERE id = $6 RETURNING ` + productColumns

	row := r.db.QueryRowContext(ctx, query,
		in.Name, in.Price.String(), in.Description, string(in.Category), in.Image, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || sqlState(err) == sqlStateInvalidTextRepr {
			return nil, &domain.NotFoundError{ID: id}
		}
		logger.Error("Update: failed to update product "+id, err)
		return nil, storeError("update", err)
	}
	return p, nil
}

func (r *PostgresProductStore) Delete(ctx context.Context, id string) (*domain.Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || sqlState(err) == sqlStateInvalidTextRepr {
			return nil, &domain.NotFoundError{ID: id}
		}
		logger.Error("Delete: failed to delete product "+id, err)
		return nil, storeError("delete", err)
	}
	return p, nil
}

// Subscribe opens a LISTEN connection on ChangeChannel and calls onChange for every
// notification, and once more after each reconnect since events may have been missed.
func (r *PostgresProductStore) Subscribe(ctx context.Context, onChange func()) (*Subscription, error) {
	listener := pq.NewListener(r.dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("products listener event %d: %v", ev, err)
		}
	})
	if err := listener.Listen(ChangeChannel); err != nil {
		listener.Close()
		logger.Error("Subscribe: listen failed", err)
		return nil, storeError("subscribe", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-listener.Notify:
				if !ok {
					return
				}
				// nil notifications arrive after a reconnect
				onChange()
			}
		}
	}()

	logger.Info("Subscribed to %s", ChangeChannel)
	return NewSubscription(func() {
		close(done)
		if err := listener.Close(); err != nil {
			logger.Warn("products listener close: %v", err)
		}
	}), nil
}

func (r *PostgresProductStore) Unsubscribe(sub *Subscription) {
	sub.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p        domain.Product
		price    string
		category string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Description, &category, &p.Image, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Price = domain.ParsePrice(price)
	p.Category = domain.Category(category)
	return &p, nil
}

// sqlState extracts the SQLSTATE code. Both the pgx and lib/pq error types are checked
// so the store works with either driver registered.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func storeError(op string, err error) error {
	if sqlState(err) == sqlStateUndefinedTable {
		return &domain.StoreError{Op: op, Err: fmt.Errorf("products table does not exist: %w", err)}
	}
	return &domain.StoreError{Op: op, Err: err}
}
