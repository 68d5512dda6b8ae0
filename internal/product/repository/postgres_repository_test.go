package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/ridloal/storefront-sync/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			*v = r.values[i].(string)
		case *time.Time:
			*v = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestScanProduct(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p, err := scanProduct(fakeRow{values: []interface{}{
		"6b1c", "Sofa", "$1,500.25", "Grey", "furniture", "https://img", created,
	}})
	require.NoError(t, err)
	assert.Equal(t, "6b1c", p.ID)
	assert.Equal(t, int64(150025), p.Price.Amount)
	assert.Equal(t, domain.CategoryFurniture, p.Category)
	assert.Equal(t, created, p.CreatedAt)

	_, err = scanProduct(fakeRow{err: errors.New("boom")})
	assert.Error(t, err)
}

func TestStoreError(t *testing.T) {
	t.Run("Missing table via pgx", func(t *testing.T) {
		err := storeError("add", &pgconn.PgError{Code: "42P01", Message: "relation \"products\" does not exist"})
		assert.ErrorIs(t, err, domain.ErrStore)
		assert.Contains(t, err.Error(), "products table does not exist")
	})

	t.Run("Missing table via lib/pq", func(t *testing.T) {
		err := storeError("add", &pq.Error{Code: "42P01"})
		assert.ErrorIs(t, err, domain.ErrStore)
		assert.Contains(t, err.Error(), "products table does not exist")
	})

	t.Run("Other failures", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := storeError("get all", cause)
		assert.ErrorIs(t, err, domain.ErrStore)
		assert.ErrorIs(t, err, cause)
	})

	assert.Equal(t, "22P02", sqlState(&pq.Error{Code: "22P02"}))
	assert.Equal(t, "", sqlState(errors.New("plain")))
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	calls := 0
	sub := NewSubscription(func() { calls++ })
	sub.Close()
	sub.Close()
	assert.Equal(t, 1, calls)

	var nilSub *Subscription
	assert.NotPanics(t, func() { nilSub.Close() })
}
