package port

import (
	"context"

	"storefront/internal/core/domain"
)

// Snapshot is everything the store needs to rebuild its in-memory state
// at startup: both tables plus the highest id sequence seen in each.
type Snapshot struct {
	Products      []domain.Product
	Orders        []domain.Order
	MaxProductSeq int64
	MaxOrderSeq   int64
}

type DatabaseRepository interface {
	// LoadAll reads the full persisted state at startup.
	LoadAll(ctx context.Context) (*Snapshot, error)

	// UpsertProduct inserts or fully replaces one product row.
	UpsertProduct(ctx context.Context, p domain.Product) error

	// DeleteProduct removes one product row; deleting an absent id is not
	// an error.
	DeleteProduct(ctx context.Context, id string) error

	// ReplaceProducts swaps the whole products table for the given rows,
	// atomically. A failure leaves the previous rows untouched.
	ReplaceProducts(ctx context.Context, products []domain.Product) error

	// CreateOrder persists a new order together with the stock updates of
	// the products it touched, atomically.
	CreateOrder(ctx context.Context, order domain.Order, touched []domain.Product) error
}
