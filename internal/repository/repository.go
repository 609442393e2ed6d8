package repository

import (
	"context"
	"time"

	"orderdesk/internal/model"

	"github.com/jackc/pgx/v5"
)

// OrderRepository defines the interface for order data access operations.
// Lookups return (nil, nil) when the order does not exist.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order.
	Create(ctx context.Context, order *model.Order) error

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// GetForUpdate reads an order inside tx and locks its row until tx ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.Order, error)

	// UpdateStatus writes a new status inside tx.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status model.Status, updatedAt time.Time) error

	// Delete removes an order, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// List returns one page of orders matching params and the unpaginated total.
	List(ctx context.Context, params model.ListParams) ([]model.Order, int, error)

	// Export returns every order matching params, ignoring Page and Limit.
	Export(ctx context.Context, params model.ListParams) ([]model.Order, error)

	// Summary aggregates counts and revenue; Daily covers orders created at
	// or after since.
	Summary(ctx context.Context, since time.Time) (*model.Summary, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves the whole catalogue ordered by name.
	List(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByName retrieves a product by case-insensitive name.
	GetByName(ctx context.Context, name string) (*model.Product, error)

	// Create inserts a product. A duplicate ID is a validation error.
	Create(ctx context.Context, product *model.Product) error

	// Update overwrites a product, reporting whether it existed.
	Update(ctx context.Context, product *model.Product) (bool, error)

	// Delete removes a product, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// InquiryRepository stores storefront contact messages.
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *model.Inquiry) error
	List(ctx context.Context, limit, offset int) ([]model.Inquiry, int, error)
}

// StaffRepository stores back-office accounts.
type StaffRepository interface {
	// Upsert creates the account or replaces its password hash and role.
	Upsert(ctx context.Context, staff *model.Staff) error

	// GetByUsername returns (nil, nil) for an unknown username.
	GetByUsername(ctx context.Context, username string) (*model.Staff, error)
}
