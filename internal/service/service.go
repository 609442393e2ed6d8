package service

import (
	"context"

	"orderdesk/internal/model"
)

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder validates a storefront submission, snapshots pricing and
	// stores the order as received.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetByID returns the order visible to role, or (nil, nil).
	GetByID(ctx context.Context, id string, role model.Role) (*model.Order, error)

	// List returns one page of orders for the scope in params.
	List(ctx context.Context, params model.ListParams) (*model.OrderPageData, error)

	// Export returns every order matching params for a batch export.
	Export(ctx context.Context, params model.ListParams) ([]model.Order, error)

	// UpdateStatus moves an order to target on behalf of role.
	UpdateStatus(ctx context.Context, id, target string, role model.Role) (*model.Order, error)

	// Delete removes an order.
	Delete(ctx context.Context, id string) error

	// Summary aggregates orders for the dashboard over the last days days.
	Summary(ctx context.Context, days int) (*model.Summary, error)
}

// ProductService defines operations for catalogue management.
type ProductService interface {
	List(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

// InquiryService stores and lists storefront contact messages.
type InquiryService interface {
	Create(ctx context.Context, req *model.InquiryRequest) (*model.Inquiry, error)
	List(ctx context.Context, page, limit int) ([]model.Inquiry, int, error)
}

// AuthService signs staff in and verifies their sessions.
type AuthService interface {
	// Login checks credentials and issues a session.
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)

	// Authenticate verifies a bearer token.
	Authenticate(token string) (model.Session, error)

	// Bootstrap creates or refreshes the configured staff accounts.
	Bootstrap(ctx context.Context, accounts []StaffAccount) error
}

// StaffAccount is a staff login seeded from configuration.
type StaffAccount struct {
	Username string
	Password string
	Role     model.Role
}
