// Package integration runs the API end to end against a PostgreSQL
// container, talking to it through the orderdesk client.
package integration

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"orderdesk/internal/auth"
	"orderdesk/internal/client"
	"orderdesk/internal/database/dbtest"
	"orderdesk/internal/handler"
	"orderdesk/internal/model"
	"orderdesk/internal/repository"
	"orderdesk/internal/router"
	"orderdesk/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	adminUser     = "admin"
	adminPassword = "admin-password"
	courierUser   = "rider"
	courierPass   = "rider-password"

	// seeded by the schema
	productID    = "herbal-cream"
	productPrice = 10000
)

var testPricing = service.Pricing{DeliveryCharge: 200, PromoDiscount: 500}

// Stack is a running API backed by a test database.
type Stack struct {
	DB     *dbtest.DB
	Server *httptest.Server
	Orders service.OrderService
}

// NewStack starts a database container and serves the full router over it.
func NewStack(t *testing.T) *Stack {
	t.Helper()

	db := dbtest.New(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	productRepo := repository.NewProductRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	inquiryRepo := repository.NewInquiryRepository(db.Pool, logger)
	staffRepo := repository.NewStaffRepository(db.Pool, logger)

	tokens := auth.NewTokenIssuer("integration-secret-0123456789abcdef", time.Hour)
	authService := service.NewAuthService(staffRepo, tokens, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, nil, testPricing, logger)

	err := authService.Bootstrap(ctx, []service.StaffAccount{
		{Username: adminUser, Password: adminPassword, Role: model.RoleAdmin},
		{Username: courierUser, Password: courierPass, Role: model.RoleCourier},
	})
	require.NoError(t, err)

	policy, err := auth.NewPolicy(auth.DefaultRules)
	require.NoError(t, err)

	srv := httptest.NewServer(router.New(router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Product: handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Inquiry: handler.NewInquiryHandler(service.NewInquiryService(inquiryRepo, logger), logger),
	}, authService, policy, logger))
	t.Cleanup(srv.Close)

	return &Stack{DB: db, Server: srv, Orders: orderService}
}

// Anonymous returns a client without a session.
func (s *Stack) Anonymous() *client.Client {
	return client.New(s.Server.URL)
}

// Login returns a client signed in as username.
func (s *Stack) Login(t *testing.T, username, password string) *client.Client {
	t.Helper()

	c := s.Anonymous()
	session, err := c.Login(context.Background(), username, password)
	require.NoError(t, err)
	return c.WithSession(session)
}

// Reset removes every order.
func (s *Stack) Reset(t *testing.T) {
	t.Helper()

	_, err := s.DB.Pool.Exec(context.Background(), "TRUNCATE orders, inquiries")
	require.NoError(t, err)
}

// SeedOrders places n storefront orders named "Customer 1".."Customer n".
func (s *Stack) SeedOrders(t *testing.T, n int) []model.Order {
	t.Helper()

	orders := make([]model.Order, 0, n)
	for i := 1; i <= n; i++ {
		o, err := s.Orders.CreateOrder(context.Background(), &model.OrderRequest{
			FullName: fmt.Sprintf("Customer %d", i),
			Address:  fmt.Sprintf("%d Lake Road, Kandy", i),
			Mobile:   fmt.Sprintf("07700000%02d", i),
			Product:  productID,
			Quantity: 1,
		})
		require.NoError(t, err)
		orders = append(orders, *o)
	}
	return orders
}
