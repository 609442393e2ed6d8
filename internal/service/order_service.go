package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"orderdesk/internal/listing"
	"orderdesk/internal/model"
	"orderdesk/internal/promo"
	"orderdesk/internal/repository"
	"orderdesk/internal/workflow"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxQuantity caps a single order.
const MaxQuantity = 1000

// DefaultSummaryDays is the dashboard window when none is requested.
const DefaultSummaryDays = 7

// Pricing holds the values snapshotted onto new orders.
type Pricing struct {
	DeliveryCharge int64
	PromoDiscount  int64
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	validator   promo.Validator
	pricing     Pricing
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service. validator may be nil, in
// which case every promo code is rejected.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	validator promo.Validator,
	pricing Pricing,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		validator:   validator,
		pricing:     pricing,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// CreateOrder validates and stores a storefront submission.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	product, err := s.resolveProduct(ctx, strings.TrimSpace(req.Product))
	if err != nil {
		return nil, err
	}
	if product == nil {
		s.logger.Warn().Str("product", req.Product).Msg("unknown product")
		return nil, model.NewValidationError("unknown product " + req.Product)
	}
	if product.Status != model.ProductAvailable {
		s.logger.Warn().Str("product_id", product.ID).Msg("product unavailable")
		return nil, model.ErrProductUnavailable
	}

	var discount int64
	var promoCode *string
	if req.PromoCode != nil && strings.TrimSpace(*req.PromoCode) != "" {
		code := promo.Normalize(*req.PromoCode)
		if s.validator == nil {
			s.logger.Warn().Msg("promo code submitted while promos are disabled")
			return nil, model.ErrInvalidPromoCode
		}
		if err := s.validator.Validate(ctx, code); err != nil {
			s.logger.Warn().Str("promo_code", code).Err(err).Msg("invalid promo code")
			return nil, err
		}
		discount = s.pricing.PromoDiscount
		promoCode = &code
	}

	now := s.now().UTC()
	price := product.Price
	delivery := s.pricing.DeliveryCharge
	order := &model.Order{
		ID:             uuid.NewString(),
		FullName:       strings.TrimSpace(req.FullName),
		Address:        strings.TrimSpace(req.Address),
		Mobile:         strings.TrimSpace(req.Mobile),
		Email:          trimOptional(req.Email),
		Product:        product.ID,
		Quantity:       req.Quantity,
		Status:         model.StatusReceived,
		Price:          &price,
		DeliveryCharge: &delivery,
		Discount:       &discount,
		PromoCode:      promoCode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("product_id", product.ID).
		Int("quantity", order.Quantity.Int()).
		Msg("order created successfully")

	return order, nil
}

// resolveProduct looks the product up by id first, then by name.
func (s *orderService) resolveProduct(ctx context.Context, ref string) (*model.Product, error) {
	p, err := s.productRepo.GetByID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if p != nil {
		return p, nil
	}
	p, err = s.productRepo.GetByName(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	return p, nil
}

// GetByID returns an order. Couriers only see orders handed to a courier.
func (s *orderService) GetByID(ctx context.Context, id string, role model.Role) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || !visibleTo(order.Status, role) {
		return nil, nil
	}
	return order, nil
}

// List returns one page. Page and limit are normalised, never rejected.
func (s *orderService) List(ctx context.Context, params model.ListParams) (*model.OrderPageData, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	params.Limit = listing.NormalizeLimit(params.Limit)
	if params.Scope == "" {
		params.Scope = model.ScopeAdmin
	}
	if params.Scope == model.ScopeCourier && params.Status != "" && !slices.Contains(model.CourierStatuses, params.Status) {
		return &model.OrderPageData{Orders: []model.Order{}, Page: params.Page, Limit: params.Limit}, nil
	}

	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPageData{
		Orders: orders,
		Total:  total,
		Page:   params.Page,
		Limit:  params.Limit,
	}, nil
}

// Export returns all orders matching the filter.
func (s *orderService) Export(ctx context.Context, params model.ListParams) ([]model.Order, error) {
	orders, err := s.orderRepo.Export(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to export orders")
		return nil, fmt.Errorf("failed to export orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus runs the transition engine against the locked row, so
// concurrent changes to one order serialise.
func (s *orderService) UpdateStatus(ctx context.Context, id, target string, role model.Role) (*model.Order, error) {
	to, err := workflow.ParseTarget(target)
	if err != nil {
		s.logger.Warn().Str("order_id", id).Str("target", target).Msg("unknown target status")
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	current, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if current == nil || !visibleTo(current.Status, role) {
		return nil, model.ErrNotFound
	}

	updated, err := workflow.ApplyTransition(*current, to, role)
	if err != nil {
		s.logger.Warn().
			Str("order_id", id).
			Str("from", string(current.Status)).
			Str("to", string(to)).
			Str("role", string(role)).
			Msg("status transition rejected")
		return nil, err
	}
	if updated.Status == current.Status {
		return current, nil
	}

	updated.UpdatedAt = s.now().UTC()
	if err := s.orderRepo.UpdateStatus(ctx, tx, id, updated.Status, updated.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	committed = true

	s.logger.Info().
		Str("order_id", id).
		Str("from", string(current.Status)).
		Str("to", string(updated.Status)).
		Str("role", string(role)).
		Msg("order status updated")

	return &updated, nil
}

// Delete removes an order.
func (s *orderService) Delete(ctx context.Context, id string) error {
	deleted, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !deleted {
		return model.ErrNotFound
	}
	s.logger.Info().Str("order_id", id).Msg("order deleted")
	return nil
}

// Summary aggregates orders; days outside 1..365 falls back to the default.
func (s *orderService) Summary(ctx context.Context, days int) (*model.Summary, error) {
	if days < 1 || days > 365 {
		days = DefaultSummaryDays
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	summary, err := s.orderRepo.Summary(ctx, since)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build summary")
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return summary, nil
}

// validateOrderRequest checks a storefront submission field by field.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewValidationError("order request is required")
	}

	required := []struct{ field, value string }{
		{"fullName", req.FullName},
		{"address", req.Address},
		{"mobile", req.Mobile},
		{"product", req.Product},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return model.NewValidationError(r.field + " is required")
		}
	}

	if len(strings.TrimSpace(req.Mobile)) > 32 {
		return model.NewValidationError("mobile is too long")
	}

	if email := trimOptional(req.Email); email != nil && !strings.Contains(*email, "@") {
		return model.NewValidationError("email is not valid")
	}

	if req.Quantity < 1 {
		s.logger.Warn().Int("quantity", req.Quantity.Int()).Msg("invalid quantity")
		return model.ErrInvalidQuantity
	}
	if req.Quantity > MaxQuantity {
		return model.NewValidationError(fmt.Sprintf("quantity cannot exceed %d", MaxQuantity))
	}

	if req.Status != "" {
		status, err := model.ParseStatus(req.Status)
		if err != nil {
			return err
		}
		if status != model.StatusReceived {
			return model.NewValidationError("new orders start as " + string(model.StatusReceived))
		}
	}

	return nil
}

// visibleTo hides orders that have not been handed to a courier from couriers.
func visibleTo(status model.Status, role model.Role) bool {
	if role == model.RoleCourier {
		return slices.Contains(model.CourierStatuses, status)
	}
	return true
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

