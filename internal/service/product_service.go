package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/rs/zerolog"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
		now:         time.Now,
	}
}

// List retrieves the catalogue.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrNotFound
	}

	return product, nil
}

// Create adds a product. An empty ID is derived from the name.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("product request is required")
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = Slugify(req.Name)
	}
	if !slugPattern.MatchString(id) {
		return nil, model.NewValidationError("product id must be lowercase letters, digits and dashes")
	}

	product, err := s.build(id, req)
	if err != nil {
		return nil, err
	}
	product.CreatedAt = product.UpdatedAt

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", product.ID).Msg("product created")

	return product, nil
}

// Update overwrites a product's editable fields.
func (s *productService) Update(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("product request is required")
	}

	product, err := s.build(id, req)
	if err != nil {
		return nil, err
	}

	found, err := s.productRepo.Update(ctx, product)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !found {
		return nil, model.ErrNotFound
	}

	s.logger.Info().Str("product_id", id).Str("status", string(product.Status)).Msg("product updated")

	return product, nil
}

// Delete removes a product. Orders keep their product reference.
func (s *productService) Delete(ctx context.Context, id string) error {
	found, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !found {
		return model.ErrNotFound
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")

	return nil
}

func (s *productService) build(id string, req *model.ProductRequest) (*model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if req.Price < 0 {
		return nil, model.NewValidationError("price cannot be negative")
	}

	status := req.Status
	if status == "" {
		status = model.ProductAvailable
	}
	if !status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("unknown product status %q", req.Status))
	}

	return &model.Product{
		ID:        id,
		Name:      name,
		Price:     req.Price,
		Status:    status,
		Image:     trimOptional(req.Image),
		UpdatedAt: s.now().UTC(),
	}, nil
}

// Slugify turns a product name into an id such as "herbal-cream".
func Slugify(name string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
