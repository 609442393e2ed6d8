package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"orderdesk/internal/listing"
	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxInquiryLength bounds a contact message in characters.
const MaxInquiryLength = 2000

type inquiryService struct {
	repo   repository.InquiryRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewInquiryService creates a new inquiry service.
func NewInquiryService(repo repository.InquiryRepository, logger zerolog.Logger) InquiryService {
	return &inquiryService{
		repo:   repo,
		logger: logger.With().Str("service", "inquiry").Logger(),
		now:    time.Now,
	}
}

func (s *inquiryService) Create(ctx context.Context, req *model.InquiryRequest) (*model.Inquiry, error) {
	if req == nil {
		return nil, model.NewValidationError("message is required")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, model.NewValidationError("message is required")
	}
	if utf8.RuneCountInString(message) > MaxInquiryLength {
		return nil, model.NewValidationError(fmt.Sprintf("message cannot exceed %d characters", MaxInquiryLength))
	}

	inquiry := &model.Inquiry{
		ID:        uuid.NewString(),
		Message:   message,
		Name:      trimOptional(req.Name),
		Contact:   trimOptional(req.Contact),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	s.logger.Info().Str("inquiry_id", inquiry.ID).Msg("inquiry received")

	return inquiry, nil
}

func (s *inquiryService) List(ctx context.Context, page, limit int) ([]model.Inquiry, int, error) {
	if page < 1 {
		page = 1
	}
	limit = listing.NormalizeLimit(limit)

	items, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list inquiries")
		return nil, 0, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return items, total, nil
}
