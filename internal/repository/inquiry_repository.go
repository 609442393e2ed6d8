package repository

import (
	"context"
	"fmt"

	"orderdesk/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type inquiryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInquiryRepository creates a new PostgreSQL-backed inquiry repository.
func NewInquiryRepository(pool *pgxpool.Pool, logger zerolog.Logger) InquiryRepository {
	return &inquiryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "inquiry").Logger(),
	}
}

func (r *inquiryRepository) Create(ctx context.Context, in *model.Inquiry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO inquiries (id, message, name, contact, created_at) VALUES ($1, $2, $3, $4, $5)`,
		in.ID, in.Message, in.Name, in.Contact, in.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("inquiry_id", in.ID).Msg("failed to create inquiry")
		return fmt.Errorf("failed to create inquiry: %w", err)
	}
	return nil
}

func (r *inquiryRepository) List(ctx context.Context, limit, offset int) ([]model.Inquiry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM inquiries`).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count inquiries")
		return nil, 0, fmt.Errorf("failed to count inquiries: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, message, name, contact, created_at
		FROM inquiries
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query inquiries")
		return nil, 0, fmt.Errorf("failed to query inquiries: %w", err)
	}
	defer rows.Close()

	inquiries := []model.Inquiry{}
	for rows.Next() {
		var in model.Inquiry
		if err := rows.Scan(&in.ID, &in.Message, &in.Name, &in.Contact, &in.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		inquiries = append(inquiries, in)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating inquiries: %w", err)
	}

	return inquiries, total, nil
}
