package repository

import (
	"context"
	"errors"
	"fmt"

	"orderdesk/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type staffRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStaffRepository creates a new PostgreSQL-backed staff repository.
func NewStaffRepository(pool *pgxpool.Pool, logger zerolog.Logger) StaffRepository {
	return &staffRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "staff").Logger(),
	}
}

func (r *staffRepository) Upsert(ctx context.Context, s *model.Staff) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role`,
		s.Username, s.PasswordHash, string(s.Role), s.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("username", s.Username).Msg("failed to upsert staff")
		return fmt.Errorf("failed to upsert staff: %w", err)
	}
	return nil
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*model.Staff, error) {
	var (
		s    model.Staff
		role string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT username, password_hash, role, created_at FROM staff WHERE username = $1`, username,
	).Scan(&s.Username, &s.PasswordHash, &role, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("username", username).Msg("staff not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("username", username).Msg("failed to query staff")
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	s.Role = model.Role(role)
	return &s, nil
}
