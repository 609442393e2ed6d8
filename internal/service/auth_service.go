package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orderdesk/internal/auth"
	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/rs/zerolog"
)

type authService struct {
	staffRepo repository.StaffRepository
	tokens    *auth.TokenIssuer
	logger    zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(staffRepo repository.StaffRepository, tokens *auth.TokenIssuer, logger zerolog.Logger) AuthService {
	return &authService{
		staffRepo: staffRepo,
		tokens:    tokens,
		logger:    logger.With().Str("service", "auth").Logger(),
	}
}

// Login checks credentials. Unknown usernames and wrong passwords fail the
// same way.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	if req == nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, model.NewValidationError("username and password are required")
	}
	username := strings.TrimSpace(req.Username)

	staff, err := s.staffRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up staff: %w", err)
	}
	if staff == nil {
		s.logger.Warn().Str("username", username).Msg("login for unknown user")
		return nil, model.ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(staff.PasswordHash, req.Password)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("stored password hash is unusable")
		return nil, err
	}
	if !ok {
		s.logger.Warn().Str("username", username).Msg("login with wrong password")
		return nil, model.ErrInvalidCredentials
	}

	session, err := s.tokens.Issue(staff.Username, staff.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", staff.Username).Str("role", string(staff.Role)).Msg("staff signed in")

	return &session, nil
}

func (s *authService) Authenticate(token string) (model.Session, error) {
	return s.tokens.Parse(token)
}

// Bootstrap upserts each account. Accounts without a password are skipped
// so an unset environment variable never creates an open login.
func (s *authService) Bootstrap(ctx context.Context, accounts []StaffAccount) error {
	for _, a := range accounts {
		if a.Username == "" || a.Password == "" {
			s.logger.Debug().Str("username", a.Username).Msg("skipping staff account without password")
			continue
		}
		if !a.Role.IsStaff() {
			return fmt.Errorf("staff account %q has non-staff role %q", a.Username, a.Role)
		}

		hash, err := auth.HashPassword(a.Password)
		if err != nil {
			return err
		}
		staff := &model.Staff{
			Username:     a.Username,
			PasswordHash: hash,
			Role:         a.Role,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.staffRepo.Upsert(ctx, staff); err != nil {
			return err
		}

		s.logger.Info().Str("username", a.Username).Str("role", string(a.Role)).Msg("staff account ready")
	}
	return nil
}
