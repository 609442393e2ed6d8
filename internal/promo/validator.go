package promo

import (
	"context"
	"fmt"

	"orderdesk/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ValidatorConfig holds the code lists and the quorum a code must reach.
type ValidatorConfig struct {
	Files []string

	// MinMatchCount is how many lists must contain a code. Defaults to 2.
	MinMatchCount int
}

type validator struct {
	sets          []*Set
	minMatchCount int
	logger        zerolog.Logger
}

// NewValidator loads every configured list concurrently. Any load failure
// fails the whole validator.
func NewValidator(ctx context.Context, cfg ValidatorConfig, loader Loader, logger zerolog.Logger) (Validator, error) {
	if cfg.MinMatchCount < 1 {
		cfg.MinMatchCount = 2
	}
	if cfg.MinMatchCount > len(cfg.Files) {
		return nil, fmt.Errorf("min match count %d exceeds %d promo files", cfg.MinMatchCount, len(cfg.Files))
	}

	logger = logger.With().Str("component", "promo-validator").Logger()
	logger.Info().
		Int("file_count", len(cfg.Files)).
		Int("min_match_count", cfg.MinMatchCount).
		Msg("initialising promo validator")

	sets := make([]*Set, len(cfg.Files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range cfg.Files {
		g.Go(func() error {
			set, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load promo file %s: %w", path, err)
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("failed to initialise promo validator")
		return nil, err
	}

	total := 0
	for _, s := range sets {
		total += s.Size()
	}
	logger.Info().Int("total_codes", total).Msg("promo validator initialised")

	return &validator{
		sets:          sets,
		minMatchCount: cfg.MinMatchCount,
		logger:        logger,
	}, nil
}

func (v *validator) Validate(ctx context.Context, code string) error {
	code = Normalize(code)
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		v.logger.Debug().Int("length", len(code)).Msg("promo code length invalid")
		return model.ErrInvalidPromoLength
	}

	matches := v.countMatches(ctx, code)
	if matches < v.minMatchCount {
		v.logger.Debug().
			Str("promo_code", code).
			Int("match_count", matches).
			Msg("promo code not found in enough lists")
		return model.ErrInvalidPromoCode
	}

	return nil
}

// countMatches checks every list concurrently and stops as soon as the
// quorum is reached or can no longer be reached.
func (v *validator) countMatches(ctx context.Context, code string) int {
	results := make(chan bool, len(v.sets))
	done := make(chan struct{})
	defer close(done)

	for _, s := range v.sets {
		go func(s *Set) {
			select {
			case <-done:
				return
			default:
			}
			results <- s.Contains(code)
		}(s)
	}

	matches, checked := 0, 0
	for checked < len(v.sets) {
		select {
		case found := <-results:
			checked++
			if found {
				matches++
			}
			if matches >= v.minMatchCount || matches+len(v.sets)-checked < v.minMatchCount {
				return matches
			}
		case <-ctx.Done():
			return matches
		}
	}
	return matches
}

func (v *validator) Close() error {
	v.sets = nil
	v.logger.Info().Msg("promo validator closed")
	return nil
}
