package promo

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	initialSetCapacity = 4096
	cancelCheckEvery   = 100_000
)

// FileLoader reads gzipped code lists from the local file system.
type FileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a file-based loader.
func NewFileLoader(logger zerolog.Logger) *FileLoader {
	return &FileLoader{
		logger: logger.With().Str("component", "promo-loader").Logger(),
	}
}

// Load reads the gzipped file at path, one code per line.
func (l *FileLoader) Load(ctx context.Context, path string) (*Set, error) {
	l.logger.Info().Str("file", path).Msg("loading promo file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open promo file")
		return nil, fmt.Errorf("failed to open promo file %s: %w", path, err)
	}
	defer file.Close()

	set, err := readCodes(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read promo file")
		return nil, fmt.Errorf("failed to read promo file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("codes_loaded", set.Size()).
		Msg("promo file loaded")

	return set, nil
}

// readCodes decompresses r and collects its non-blank lines.
func readCodes(ctx context.Context, r io.Reader) (*Set, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	set := NewSet(initialSetCapacity)
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lines := 0
	for scanner.Scan() {
		if lines%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lines++

		if line := strings.TrimSpace(scanner.Text()); line != "" {
			set.Add(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return set, nil
}
