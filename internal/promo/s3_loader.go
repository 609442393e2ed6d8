package promo

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads gzipped code lists from an S3 bucket.
type S3Loader struct {
	client ObjectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader builds a loader from the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (*S3Loader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	l := NewS3LoaderWithClient(s3.NewFromConfig(cfg), bucket, logger)
	l.logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 loader initialised")
	return l, nil
}

// NewS3LoaderWithClient wraps an existing client.
func NewS3LoaderWithClient(client ObjectGetter, bucket string, logger zerolog.Logger) *S3Loader {
	return &S3Loader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "s3-promo-loader").Logger(),
	}
}

// Load reads the object stored under key.
func (l *S3Loader) Load(ctx context.Context, key string) (*Set, error) {
	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", key).
		Msg("loading promo file from S3")

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	set, err := readCodes(ctx, out.Body)
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", key).
			Msg("failed to read promo file from S3")
		return nil, fmt.Errorf("failed to read promo file from S3 %s: %w", key, err)
	}

	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", key).
		Int("codes_loaded", set.Size()).
		Msg("promo file loaded from S3")

	return set, nil
}

// FallbackLoader tries the primary (S3) loader with a key prefix and falls
// back to the local loader with the bare path.
type FallbackLoader struct {
	primary Loader
	local   Loader
	prefix  string
	logger  zerolog.Logger
}

// NewFallbackLoader creates a FallbackLoader. A nil primary means local only.
func NewFallbackLoader(primary, local Loader, prefix string, logger zerolog.Logger) *FallbackLoader {
	return &FallbackLoader{
		primary: primary,
		local:   local,
		prefix:  prefix,
		logger:  logger.With().Str("component", "fallback-loader").Logger(),
	}
}

// Load implements Loader.
// The S3 key is the prefix joined with the file's base name.
func (l *FallbackLoader) Load(ctx context.Context, path string) (*Set, error) {
	if l.primary != nil {
		key := l.prefix + filepath.Base(path)

		set, err := l.primary.Load(ctx, key)
		if err == nil {
			return set, nil
		}

		l.logger.Warn().
			Err(err).
			Str("s3_key", key).
			Msg("failed to load from S3, falling back to local file system")
	}

	return l.local.Load(ctx, path)
}
