// Package promo validates storefront promo codes against gzip-compressed code
// lists loaded from the local file system or S3.
package promo

import (
	"context"
)

// Code length bounds, in bytes after normalisation.
const (
	MinCodeLength = 8
	MaxCodeLength = 10
)

// Validator decides whether a promo code may be redeemed.
type Validator interface {
	// Validate returns model.ErrInvalidPromoLength or model.ErrInvalidPromoCode
	// when the code is rejected.
	Validate(ctx context.Context, code string) error

	// Close releases the loaded code lists.
	Close() error
}

// Loader reads one code list.
type Loader interface {
	Load(ctx context.Context, path string) (*Set, error)
}
