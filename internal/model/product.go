package model

import "time"

// ProductStatus tells whether a catalog item can be ordered.
type ProductStatus string

const (
	ProductAvailable   ProductStatus = "Available"
	ProductUnavailable ProductStatus = "Unavailable"
)

// IsValid reports whether s is a known product status.
func (s ProductStatus) IsValid() bool {
	return s == ProductAvailable || s == ProductUnavailable
}

// Product represents an item in the catalogue.
type Product struct {
	ID        string        `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Price     int64         `json:"price" db:"price"`
	Status    ProductStatus `json:"status" db:"status"`
	Image     *string       `json:"image,omitempty" db:"image"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// ProductRequest is the payload for creating or editing a product.
type ProductRequest struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name"`
	Price  int64         `json:"price"`
	Status ProductStatus `json:"status"`
	Image  *string       `json:"image,omitempty"`
}
