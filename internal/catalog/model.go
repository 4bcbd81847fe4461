// Package catalog holds the master data the variant engine builds on:
// products, size and color labels, and the store registry.
package catalog

import "time"

// Product is a product family identified by a user-assigned code.
type Product struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Cost      float64   `json:"cost"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SizeLabel is a catalog size entry. Variants reference sizes by id, never by
// embedded name, so renaming a size does not orphan variants.
type SizeLabel struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

// ColorLabel is a catalog color entry.
type ColorLabel struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Hex      string `json:"hex"`
	IsActive bool   `json:"is_active"`
}

// Store is a point-of-sale location holding its own inventory.
type Store struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ListFilters narrows catalog listings.
type ListFilters struct {
	Search   string
	IsActive *bool
	Limit    int
	Offset   int
}
