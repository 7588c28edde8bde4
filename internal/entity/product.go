// Package entity holds the domain types shared across the pipeline stages.
package entity

import "time"

// Product is one catalog row. Code is the allocator-minted catalog code,
// unique across the whole catalog; Price stays a string because vendor
// documents carry display prices, not money amounts this system computes on.
type Product struct {
	ID                      int64     `json:"id"`
	Code                    string    `json:"code"`
	Category                string    `json:"category"`
	Description             string    `json:"description"`
	ManufacturerDescription string    `json:"manufacturer_description"`
	ProductDetails          string    `json:"product_details"`
	Price                   string    `json:"price"`
	ImageURL                string    `json:"image_url"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}
