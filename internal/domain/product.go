package domain

import "time"

// StockStatus is the catalog's coarse availability flag for a product,
// independent of any reservations held against it.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StockStatusBackorder  StockStatus = "ON_BACKORDER"
)

// Product is the catalog view this core consumes. On-hand stock may be
// negative transiently before the catalog corrects it.
type Product struct {
	ID                int
	Name              string
	OnHand            int
	ManagesStock      bool
	BackordersAllowed bool
	StockStatus       StockStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StockGuarded reports whether stock checks apply to this product at all.
// When backorders are allowed or stock is not managed, every checkpoint
// passes through unchanged.
func (p Product) StockGuarded() bool {
	return p.ManagesStock && !p.BackordersAllowed
}
