package models

import (
	"fmt"
	"time"
)

// Product mirrors one row of the authoritative product catalog.
type Product struct {
	ProductID     int64      `json:"productId"`
	Status        int        `json:"status"`
	BrandID       int        `json:"brandId"`
	EbayID        int        `json:"ebayId"`
	ModelNumber   string     `json:"modelNumber"`
	SKU           string     `json:"sku"`
	DateAvailable string     `json:"dateAvailable,omitempty"`
	QtyPreorder   int        `json:"qtyPreorder"`
	Barcode       string     `json:"barcode,omitempty"`
	Weight        float64    `json:"weight"`
	WeightClassID int        `json:"weightClassId"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	CreatedBy     int        `json:"createdBy"`
	UpdatedBy     int        `json:"updatedBy"`

	// local store only
	SyncStatus SyncStatus `json:"syncStatus,omitempty"`
	LastSync   *time.Time `json:"lastSync,omitempty"`
}

// Key is the natural key used in diagnostics and local paths.
func (p Product) Key() string {
	return fmt.Sprintf("%d", p.ProductID)
}

// ProductBarcode is keyed by (productId, barcode).
type ProductBarcode struct {
	ProductID int64  `json:"productId"`
	Barcode   string `json:"barcode"`
	Status    int    `json:"status"`

	SyncStatus SyncStatus `json:"syncStatus,omitempty"`
	LastSync   *time.Time `json:"lastSync,omitempty"`
}

func (b ProductBarcode) Key() string {
	return fmt.Sprintf("%d/%s", b.ProductID, b.Barcode)
}

// ProductDescription is keyed by (productId, siteId, languageId).
type ProductDescription struct {
	ProductID     int64      `json:"productId"`
	SiteID        int        `json:"siteId"`
	LanguageID    int        `json:"languageId"`
	Name          string     `json:"name,omitempty"`
	Description   string     `json:"description,omitempty"`
	Feature       string     `json:"feature,omitempty"`
	Specification string     `json:"specification,omitempty"`
	Include       string     `json:"include,omitempty"`
	Required      string     `json:"required,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	CreatedBy     int        `json:"createdBy"`
	UpdatedBy     int        `json:"updatedBy"`

	SyncStatus SyncStatus `json:"syncStatus,omitempty"`
	LastSync   *time.Time `json:"lastSync,omitempty"`
}

func (d ProductDescription) Key() string {
	return fmt.Sprintf("%d/%d/%d", d.ProductID, d.SiteID, d.LanguageID)
}

// Order is a locally captured sale waiting to be pushed upstream.
type Order struct {
	ID            int64      `json:"id"`
	OrderNumber   string     `json:"orderNumber"`
	Total         float64    `json:"total"`
	CustomerName  string     `json:"customerName,omitempty"`
	CustomerEmail string     `json:"customerEmail,omitempty"`
	Status        string     `json:"status"`
	RemoteID      *int64     `json:"remoteId,omitempty"`
	SyncStatus    SyncStatus `json:"syncStatus,omitempty"`
	LastSync      *time.Time `json:"lastSync,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (o Order) Key() string {
	return o.OrderNumber
}

// User is a backend account able to open a session.
type User struct {
	ID           int64      `json:"userId"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Permission   Permission `json:"permission"`
	CreatedAt    time.Time  `json:"createdAt"`
}
