// internal/models/sale.go
package models

import "time"

// SaleLineItem is a price snapshot, not a live product reference.
type SaleLineItem struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	VariantName  string  `json:"variantName"`
	Size         string  `json:"size,omitempty"`
	PackName     string  `json:"packName,omitempty"`
	Quantity     int     `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
}

type SaleRecord struct {
	ID               string         `json:"id"`
	SalespersonID    string         `json:"salespersonId"`
	BrandOwnerID     string         `json:"brandOwnerId"`
	Items            []SaleLineItem `json:"items"`
	TotalAmount      float64        `json:"totalAmount"`
	CommissionAmount float64        `json:"commissionAmount"`
	Timestamp        time.Time      `json:"timestamp"`
}
