// internal/models/cart.go
package models

// CartItem is one basket line. Size and PackID are mutually exclusive.
type CartItem struct {
	ProductID    string   `json:"productId"`
	VariantName  string   `json:"variantName"`
	Size         string   `json:"size,omitempty"`
	PackID       string   `json:"packId,omitempty"`
	Quantity     int      `json:"quantity"`
	SpecialPrice *float64 `json:"specialPrice,omitempty"`
}

// CartKey identifies a line for merging duplicates.
type CartKey struct {
	ProductID   string
	VariantName string
	Option      string // size or pack id
}

func NewCartKey(productID, variantName, size, packID string) CartKey {
	option := size
	if packID != "" {
		option = packID
	}
	return CartKey{ProductID: productID, VariantName: variantName, Option: option}
}

func (c CartItem) Key() CartKey {
	return NewCartKey(c.ProductID, c.VariantName, c.Size, c.PackID)
}
