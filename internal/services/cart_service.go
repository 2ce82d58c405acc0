// internal/services/cart_service.go
package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/store"
	"github.com/javajoker/reelshop/internal/utils"
)

type CartService struct {
	store   *store.Store
	metrics *metrics.AppMetrics
	now     Clock
}

type AddToCartRequest struct {
	ProductID    string   `json:"productId" validate:"required"`
	VariantName  string   `json:"variantName" validate:"required"`
	Size         string   `json:"size,omitempty" validate:"excluded_with=PackID"`
	PackID       string   `json:"packId,omitempty"`
	SpecialPrice *float64 `json:"specialPrice,omitempty" validate:"omitempty,gte=0"`
}

type UpdateQuantityRequest struct {
	ProductID   string `json:"productId" validate:"required"`
	VariantName string `json:"variantName" validate:"required"`
	Size        string `json:"size,omitempty"`
	PackID      string `json:"packId,omitempty"`
	Quantity    int    `json:"quantity"`
}

// CartLine is a cart item joined with its product for display.
type CartLine struct {
	models.CartItem
	ProductName string             `json:"productName"`
	Creator     models.UserSummary `json:"creator"`
	PackName    string             `json:"packName,omitempty"`
	UnitPrice   float64            `json:"unitPrice"`
	LineTotal   float64            `json:"lineTotal"`
	Missing     bool               `json:"missing,omitempty"`
}

// BasketGroup is the part of the cart sold by one creator. Checkout
// works per group.
type BasketGroup struct {
	Creator  models.UserSummary `json:"creator"`
	Lines    []CartLine         `json:"lines"`
	Subtotal float64            `json:"subtotal"`
}

func NewCartService(s *store.Store, m *metrics.AppMetrics, now Clock) *CartService {
	return &CartService{store: s, metrics: m, now: now}
}

// AddToCart merges into an existing line with the same identity or appends a
// new line with quantity 1. A supplied special price replaces the stored one.
// In public mode the parallel public cart is used and the basket opens.
func (s *CartService) AddToCart(req *AddToCartRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var added models.CartItem
	err := s.store.Update("cart.add", func(st *store.AppState) error {
		item, err := addToCart(st, req)
		if err != nil {
			return err
		}
		added = item
		if st.PublicMode {
			st.Navigation.Push(navigation.ViewBasket, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// addToCart validates the option against the product and applies the merge
// to the active cart. It mutates nothing when it fails.
func addToCart(st *store.AppState, req *AddToCartRequest) (models.CartItem, error) {
	product := st.Product(req.ProductID)
	if product == nil {
		return models.CartItem{}, ErrProductNotFound
	}
	if product.Variant(req.VariantName) == nil {
		return models.CartItem{}, ErrVariantNotFound
	}
	if err := checkOption(product, req.Size, req.PackID); err != nil {
		return models.CartItem{}, err
	}

	cart := st.ActiveCart()
	key := models.NewCartKey(req.ProductID, req.VariantName, req.Size, req.PackID)
	for i := range *cart {
		line := &(*cart)[i]
		if line.Key() != key {
			continue
		}
		line.Quantity++
		if req.SpecialPrice != nil {
			price := *req.SpecialPrice
			line.SpecialPrice = &price
		}
		return *line, nil
	}

	item := models.CartItem{
		ProductID:   req.ProductID,
		VariantName: req.VariantName,
		Size:        req.Size,
		PackID:      req.PackID,
		Quantity:    1,
	}
	if req.SpecialPrice != nil {
		price := *req.SpecialPrice
		item.SpecialPrice = &price
	}
	*cart = append(*cart, item)
	return item, nil
}

// checkOption enforces that a wholesale product is bought by pack and any
// other product by one of its sizes.
func checkOption(product *models.Product, size, packID string) error {
	if packID != "" {
		if size != "" || !product.IsWholesale || product.Pack(packID) == nil {
			return ErrInvalidOption
		}
		return nil
	}
	if product.IsWholesale {
		return ErrInvalidOption
	}
	if len(product.Sizes) == 0 {
		return nil
	}
	for _, s := range product.Sizes {
		if s == size {
			return nil
		}
	}
	return ErrInvalidOption
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (s *CartService) UpdateQuantity(req *UpdateQuantityRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	key := models.NewCartKey(req.ProductID, req.VariantName, req.Size, req.PackID)
	return s.store.Update("cart.update_quantity", func(st *store.AppState) error {
		cart := st.ActiveCart()
		for i := range *cart {
			if (*cart)[i].Key() != key {
				continue
			}
			if req.Quantity <= 0 {
				*cart = append((*cart)[:i:i], (*cart)[i+1:]...)
			} else {
				(*cart)[i].Quantity = req.Quantity
			}
			return nil
		}
		return ErrCartLineNotFound
	})
}

// Lines returns the active cart joined with product data.
func (s *CartService) Lines() []CartLine {
	var lines []CartLine
	s.store.View(func(st *store.AppState) {
		cart := st.ActiveCart()
		lines = make([]CartLine, 0, len(*cart))
		for _, item := range *cart {
			lines = append(lines, describeLine(st, item))
		}
	})
	return lines
}

// Basket groups the active cart by creator, in first-seen order.
func (s *CartService) Basket() []BasketGroup {
	var groups []BasketGroup
	s.store.View(func(st *store.AppState) {
		index := make(map[string]int)
		totals := make(map[string]decimal.Decimal)
		for _, item := range *st.ActiveCart() {
			line := describeLine(st, item)
			creatorID := line.Creator.ID
			i, ok := index[creatorID]
			if !ok {
				i = len(groups)
				index[creatorID] = i
				groups = append(groups, BasketGroup{Creator: line.Creator})
			}
			groups[i].Lines = append(groups[i].Lines, line)
			totals[creatorID] = totals[creatorID].Add(lineTotal(st, item))
		}
		for i := range groups {
			groups[i].Subtotal = totals[groups[i].Creator.ID].Round(2).InexactFloat64()
		}
	})
	return groups
}

// Subtotal prices items against the current catalog.
func (s *CartService) Subtotal(items []models.CartItem) float64 {
	var total decimal.Decimal
	s.store.View(func(st *store.AppState) {
		total = subtotal(st, items)
	})
	return total.Round(2).InexactFloat64()
}

// unitPrice resolves special price, then pack price, then base price. It
// reports false when the product no longer exists.
func unitPrice(st *store.AppState, item models.CartItem) (decimal.Decimal, bool) {
	if item.SpecialPrice != nil {
		return decimal.NewFromFloat(*item.SpecialPrice), true
	}
	product := st.Product(item.ProductID)
	if product == nil {
		return decimal.Zero, false
	}
	if item.PackID != "" {
		if pack := product.Pack(item.PackID); pack != nil {
			return decimal.NewFromFloat(pack.Price), true
		}
	}
	return decimal.NewFromFloat(product.Price), true
}

func lineTotal(st *store.AppState, item models.CartItem) decimal.Decimal {
	if st.Product(item.ProductID) == nil {
		return decimal.Zero
	}
	price, _ := unitPrice(st, item)
	return price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func subtotal(st *store.AppState, items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(lineTotal(st, item))
	}
	return total
}

func describeLine(st *store.AppState, item models.CartItem) CartLine {
	line := CartLine{CartItem: item}
	product := st.Product(item.ProductID)
	if product == nil {
		line.Missing = true
		return line
	}
	price, _ := unitPrice(st, item)
	line.ProductName = product.Name
	line.Creator = product.Creator
	if pack := product.Pack(item.PackID); pack != nil {
		line.PackName = pack.Name
	}
	line.UnitPrice = price.Round(2).InexactFloat64()
	line.LineTotal = lineTotal(st, item).Round(2).InexactFloat64()
	return line
}

// commissionFor returns the commission owed to actor on a sale of the
// creator's goods. Only a sales rep of that creator earns one.
func commissionFor(actor *models.User, creatorID string, total decimal.Decimal) decimal.Decimal {
	if actor == nil || actor.Role != models.RoleSalesRep || actor.CompanyID != creatorID {
		return decimal.Zero
	}
	return total.Mul(decimal.NewFromFloat(actor.CommissionRate)).Div(decimal.NewFromInt(100)).Round(2)
}

func saleLineItem(st *store.AppState, item models.CartItem) models.SaleLineItem {
	line := describeLine(st, item)
	return models.SaleLineItem{
		ProductID:    item.ProductID,
		ProductName:  line.ProductName,
		VariantName:  item.VariantName,
		Size:         item.Size,
		PackName:     line.PackName,
		Quantity:     item.Quantity,
		PricePerUnit: line.UnitPrice,
	}
}

// Checkout sells every cart line of one creator. The lines leave the cart,
// the products' sales counts go up and the record joins the sales ledger.
func (s *CartService) Checkout(creatorID string) (*models.SaleRecord, error) {
	var record models.SaleRecord
	err := s.store.Update("cart.checkout", func(st *store.AppState) error {
		cart := st.ActiveCart()
		var sold, kept []models.CartItem
		for _, item := range *cart {
			product := st.Product(item.ProductID)
			if product != nil && product.Creator.ID == creatorID {
				sold = append(sold, item)
			} else {
				kept = append(kept, item)
			}
		}
		if len(sold) == 0 {
			return ErrCartEmpty
		}

		actor := st.CurrentUser()
		total := subtotal(st, sold).Round(2)
		record = models.SaleRecord{
			ID:               newID(),
			BrandOwnerID:     creatorID,
			Items:            make([]models.SaleLineItem, 0, len(sold)),
			TotalAmount:      total.InexactFloat64(),
			CommissionAmount: commissionFor(actor, creatorID, total).InexactFloat64(),
			Timestamp:        s.now(),
		}
		if actor != nil {
			record.SalespersonID = actor.ID
		}
		for _, item := range sold {
			record.Items = append(record.Items, saleLineItem(st, item))
			st.Product(item.ProductID).SalesCount += int64(item.Quantity)
		}

		*cart = kept
		st.Sales = append(st.Sales, record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSale(context.Background(), "checkout", record.TotalAmount, record.CommissionAmount)
	return &record, nil
}
