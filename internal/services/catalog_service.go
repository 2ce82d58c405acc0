// internal/services/catalog_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/store"
	"github.com/javajoker/reelshop/internal/utils"
)

type CatalogService struct {
	store   *store.Store
	metrics *metrics.AppMetrics
	now     Clock
}

type CreateProductRequest struct {
	Name                  string            `json:"name" validate:"required,min=2,max=120"`
	Price                 float64           `json:"price" validate:"gte=0"`
	OriginalPrice         *float64          `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	Description           string            `json:"description" validate:"max=4000"`
	Fabric                *models.Fabric    `json:"fabric,omitempty"`
	Variants              []models.Variant  `json:"variants" validate:"required,min=1,dive"`
	Sizes                 []string          `json:"sizes,omitempty"`
	SizeGuide             *models.SizeGuide `json:"sizeGuide,omitempty"`
	IsWholesale           bool              `json:"isWholesale"`
	Packs                 []models.Pack     `json:"packs,omitempty"`
	ShopTheLookProductIDs []string          `json:"shopTheLookProductIds,omitempty"`
	Category              string            `json:"category" validate:"required,max=60"`
	Tags                  []string          `json:"tags,omitempty"`
	IsFeatured            bool              `json:"isFeatured"`
}

type UpdateProductRequest struct {
	Name          *string           `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Price         *float64          `json:"price,omitempty" validate:"omitempty,gte=0"`
	OriginalPrice *float64          `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	Description   *string           `json:"description,omitempty" validate:"omitempty,max=4000"`
	Fabric        *models.Fabric    `json:"fabric,omitempty"`
	Variants      []models.Variant  `json:"variants,omitempty" validate:"omitempty,min=1,dive"`
	Sizes         []string          `json:"sizes,omitempty"`
	SizeGuide     *models.SizeGuide `json:"sizeGuide,omitempty"`
	Packs         []models.Pack     `json:"packs,omitempty"`
	Category      *string           `json:"category,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	IsFeatured    *bool             `json:"isFeatured,omitempty"`
}

type DeckRequest struct {
	Name       string   `json:"name" validate:"required,min=1,max=80"`
	MediaURLs  []string `json:"mediaUrls"`
	ProductIDs []string `json:"productIds"`
}

// FeedItem is a product decorated with the viewer's reactions.
type FeedItem struct {
	models.Product
	Liked bool `json:"liked"`
	Saved bool `json:"saved"`
}

type DeckView struct {
	Deck     models.Deck        `json:"deck"`
	Owner    models.UserSummary `json:"owner"`
	Products []models.Product   `json:"products"`
}

func NewCatalogService(s *store.Store, m *metrics.AppMetrics, now Clock) *CatalogService {
	return &CatalogService{store: s, metrics: m, now: now}
}

// CreateProduct publishes a product for the current brand owner and notifies
// their followers.
func (s *CatalogService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	notified := 0
	err := s.store.Update("product.create", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		if !me.Capabilities().CanPublish {
			return ErrForbidden
		}

		product = models.Product{
			ID:                    newID(),
			Name:                  strings.TrimSpace(req.Name),
			Price:                 req.Price,
			OriginalPrice:         req.OriginalPrice,
			Description:           req.Description,
			Fabric:                req.Fabric,
			Variants:              req.Variants,
			Sizes:                 req.Sizes,
			SizeGuide:             req.SizeGuide,
			IsWholesale:           req.IsWholesale,
			Packs:                 withPackIDs(req.Packs),
			Creator:               me.Summary(),
			ShopTheLookProductIDs: req.ShopTheLookProductIDs,
			Category:              req.Category,
			Tags:                  nonEmpty(req.Tags),
			IsFeatured:            req.IsFeatured,
			CreatedAt:             s.now(),
		}
		if err := product.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
		}

		st.Products = append(st.Products, product)
		notified = fanout(st, me, models.NotificationLink{
			Kind:        models.LinkKindProduct,
			ID:          product.ID,
			VariantName: product.Variants[0].Name,
		}, product.Name, product.CreatedAt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordFanout(context.Background(), string(models.LinkKindProduct), notified)
	return &product, nil
}

// UpdateProduct edits a product owned by the current user. The edited copy
// is validated before it replaces the stored one.
func (s *CatalogService) UpdateProduct(productID string, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var updated models.Product
	err := s.store.Update("product.update", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		product := st.Product(productID)
		if product == nil {
			return ErrProductNotFound
		}
		if product.Creator.ID != me.ID {
			return ErrForbidden
		}

		next := *product
		if req.Name != nil {
			next.Name = strings.TrimSpace(*req.Name)
		}
		if req.Price != nil {
			next.Price = *req.Price
		}
		if req.OriginalPrice != nil {
			next.OriginalPrice = req.OriginalPrice
		}
		if req.Description != nil {
			next.Description = *req.Description
		}
		if req.Fabric != nil {
			next.Fabric = req.Fabric
		}
		if req.Variants != nil {
			next.Variants = req.Variants
		}
		if req.Sizes != nil {
			next.Sizes = req.Sizes
		}
		if req.SizeGuide != nil {
			next.SizeGuide = req.SizeGuide
		}
		if req.Packs != nil {
			next.Packs = withPackIDs(req.Packs)
		}
		if req.Category != nil {
			next.Category = *req.Category
		}
		if req.Tags != nil {
			next.Tags = nonEmpty(req.Tags)
		}
		if req.IsFeatured != nil {
			next.IsFeatured = *req.IsFeatured
		}
		if err := next.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
		}

		*product = next
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func withPackIDs(packs []models.Pack) []models.Pack {
	if packs == nil {
		return nil
	}
	out := make([]models.Pack, len(packs))
	for i, p := range packs {
		if p.ID == "" {
			p.ID = newID()
		}
		out[i] = p
	}
	return out
}

func nonEmpty(items []string) []string {
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Feed lists products filtered by category and search text. Sort is one of
// createdAt (default), price, sales or views.
func (s *CatalogService) Feed(params utils.PaginationParams) ([]FeedItem, int64) {
	params = utils.NormalizePagination(params)
	search := strings.ToLower(strings.TrimSpace(params.Search))

	var items []FeedItem
	s.store.View(func(st *store.AppState) {
		items = []FeedItem{}
		for _, p := range st.Products {
			if params.Category != "" && !strings.EqualFold(p.Category, params.Category) {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Description), search) {
				continue
			}
			items = append(items, FeedItem{
				Product: p,
				Liked:   st.LikedProductIDs.Has(p.ID),
				Saved:   st.SavedProductIDs.Has(p.ID),
			})
		}
	})

	less := func(a, b *models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch params.Sort {
	case "price":
		less = func(a, b *models.Product) bool { return a.Price < b.Price }
	case "sales":
		less = func(a, b *models.Product) bool { return a.SalesCount < b.SalesCount }
	case "views":
		less = func(a, b *models.Product) bool { return a.ViewCount < b.ViewCount }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if params.Order == "asc" {
			return less(&items[i].Product, &items[j].Product)
		}
		return less(&items[j].Product, &items[i].Product)
	})

	return utils.Paginate(items, params)
}

func (s *CatalogService) Product(productID string) (*FeedItem, error) {
	var item *FeedItem
	s.store.View(func(st *store.AppState) {
		if p := st.Product(productID); p != nil {
			item = &FeedItem{
				Product: *p,
				Liked:   st.LikedProductIDs.Has(p.ID),
				Saved:   st.SavedProductIDs.Has(p.ID),
			}
		}
	})
	if item == nil {
		return nil, ErrProductNotFound
	}
	return item, nil
}

// ToggleLike flips the like on a product and reports whether it is liked.
func (s *CatalogService) ToggleLike(productID string) (bool, error) {
	return s.toggle("product.like", productID, func(st *store.AppState) *models.StringSet {
		return &st.LikedProductIDs
	})
}

func (s *CatalogService) ToggleSave(productID string) (bool, error) {
	return s.toggle("product.save", productID, func(st *store.AppState) *models.StringSet {
		return &st.SavedProductIDs
	})
}

func (s *CatalogService) toggle(reason, productID string, set func(*store.AppState) *models.StringSet) (bool, error) {
	var on bool
	err := s.store.Update(reason, func(st *store.AppState) error {
		if _, err := currentUser(st); err != nil {
			return err
		}
		if st.Product(productID) == nil {
			return ErrProductNotFound
		}
		on = set(st).Toggle(productID)
		return nil
	})
	return on, err
}

// RecordView counts a product view and remembers it as the last one seen.
func (s *CatalogService) RecordView(productID string) error {
	return s.store.Update("product.view", func(st *store.AppState) error {
		product := st.Product(productID)
		if product == nil {
			return ErrProductNotFound
		}
		product.ViewCount++
		st.LastViewedProductID = productID
		return nil
	})
}

func (s *CatalogService) Liked() []models.Product {
	return s.collect(func(st *store.AppState) models.StringSet { return st.LikedProductIDs })
}

func (s *CatalogService) Saved() []models.Product {
	return s.collect(func(st *store.AppState) models.StringSet { return st.SavedProductIDs })
}

func (s *CatalogService) collect(set func(*store.AppState) models.StringSet) []models.Product {
	products := []models.Product{}
	s.store.View(func(st *store.AppState) {
		for _, id := range set(st).Items() {
			if p := st.Product(id); p != nil {
				products = append(products, *p)
			}
		}
	})
	return products
}

// ownedProductIDs checks that every id names a product of owner.
func ownedProductIDs(st *store.AppState, owner *models.User, ids []string) ([]string, error) {
	out := []string{}
	for _, id := range ids {
		p := st.Product(id)
		if p == nil || p.Creator.ID != owner.ID {
			return nil, ErrProductNotFound
		}
		out = models.AppendUnique(out, id)
	}
	return out, nil
}

// CreateDeck adds a deck to the current brand owner and notifies followers.
func (s *CatalogService) CreateDeck(req *DeckRequest) (*models.Deck, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var deck models.Deck
	notified := 0
	err := s.store.Update("deck.create", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		if !me.Capabilities().CanPublish {
			return ErrForbidden
		}
		ids, err := ownedProductIDs(st, me, req.ProductIDs)
		if err != nil {
			return err
		}

		deck = models.Deck{
			ID:           newID(),
			Name:         strings.TrimSpace(req.Name),
			MediaURLs:    nonEmpty(req.MediaURLs),
			ProductIDs:   ids,
			ProductCount: len(ids),
		}
		me.Decks = append(me.Decks, deck)
		notified = fanout(st, me, models.NotificationLink{Kind: models.LinkKindDeck, ID: deck.ID}, deck.Name, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordFanout(context.Background(), string(models.LinkKindDeck), notified)
	return &deck, nil
}

func (s *CatalogService) UpdateDeck(deckID string, req *DeckRequest) (*models.Deck, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var deck models.Deck
	err := s.store.Update("deck.update", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		existing := me.Deck(deckID)
		if existing == nil {
			return ErrDeckNotFound
		}
		ids, err := ownedProductIDs(st, me, req.ProductIDs)
		if err != nil {
			return err
		}

		existing.Name = strings.TrimSpace(req.Name)
		existing.MediaURLs = nonEmpty(req.MediaURLs)
		existing.ProductIDs = ids
		existing.ProductCount = len(ids)
		deck = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

func (s *CatalogService) DeleteDeck(deckID string) error {
	return s.store.Update("deck.delete", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		for i := range me.Decks {
			if me.Decks[i].ID == deckID {
				me.Decks = append(me.Decks[:i:i], me.Decks[i+1:]...)
				return nil
			}
		}
		return ErrDeckNotFound
	})
}

// Deck resolves a deck of userID with its products in deck order.
func (s *CatalogService) Deck(userID, deckID string) (*DeckView, error) {
	var view *DeckView
	var err error
	s.store.View(func(st *store.AppState) {
		owner := st.User(userID)
		if owner == nil {
			err = ErrUserNotFound
			return
		}
		deck := owner.Deck(deckID)
		if deck == nil {
			err = ErrDeckNotFound
			return
		}
		view = &DeckView{Deck: *deck, Owner: owner.Summary(), Products: []models.Product{}}
		for _, id := range deck.ProductIDs {
			if p := st.Product(id); p != nil {
				view.Products = append(view.Products, *p)
			}
		}
	})
	return view, err
}
