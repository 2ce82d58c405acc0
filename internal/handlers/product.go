// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

type ProductHandler struct {
	media *services.MediaService
}

func NewProductHandler(media *services.MediaService) *ProductHandler {
	return &ProductHandler{media: media}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	items, total := svc(c).Catalog.Feed(params)

	result := utils.CreatePaginationResult(items, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	item, err := svc(c).Catalog.Product(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

// GET /products/liked
func (h *ProductHandler) GetLiked(c *gin.Context) {
	utils.SuccessResponse(c, svc(c).Catalog.Liked())
}

// GET /products/saved
func (h *ProductHandler) GetSaved(c *gin.Context) {
	utils.SuccessResponse(c, svc(c).Catalog.Saved())
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := resolveVariantMedia(c, h.media, req.Variants); err != nil {
		respondError(c, err)
		return
	}

	product, err := svc(c).Catalog.CreateProduct(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductCreated),
		"product": product,
	})
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := resolveVariantMedia(c, h.media, req.Variants); err != nil {
		respondError(c, err)
		return
	}

	product, err := svc(c).Catalog.UpdateProduct(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyProductUpdated, product)
}

// POST /products/:id/like
func (h *ProductHandler) ToggleLike(c *gin.Context) {
	liked, err := svc(c).Catalog.ToggleLike(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"liked": liked})
}

// POST /products/:id/save
func (h *ProductHandler) ToggleSave(c *gin.Context) {
	saved, err := svc(c).Catalog.ToggleSave(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"saved": saved})
}

// POST /products/:id/view
func (h *ProductHandler) RecordView(c *gin.Context) {
	if err := svc(c).Catalog.RecordView(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, nil)
}

// POST /decks
func (h *ProductHandler) CreateDeck(c *gin.Context) {
	var req services.DeckRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := resolveMediaURLs(c, h.media, req.MediaURLs, "decks"); err != nil {
		respondError(c, err)
		return
	}

	deck, err := svc(c).Catalog.CreateDeck(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyDeckCreated),
		"deck":    deck,
	})
}

// PUT /decks/:id
func (h *ProductHandler) UpdateDeck(c *gin.Context) {
	var req services.DeckRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := resolveMediaURLs(c, h.media, req.MediaURLs, "decks"); err != nil {
		respondError(c, err)
		return
	}

	deck, err := svc(c).Catalog.UpdateDeck(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyDeckUpdated, deck)
}

// DELETE /decks/:id
func (h *ProductHandler) DeleteDeck(c *gin.Context) {
	if err := svc(c).Catalog.DeleteDeck(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyDeckDeleted, nil)
}

// GET /users/:id/decks/:deckId
func (h *ProductHandler) GetDeck(c *gin.Context) {
	view, err := svc(c).Catalog.Deck(c.Param("id"), c.Param("deckId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}
