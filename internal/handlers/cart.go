// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

type CartHandler struct{}

type CheckoutRequest struct {
	CreatorID string `json:"creatorId" validate:"required"`
}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cart := svc(c).Cart
	lines := cart.Lines()

	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, line.CartItem)
	}

	utils.SuccessResponse(c, gin.H{
		"lines":    lines,
		"subtotal": cart.Subtotal(items),
	})
}

// GET /cart/basket
func (h *CartHandler) Basket(c *gin.Context) {
	utils.SuccessResponse(c, svc(c).Cart.Basket())
}

// POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req services.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := svc(c).Cart.AddToCart(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, item)
}

// PUT /cart/items
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req services.UpdateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := svc(c).Cart.UpdateQuantity(&req); err != nil {
		respondError(c, err)
		return
	}
	h.GetCart(c)
}

// POST /cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	sale, err := svc(c).Cart.Checkout(req.CreatorID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, i18n.KeyCartCheckedOut, sale)
}
