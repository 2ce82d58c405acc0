// internal/handlers/live.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/services"
	"github.com/javajoker/reelshop/internal/utils"
)

type LiveHandler struct{}

type PinProductRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

func NewLiveHandler() *LiveHandler {
	return &LiveHandler{}
}

// GET /live
func (h *LiveHandler) GetStreams(c *gin.Context) {
	utils.SuccessResponse(c, svc(c).Live.Streams())
}

// POST /live
func (h *LiveHandler) ScheduleStream(c *gin.Context) {
	var req services.ScheduleStreamRequest
	if !bindJSON(c, &req) {
		return
	}
	stream, err := svc(c).Live.ScheduleStream(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, stream)
}

// GET /live/:id
func (h *LiveHandler) GetStream(c *gin.Context) {
	stream, err := svc(c).Live.Stream(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, stream)
}

// POST /live/:id/start
func (h *LiveHandler) StartStream(c *gin.Context) {
	if err := svc(c).Live.StartStream(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.GetStream(c)
}

// POST /live/:id/end
func (h *LiveHandler) EndStream(c *gin.Context) {
	if err := svc(c).Live.EndStream(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.GetStream(c)
}

// POST /live/:id/discount
func (h *LiveHandler) SetDiscount(c *gin.Context) {
	var req services.SetDiscountRequest
	if !bindJSON(c, &req) {
		return
	}
	discount, err := svc(c).Live.SetDiscount(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, discount)
}

// GET /live/:id/products/:productId/price
func (h *LiveHandler) GetPrice(c *gin.Context) {
	price, discounted, err := svc(c).Live.DiscountedPrice(c.Param("id"), c.Param("productId"), c.Query("packId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"price":      price,
		"discounted": discounted,
	})
}

// POST /live/:id/host-control
func (h *LiveHandler) ToggleHostControl(c *gin.Context) {
	controlled, err := svc(c).Live.ToggleHostControl(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"isHostControlled": controlled})
}

// POST /live/:id/pin
func (h *LiveHandler) PinProduct(c *gin.Context) {
	var req PinProductRequest
	if !bindJSON(c, &req) {
		return
	}
	index, err := svc(c).Live.PinProduct(c.Param("id"), req.Index)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"pinnedIndex": index})
}

// POST /live/:id/comments
func (h *LiveHandler) AddComment(c *gin.Context) {
	var req services.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := svc(c).Live.AddComment(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, comment)
}

// POST /live/:id/like
func (h *LiveHandler) Like(c *gin.Context) {
	likes, err := svc(c).Live.Like(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"likes": likes})
}

// POST /live/:id/join
func (h *LiveHandler) Join(c *gin.Context) {
	stream, err := svc(c).Live.Join(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, stream)
}

// POST /live/:id/leave
func (h *LiveHandler) Leave(c *gin.Context) {
	if err := svc(c).Live.Leave(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, nil)
}

// POST /live/:id/buy
func (h *LiveHandler) BuyFromStream(c *gin.Context) {
	var req services.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := svc(c).Live.BuyFromStream(c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, item)
}
