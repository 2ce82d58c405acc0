// internal/handlers/sales.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/reelshop/internal/utils"
)

type SalesHandler struct{}

func NewSalesHandler() *SalesHandler {
	return &SalesHandler{}
}

// GET /sales
func (h *SalesHandler) GetReport(c *gin.Context) {
	report, err := svc(c).Sales.Report()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, report)
}
