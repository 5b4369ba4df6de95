package api

import (
	"errors"
	"net/http"

	"agora/internal/domain/stock"
	reqdto "agora/internal/handler/dto/request"
	"agora/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// StockHandler is the service-to-service surface of the ledger. Routes
// live under /internal and are not exposed through the public gateway.
type StockHandler struct {
	stockCommands commands.StockCommands
}

func NewStockHandler(stockCommands commands.StockCommands) *StockHandler {
	return &StockHandler{
		stockCommands: stockCommands,
	}
}

// @Summary Reserve stock
// @Description Place a hold on product quantity for an order
// @Tags stock
// @Accept json
// @Produce json
// @Param request body reqdto.ReserveStockRequest true "Reservation request"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /internal/stock/reserve [post]
func (h *StockHandler) Reserve(c *gin.Context) {
	var req reqdto.ReserveStockRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	err := h.stockCommands.Reserve(c.Request.Context(), req.ProductID, req.Quantity, req.OrderNumber)
	if err != nil {
		switch {
		case errors.Is(err, stock.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errors.Is(err, stock.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Insufficient stock",
			})
		case errors.Is(err, stock.ErrInvalidReservation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid reservation",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Release stock
// @Description Credit held quantity back to a product
// @Tags stock
// @Accept json
// @Produce json
// @Param request body reqdto.ReleaseStockRequest true "Release request"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /internal/stock/release [post]
func (h *StockHandler) Release(c *gin.Context) {
	var req reqdto.ReleaseStockRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	err := h.stockCommands.Release(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, stock.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errors.Is(err, stock.ErrInvalidReservation):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid release quantity",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Commit stock
// @Description Finalize all holds for an order as permanent deductions
// @Tags stock
// @Produce json
// @Param orderNumber path string true "Order number"
// @Success 204
// @Router /internal/stock/commit/{orderNumber} [post]
func (h *StockHandler) Commit(c *gin.Context) {
	if err := h.stockCommands.Commit(c.Request.Context(), c.Param("orderNumber")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
