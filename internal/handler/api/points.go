package api

import (
	"errors"
	"net/http"

	resdto "travleap-core/internal/handler/dto/response"
	"travleap-core/internal/handler/middleware"
	"travleap-core/internal/usecase"
	"travleap-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointsHandler struct {
	pointsUseCase    usecase.PointsUseCase
	reservationViews queries.ReservationViews
}

func NewPointsHandler(pointsUseCase usecase.PointsUseCase, reservationViews queries.ReservationViews) *PointsHandler {
	return &PointsHandler{
		pointsUseCase:    pointsUseCase,
		reservationViews: reservationViews,
	}
}

// @Summary Points balance
// @Description Get the authenticated account's current points balance
// @Tags points
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.BalanceResponse
// @Router /points/balance [get]
func (h *PointsHandler) Balance(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	balance, err := h.pointsUseCase.Balance(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.BalanceResponse{AccountID: accountID, Balance: balance})
}

// @Summary Points history
// @Description List the authenticated account's ledger entries, newest first
// @Tags points
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.LedgerEntryResponse
// @Router /points/history [get]
func (h *PointsHandler) History(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	rms, err := h.reservationViews.LedgerHistory(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromLedgerRMs(rms))
}

// @Summary Verify ledger consistency
// @Description Replay an account's ledger and check it against the cached balance (admin only)
// @Tags points
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} resdto.LedgerVerifyResponse
// @Failure 409 {object} map[string]string
// @Router /admin/accounts/{id}/ledger/verify [get]
func (h *PointsHandler) VerifyLedger(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account ID"})
		return
	}

	balance, err := h.pointsUseCase.VerifyLedger(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, usecase.ErrLedgerDiverged) {
			c.JSON(http.StatusConflict, gin.H{"error": "Ledger diverged from cached balance"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.LedgerVerifyResponse{
		AccountID:  accountID,
		Balance:    balance,
		Consistent: true,
	})
}
