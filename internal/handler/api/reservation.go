package api

import (
	"errors"
	"net/http"

	reqdto "travleap-core/internal/handler/dto/request"
	resdto "travleap-core/internal/handler/dto/response"
	"travleap-core/internal/handler/middleware"
	"travleap-core/internal/pkg/errs"
	"travleap-core/internal/usecase"
	"travleap-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	bookingUseCase    usecase.BookingUseCase
	inspectionUseCase usecase.InspectionUseCase
	reservationViews  queries.ReservationViews
}

func NewReservationHandler(
	bookingUseCase usecase.BookingUseCase,
	inspectionUseCase usecase.InspectionUseCase,
	reservationViews queries.ReservationViews,
) *ReservationHandler {
	return &ReservationHandler{
		bookingUseCase:    bookingUseCase,
		inspectionUseCase: inspectionUseCase,
		reservationViews:  reservationViews,
	}
}

// @Summary Place a hold
// @Description Reserve a resource, creating a time-limited hold
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.ReserveRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /reservations [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	idempotencyKey, err := h.getIdempotencyKey(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req reqdto.ReserveRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	created, err := h.bookingUseCase.Reserve(c.Request.Context(), actor, req.ToCommand(), idempotencyKey)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromEntity(created))
}

// @Summary Confirm a hold
// @Description Settle a hold into a confirmed reservation, issuing the voucher and points
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.ConfirmRequest true "Payment proof"
// @Success 200 {object} resdto.ConfirmResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Router /reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *gin.Context) {
	actor, reservationID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.bookingUseCase.Confirm(c.Request.Context(), actor, reservationID, req.PaymentProof)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.ConfirmResponse{
		Reservation:  resdto.FromEntity(result.Reservation),
		VoucherCode:  result.VoucherCode,
		PointsEarned: result.PointsEarned,
	})
}

// @Summary Extend a reservation
// @Description Push the reservation end later if no other reservation blocks it
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.ExtendRequest true "Extension request"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/extend [post]
func (h *ReservationHandler) Extend(c *gin.Context) {
	actor, reservationID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	extended, err := h.bookingUseCase.Extend(c.Request.Context(), actor, reservationID, req.NewEnd)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromEntity(extended))
}

// @Summary Cancel a reservation
// @Description Cancel an active reservation, restoring inventory and refunding points
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.CancelRequest true "Cancellation request"
// @Success 200 {object} resdto.CancelResponse
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	actor, reservationID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	cancelled, err := h.bookingUseCase.Cancel(c.Request.Context(), actor, reservationID, req.Reason)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.CancelResponse{
		Reservation:    resdto.FromEntity(cancelled.Reservation),
		RefundedPoints: cancelled.RefundedPoints,
	})
}

// @Summary Check in
// @Description Record arrival against a confirmed reservation (staff only)
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/checkin [post]
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	actor, reservationID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	updated, err := h.inspectionUseCase.CheckIn(c.Request.Context(), actor, reservationID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromEntity(updated))
}

// @Summary Check out
// @Description Complete a checked-in reservation, applying any overage fee (staff only)
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/checkout [post]
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	actor, reservationID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	updated, err := h.inspectionUseCase.CheckOut(c.Request.Context(), actor, reservationID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromEntity(updated))
}

// @Summary Get reservation
// @Description Get reservation by ID
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	actor, reservationID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	rm, err := h.reservationViews.GetByID(c.Request.Context(), reservationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}
	if !actor.CanManage(rm.HolderID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationRM(rm))
}

// @Summary List own reservations
// @Description List the authenticated account's reservations
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.ReservationListResponse
// @Router /reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	rms, err := h.reservationViews.ListByHolder(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationListRM(rms))
}

func (h *ReservationHandler) actorAndID(c *gin.Context) (usecase.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return usecase.Actor{}, uuid.Nil, false
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return usecase.Actor{}, uuid.Nil, false
	}
	return actor, reservationID, true
}

func (h *ReservationHandler) getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("Idempotency-Key")
	if raw == "" {
		return uuid.Nil, errs.ErrIdempotencyKeyRequired
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("Idempotency-Key must be a UUID")
	}
	return key, nil
}

func (h *ReservationHandler) respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrReservationNotFound),
		errors.Is(err, errs.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, errs.ErrLockBusy):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusLocked, gin.H{"error": "Resource is busy, retry shortly"})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrSoldOut):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient availability"})
	case errors.Is(err, errs.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "Hold has expired"})
	case errors.Is(err, errs.ErrAlreadyConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation already confirmed"})
	case errors.Is(err, errs.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation already cancelled"})
	case errors.Is(err, errs.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation already checked in"})
	case errors.Is(err, errs.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation was modified concurrently, retry"})
	case errors.Is(err, errs.ErrIdempotencyKeyRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header required"})
	case errors.Is(err, errs.ErrIdempotencyInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Request is currently being processed"})
	case errors.Is(err, errs.ErrDuplicateReservation):
		c.JSON(http.StatusConflict, gin.H{"error": "Idempotency key reused with different parameters"})
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrDomainValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInspectorRoleRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "Staff role required"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
