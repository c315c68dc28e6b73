//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"travleap-core/internal/domain/account"
	"travleap-core/internal/domain/reservation"
	"travleap-core/internal/handler/api"
	resdto "travleap-core/internal/handler/dto/response"
	"travleap-core/internal/pkg/errs"
	"travleap-core/internal/usecase"
	"travleap-core/internal/usecase/readmodel"
	"travleap-core/tests/common/builder"
	"travleap-core/tests/common/httptest"
	"travleap-core/tests/common/testutil"
	queriesmock "travleap-core/tests/mock/queries"
	mockusecase "travleap-core/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	mockCtrl       *gomock.Controller
	mockBooking    *mockusecase.MockBookingUseCase
	mockInspection *mockusecase.MockInspectionUseCase
	mockViews      *queriesmock.MockReservationViews
	handler        *api.ReservationHandler
	actorID        uuid.UUID
	actorRole      account.Role
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockBooking = mockusecase.NewMockBookingUseCase(s.mockCtrl)
	s.mockInspection = mockusecase.NewMockInspectionUseCase(s.mockCtrl)
	s.mockViews = queriesmock.NewMockReservationViews(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockBooking, s.mockInspection, s.mockViews)

	s.actorID = uuid.New()
	s.actorRole = account.RoleTraveler

	// Stand-in for the auth middleware.
	authed := s.router.Group("", func(c *gin.Context) {
		c.Set("account_id", s.actorID)
		c.Set("account_role", s.actorRole)
		c.Next()
	})
	authed.POST("/reservations", s.handler.Reserve)
	authed.GET("/reservations", s.handler.ListReservations)
	authed.GET("/reservations/:id", s.handler.GetReservation)
	authed.POST("/reservations/:id/confirm", s.handler.Confirm)
	authed.POST("/reservations/:id/extend", s.handler.Extend)
	authed.POST("/reservations/:id/cancel", s.handler.Cancel)
	authed.POST("/reservations/:id/checkin", s.handler.CheckIn)
	authed.POST("/reservations/:id/checkout", s.handler.CheckOut)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

func (s *ReservationHandlerTestSuite) TestReserve() {
	url := "/reservations"
	idemKey := uuid.NewString()
	now := time.Now()

	s.Run("success: 201 Created with the hold", func() {
		b := builder.NewReservationBuilder()
		reqBody := b.BuildDTO()
		entity, err := b.With(func(rb *builder.ReservationBuilder) {
			rb.HolderID = s.actorID
		}).BuildHold(now, 15*time.Minute)
		s.Require().NoError(err)

		s.mockBooking.EXPECT().
			Reserve(gomock.Any(), usecase.Actor{ID: s.actorID, Role: account.RoleTraveler}, gomock.Any(), gomock.Any()).
			Return(entity, nil)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": idemKey}, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(entity.ID(), response.ID)
		s.Equal(reservation.StatusHold.String(), response.Status)
		s.NotNil(response.HoldExpiresAt)
	})

	s.Run("error: 400 without an Idempotency-Key header", func() {
		reqBody := builder.NewReservationBuilder().BuildDTO()

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key header required")
	})

	s.Run("error: 400 when the key is not a UUID", func() {
		reqBody := builder.NewReservationBuilder().BuildDTO()

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": "not-a-uuid"}, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key must be a UUID")
	})

	s.Run("error: 400 on a malformed body", func() {
		cases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "zero units", mutate: testutil.Field("units", 0)},
			{name: "missing resource", mutate: testutil.Field("resource_id", nil)},
			{name: "missing start", mutate: testutil.Field("start", nil)},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), builder.NewReservationBuilder().BuildDTO(), tc.mutate)

				rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, requestMap,
					map[string]string{"Idempotency-Key": idemKey}, "")

				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
			})
		}
	})

	s.Run("error: 409 Conflict on an overlapping reservation", func() {
		reqBody := builder.NewReservationBuilder().BuildDTO()

		s.mockBooking.EXPECT().
			Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errs.New("blocked by reservation"), errs.ErrConflict))

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": idemKey}, "")

		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("error: 409 Conflict when sold out", func() {
		reqBody := builder.NewReservationBuilder().BuildDTO()

		s.mockBooking.EXPECT().
			Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrSoldOut)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": idemKey}, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Insufficient availability")
	})

	s.Run("error: 423 Locked with Retry-After when the resource lock is busy", func() {
		reqBody := builder.NewReservationBuilder().BuildDTO()

		s.mockBooking.EXPECT().
			Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errs.New("lock held"), errs.ErrLockBusy))

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": idemKey}, "")

		s.Equal(http.StatusLocked, rec.Code)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Retry-After": "1"})
	})

	s.Run("error: 409 when the key is reused with a different payload", func() {
		reqBody := builder.NewReservationBuilder().BuildDTO()

		s.mockBooking.EXPECT().
			Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrDuplicateReservation)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody,
			map[string]string{"Idempotency-Key": idemKey}, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Idempotency key reused with different parameters")
	})
}

func (s *ReservationHandlerTestSuite) TestConfirm() {
	now := time.Now()
	proofBody := map[string]any{"payment_proof": "pay_2024_xyz"}

	s.Run("success: 200 OK with voucher and points", func() {
		entity, err := builder.NewReservationBuilder().With(func(rb *builder.ReservationBuilder) {
			rb.HolderID = s.actorID
		}).BuildConfirmed(now)
		s.Require().NoError(err)

		s.mockBooking.EXPECT().
			Confirm(gomock.Any(), usecase.Actor{ID: s.actorID, Role: account.RoleTraveler}, entity.ID(), "pay_2024_xyz").
			Return(&usecase.ConfirmResult{
				Reservation:  entity,
				VoucherCode:  "ABCD2345",
				PointsEarned: 600,
			}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+entity.ID().String()+"/confirm", proofBody, "")

		var response resdto.ConfirmResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("ABCD2345", response.VoucherCode)
		s.Equal(600, response.PointsEarned)
		s.Equal(reservation.StatusConfirmed.String(), response.Reservation.Status)
	})

	s.Run("error: 400 without payment proof", func() {
		id := uuid.New()
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/confirm",
			map[string]any{}, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: 410 Gone on a lapsed hold", func() {
		id := uuid.New()
		s.mockBooking.EXPECT().
			Confirm(gomock.Any(), gomock.Any(), id, gomock.Any()).
			Return(nil, errs.ErrExpired)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/confirm", proofBody, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusGone, "Hold has expired")
	})

	s.Run("error: 409 when already cancelled", func() {
		id := uuid.New()
		s.mockBooking.EXPECT().
			Confirm(gomock.Any(), gomock.Any(), id, gomock.Any()).
			Return(nil, errs.ErrAlreadyCancelled)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/confirm", proofBody, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Reservation already cancelled")
	})

	s.Run("error: 404 on an unknown reservation", func() {
		id := uuid.New()
		s.mockBooking.EXPECT().
			Confirm(gomock.Any(), gomock.Any(), id, gomock.Any()).
			Return(nil, errs.ErrReservationNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/"+id.String()+"/confirm", proofBody, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})

	s.Run("error: 400 on a malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reservations/not-a-uuid/confirm", proofBody, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid reservation ID")
	})
}

func (s *ReservationHandlerTestSuite) TestExtend() {
	now := time.Now()

	s.Run("success: 200 OK with the new end", func() {
		b := builder.NewReservationBuilder()
		entity, err := b.With(func(rb *builder.ReservationBuilder) {
			rb.HolderID = s.actorID
		}).BuildConfirmed(now)
		s.Require().NoError(err)
		newEnd := b.End.Add(2 * time.Hour)
		s.Require().NoError(entity.Extend(newEnd))

		s.mockBooking.EXPECT().
			Extend(gomock.Any(), gomock.Any(), entity.ID(), gomock.Any()).
			Return(entity, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+entity.ID().String()+"/extend",
			map[string]any{"new_end": newEnd}, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().NotNil(response.EndAt)
		s.WithinDuration(newEnd, *response.EndAt, time.Second)
	})

	s.Run("error: 409 when a later reservation blocks it", func() {
		id := uuid.New()
		s.mockBooking.EXPECT().
			Extend(gomock.Any(), gomock.Any(), id, gomock.Any()).
			Return(nil, errs.Mark(errs.New("blocked by reservation"), errs.ErrConflict))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+id.String()+"/extend",
			map[string]any{"new_end": now.Add(4 * time.Hour)}, "")

		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("error: 400 without a new end", func() {
		id := uuid.New()
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+id.String()+"/extend",
			map[string]any{}, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})
}

func (s *ReservationHandlerTestSuite) TestCancel() {
	now := time.Now()

	s.Run("success: 200 OK with the cancelled reservation and refund", func() {
		entity, err := builder.NewReservationBuilder().With(func(rb *builder.ReservationBuilder) {
			rb.HolderID = s.actorID
		}).BuildConfirmed(now)
		s.Require().NoError(err)
		s.Require().NoError(entity.Cancel("changed plans"))

		s.mockBooking.EXPECT().
			Cancel(gomock.Any(), gomock.Any(), entity.ID(), "changed plans").
			Return(&usecase.CancelResult{Reservation: entity, RefundedPoints: 600}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+entity.ID().String()+"/cancel",
			map[string]any{"reason": "changed plans"}, "")

		var response resdto.CancelResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(reservation.StatusCancelled.String(), response.Reservation.Status)
		s.Require().NotNil(response.Reservation.CancelReason)
		s.Equal("changed plans", *response.Reservation.CancelReason)
		s.Equal(600, response.RefundedPoints)
	})

	s.Run("error: 400 without a reason", func() {
		id := uuid.New()
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+id.String()+"/cancel",
			map[string]any{}, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: 409 when already cancelled", func() {
		id := uuid.New()
		s.mockBooking.EXPECT().
			Cancel(gomock.Any(), gomock.Any(), id, "again").
			Return(nil, errs.ErrAlreadyCancelled)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+id.String()+"/cancel",
			map[string]any{"reason": "again"}, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Reservation already cancelled")
	})
}

func (s *ReservationHandlerTestSuite) TestCheckInOut() {
	now := time.Now()

	s.Run("success: staff checks a reservation in", func() {
		s.actorRole = account.RoleStaff
		entity, err := builder.NewReservationBuilder().BuildConfirmed(now)
		s.Require().NoError(err)
		s.Require().NoError(entity.CheckIn(now, s.actorID))

		s.mockInspection.EXPECT().
			CheckIn(gomock.Any(), usecase.Actor{ID: s.actorID, Role: account.RoleStaff}, entity.ID()).
			Return(entity, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+entity.ID().String()+"/checkin", nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(reservation.StatusCheckedIn.String(), response.Status)
	})

	s.Run("error: 403 for a traveler", func() {
		s.actorRole = account.RoleTraveler
		id := uuid.New()

		s.mockInspection.EXPECT().
			CheckIn(gomock.Any(), gomock.Any(), id).
			Return(nil, usecase.ErrInspectorRoleRequired)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+id.String()+"/checkin", nil, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Staff role required")
	})

	s.Run("success: check-out reports the overage fee", func() {
		s.actorRole = account.RoleStaff
		entity, err := builder.NewReservationBuilder().With(func(rb *builder.ReservationBuilder) {
			start := now.Add(-4 * time.Hour)
			end := now.Add(-2 * time.Hour)
			rb.Start = start
			rb.End = &end
		}).BuildConfirmed(now.Add(-4 * time.Hour))
		s.Require().NoError(err)
		s.Require().NoError(entity.CheckIn(now.Add(-4*time.Hour), s.actorID))
		s.Require().NoError(entity.CheckOut(now, s.actorID, 3000))

		s.mockInspection.EXPECT().
			CheckOut(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+entity.ID().String()+"/checkout", nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(reservation.StatusCompleted.String(), response.Status)
		s.Equal(3000, response.OverageFeeCents)
	})

	s.Run("error: 422 when checking out before check-in", func() {
		s.actorRole = account.RoleStaff
		id := uuid.New()

		s.mockInspection.EXPECT().
			CheckOut(gomock.Any(), gomock.Any(), id).
			Return(nil, errs.ErrInvalidTransition)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/reservations/"+id.String()+"/checkout", nil, "")

		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})
}

func (s *ReservationHandlerTestSuite) TestGetReservation() {
	s.Run("success: 200 OK for the holder", func() {
		rm := builder.NewReservationBuilder().With(func(rb *builder.ReservationBuilder) {
			rb.HolderID = s.actorID
		}).BuildReadModel()

		s.mockViews.EXPECT().GetByID(gomock.Any(), rm.ID).Return(rm, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+rm.ID.String(), nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(rm.ID, response.ID)
	})

	s.Run("error: another traveler's reservation reads as 404", func() {
		rm := builder.NewReservationBuilder().BuildReadModel()

		s.mockViews.EXPECT().GetByID(gomock.Any(), rm.ID).Return(rm, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+rm.ID.String(), nil, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})

	s.Run("success: staff can read any reservation", func() {
		s.actorRole = account.RoleStaff
		rm := builder.NewReservationBuilder().BuildReadModel()

		s.mockViews.EXPECT().GetByID(gomock.Any(), rm.ID).Return(rm, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+rm.ID.String(), nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(rm.ID, response.ID)
	})

	s.Run("error: 404 on an unknown id", func() {
		id := uuid.New()
		s.mockViews.EXPECT().GetByID(gomock.Any(), id).Return(nil, errs.ErrReservationNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+id.String(), nil, "")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})
}

func (s *ReservationHandlerTestSuite) TestListReservations() {
	s.Run("success: 200 OK with the holder's reservations", func() {
		rm := builder.NewReservationBuilder().With(func(rb *builder.ReservationBuilder) {
			rb.HolderID = s.actorID
		}).BuildReadModel()
		list := []*readmodel.ReservationListRM{
			{
				ID:           rm.ID,
				ResourceID:   rm.ResourceID,
				ResourceName: rm.ResourceName,
				StartAt:      rm.StartAt,
				EndAt:        rm.EndAt,
				Status:       rm.Status,
				Units:        rm.Units,
				PriceCents:   rm.PriceCents,
				CreatedAt:    rm.CreatedAt,
			},
		}

		s.mockViews.EXPECT().ListByHolder(gomock.Any(), s.actorID).Return(list, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations", nil, "")

		var response []resdto.ReservationListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().Len(response, 1)
		s.Equal(rm.ID, response[0].ID)
	})

	s.Run("success: empty list", func() {
		s.mockViews.EXPECT().ListByHolder(gomock.Any(), s.actorID).Return(nil, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations", nil, "")

		var response []resdto.ReservationListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Empty(response)
	})
}
