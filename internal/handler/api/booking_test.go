//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/domain/booking"
	"booking-engine/internal/handler/api"
	resdto "booking-engine/internal/handler/dto/response"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/admission"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"
	"booking-engine/tests/common/builder"
	"booking-engine/tests/common/httptest"
	"booking-engine/tests/common/testutil"
	commandsmock "booking-engine/tests/mock/commands"
	queriesmock "booking-engine/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
	providerID   uuid.UUID
	bookingID    uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries)
	s.providerID = uuid.New()
	s.bookingID = uuid.New()

	auth := newAuth(s.providerID, s.bookingID)
	customer := auth.RequireRole(actor.RoleCustomer, actor.RoleAdmin)
	provider := auth.RequireRole(actor.RoleProvider)

	s.router.POST("/providers/:slug/bookings", s.handler.Create)
	s.router.GET("/bookings/:id", auth.RequireAuth(), s.handler.Get)
	s.router.POST("/bookings/:id/cancel", auth.RequireAuth(), customer, s.handler.Cancel)
	s.router.POST("/bookings/:id/disputes", auth.RequireAuth(), customer, s.handler.OpenDispute)
	s.router.GET("/provider/bookings", auth.RequireAuth(), provider, s.handler.ListForProvider)
	s.router.POST("/provider/bookings/:id/no-show", auth.RequireAuth(), provider, s.handler.MarkNoShow)
	s.router.POST("/provider/bookings/:id/complete", auth.RequireAuth(), provider, s.handler.Complete)
	s.router.POST("/provider/bookings/:id/disputes/resolve", auth.RequireAuth(),
		auth.RequireRole(actor.RoleProvider, actor.RoleAdmin), s.handler.ResolveDispute)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

type testCaseBooking struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreate() {
	url := "/providers/dr-smith/bookings"
	b := builder.NewBookingBuilder()
	reqBody := b.BuildCreateRequestDTO()
	created := b.MustPending()

	s.Run("success: returns 201 with manage token", func() {
		s.mockCommands.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req commands.CreateBookingRequest) (*commands.CreateBookingResult, error) {
				s.Equal("dr-smith", req.ProviderSlug)
				s.Equal(reqBody.ServiceID, req.ServiceID)
				s.True(reqBody.Start.Equal(req.Start))
				s.Equal(reqBody.CustomerEmail, req.CustomerEmail)
				return &commands.CreateBookingResult{Booking: created, ManageToken: "manage-token"}, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var res resdto.CreateBookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &res)
		s.Equal("manage-token", res.ManageToken)
		s.Equal(created.ID(), res.Booking.ID)
		s.Equal("pending", res.Booking.Status)
		s.True(created.Start().Add(time.Hour).Equal(res.Booking.End))
	})

	s.Run("success: idempotent replay returns 200", func() {
		s.mockCommands.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req commands.CreateBookingRequest) (*commands.CreateBookingResult, error) {
				s.Equal("checkout-42", req.IdempotencyKey)
				return &commands.CreateBookingResult{Booking: created, ManageToken: "manage-token", Replayed: true}, nil
			})

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "",
			map[string]string{"Idempotency-Key": "checkout-42"})

		var res resdto.CreateBookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal(created.ID(), res.Booking.ID)
	})

	missing := []testCaseBooking{
		{name: "missing service_id", mutate: testutil.Field("service_id", nil), expectCode: http.StatusBadRequest},
		{name: "missing start", mutate: testutil.Field("start", nil), expectCode: http.StatusBadRequest},
		{name: "missing customer_name", mutate: testutil.Field("customer_name", nil), expectCode: http.StatusBadRequest},
		{name: "missing customer_email", mutate: testutil.Field("customer_email", nil), expectCode: http.StatusBadRequest},
		{name: "malformed start", mutate: testutil.Field("start", "tomorrow at noon"), expectCode: http.StatusBadRequest},
	}
	for _, tc := range missing {
		s.Run(tc.name, func() {
			body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
			s.Equal(tc.expectCode, rec.Code)
		})
	}

	errorCases := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{name: "slot taken", err: admission.ErrSlotUnavailable, expectCode: http.StatusConflict, expectMsg: "slot is no longer available"},
		{name: "slot not offered", err: admission.ErrSlotNotOffered, expectCode: http.StatusBadRequest, expectMsg: "not an offered slot"},
		{name: "unknown provider", err: commands.ErrProviderNotFound, expectCode: http.StatusNotFound, expectMsg: "provider not found"},
		{name: "idempotency key reused", err: commands.ErrIdempotencyKeyReused, expectCode: http.StatusConflict, expectMsg: "idempotency key was already used"},
		{name: "database down", err: errs.Mark(errors.New("dial tcp"), errs.ErrDependencyUnavailable), expectCode: http.StatusServiceUnavailable, expectMsg: "temporarily unavailable"},
		{name: "unexpected", err: errors.New("boom"), expectCode: http.StatusInternalServerError, expectMsg: "Internal server error"},
	}
	for _, tc := range errorCases {
		s.Run("error: "+tc.name, func() {
			s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, tc.err)
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
			httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, tc.expectMsg)
		})
	}
}

// ================================================================================
// TestGet
// ================================================================================

func (s *BookingHandlerTestSuite) TestGet() {
	start := time.Date(2025, 3, 3, 13, 0, 0, 0, time.UTC)
	view := &queries.BookingView{
		ID:            s.bookingID,
		ProviderID:    s.providerID,
		ServiceName:   "Consultation",
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		BookingDate:   start,
		Duration:      45,
		DepositCents:  5000,
		Status:        "confirmed",
		DepositStatus: "paid",
		DisputeStatus: "none",
	}

	s.Run("success: customer reads own booking", func() {
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), s.bookingID, actor.Actor{ID: s.bookingID.String(), Role: actor.RoleCustomer}).
			Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+s.bookingID.String(), nil, customerToken)

		var res resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal(s.bookingID, res.ID)
		s.Equal("Consultation", res.ServiceName)
		s.Equal("paid", res.DepositStatus)
		s.True(start.Equal(res.Start))
		s.True(start.Add(45 * time.Minute).Equal(res.End))
	})

	s.Run("error: missing token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+s.bookingID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})

	s.Run("error: unknown token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+s.bookingID.String(), nil, "forged")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("error: malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/not-a-uuid", nil, providerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid booking ID format")
	})

	s.Run("error: hidden booking answers 404", func() {
		other := uuid.New()
		s.mockQueries.EXPECT().GetByID(gomock.Any(), other, gomock.Any()).Return(nil, booking.ErrBookingNotFound)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+other.String(), nil, providerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "booking not found")
	})
}

// ================================================================================
// TestCancel
// ================================================================================

func (s *BookingHandlerTestSuite) TestCancel() {
	url := "/bookings/" + s.bookingID.String() + "/cancel"
	cancelled := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.ID = s.bookingID }).MustConfirmed()
	customer := actor.Actor{ID: s.bookingID.String(), Role: actor.RoleCustomer}

	s.Run("success: body is optional", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.bookingID, customer, "").Return(cancelled, nil)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, customerToken)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("success: reason is forwarded", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.bookingID, customer, "sick").Return(cancelled, nil)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"reason": "sick"}, customerToken)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("error: provider token on customer route", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, providerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Insufficient permissions")
	})

	s.Run("error: invalid transition answers 409", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.bookingID, customer, "").Return(nil, booking.ErrInvalidTransition)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, customerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "invalid booking state transition")
	})
}

// ================================================================================
// TestOpenDispute
// ================================================================================

func (s *BookingHandlerTestSuite) TestOpenDispute() {
	url := "/bookings/" + s.bookingID.String() + "/disputes"

	s.Run("error: reason is required", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, customerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: second dispute answers 409", func() {
		s.mockCommands.EXPECT().OpenDispute(gomock.Any(), s.bookingID, gomock.Any(), "no-show was wrong").
			Return(nil, booking.ErrDisputeExists)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"reason": "no-show was wrong"}, customerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "already opened")
	})
}

// ================================================================================
// TestListForProvider
// ================================================================================

func (s *BookingHandlerTestSuite) TestListForProvider() {
	items := []*queries.BookingListItem{
		{ID: uuid.New(), CustomerName: "Ada", BookingDate: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), Duration: 60, Status: "confirmed"},
	}

	s.Run("success: default limit and next cursor", func() {
		s.mockQueries.EXPECT().
			ListForProvider(gomock.Any(), s.providerID, queries.BookingFilters{}, (*queries.Cursor)(nil), queries.DefaultListLimit).
			Return(items, &queries.Cursor{After: "next"}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/provider/bookings", nil, providerToken)

		var res resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Len(res.Items, 1)
		s.Equal("next", res.NextCursor)
		s.True(items[0].BookingDate.Add(time.Hour).Equal(res.Items[0].End))
	})

	s.Run("success: filters are parsed", func() {
		s.mockQueries.EXPECT().
			ListForProvider(gomock.Any(), s.providerID, gomock.Any(), &queries.Cursor{After: "abc"}, 5).
			DoAndReturn(func(_ any, _ uuid.UUID, f queries.BookingFilters, _ *queries.Cursor, _ int) ([]*queries.BookingListItem, *queries.Cursor, error) {
				s.Require().NotNil(f.From)
				s.Require().NotNil(f.Status)
				s.Nil(f.To)
				s.Equal("confirmed", *f.Status)
				s.True(f.From.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))
				return nil, nil, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/provider/bookings?from=2025-03-03T00:00:00Z&status=confirmed&cursor=abc&limit=5", nil, providerToken)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("error: malformed timestamp", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/provider/bookings?from=yesterday", nil, providerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "RFC 3339")
	})

	s.Run("error: zero limit", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/provider/bookings?limit=0", nil, providerToken)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: customer token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/provider/bookings", nil, customerToken)
		s.Equal(http.StatusForbidden, rec.Code)
	})
}

// ================================================================================
// TestProviderTransitions
// ================================================================================

func (s *BookingHandlerTestSuite) TestProviderTransitions() {
	target := uuid.New()
	provider := actor.Actor{ID: s.providerID.String(), Role: actor.RoleProvider}
	done := builder.NewBookingBuilder().MustConfirmed()

	s.Run("no-show before start answers 409", func() {
		s.mockCommands.EXPECT().MarkNoShow(gomock.Any(), target, provider).Return(nil, booking.ErrNotStarted)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/bookings/"+target.String()+"/no-show", nil, providerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "has not started")
	})

	s.Run("complete", func() {
		s.mockCommands.EXPECT().Complete(gomock.Any(), target, provider).Return(done, nil)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/bookings/"+target.String()+"/complete", nil, providerToken)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("resolve: outcome must be a ruling", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/bookings/"+target.String()+"/disputes/resolve",
			map[string]any{"outcome": "pending"}, providerToken)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("resolve: admin may rule", func() {
		s.mockCommands.EXPECT().
			ResolveDispute(gomock.Any(), target, gomock.Any(), "resolved_customer", "refund in full").
			Return(done, nil)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/bookings/"+target.String()+"/disputes/resolve",
			map[string]any{"outcome": "resolved_customer", "notes": "refund in full"}, adminToken)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("resolve: customer may not rule", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/bookings/"+target.String()+"/disputes/resolve",
			map[string]any{"outcome": "resolved_customer"}, customerToken)
		s.Equal(http.StatusForbidden, rec.Code)
	})
}
