package api

import (
	"errors"
	"io"
	"net/http"

	"booking-engine/internal/domain/actor"
	"booking-engine/internal/domain/booking"
	reqdto "booking-engine/internal/handler/dto/request"
	resdto "booking-engine/internal/handler/dto/response"
	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/handler/middleware"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errUnauthenticated = errors.New("no authenticated actor")

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Book a slot of a provider's service. The response carries the manage token for later actions.
// @Tags bookings
// @Accept json
// @Produce json
// @Param slug path string true "Provider slug"
// @Param Idempotency-Key header string false "Replays the first result for a repeated key"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 200 {object} resdto.CreateBookingResponse "Replayed"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /providers/{slug}/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	cmd, err := req.ToCommand(c.Param("slug"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	cmd.IdempotencyKey = c.GetHeader(middleware.IdempotencyKeyHeader)

	result, err := h.cmds.Create(c.Request.Context(), cmd)
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Create booking failed")
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.CreateBookingResponse{
		Booking:     resdto.FromBooking(result.Booking),
		ManageToken: result.ManageToken,
	})
}

// @Summary Get booking
// @Description Get a booking as its provider or with its manage token
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, a, ok := bookingTarget(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id, a)
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Not found")
		return
	}
	res, err := resdto.FromBookingView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Cancel booking
// @Description Cancel a pending or confirmed booking. Refund and fee follow the booking's policy snapshot.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, a, ok := bookingTarget(c)
	if !ok {
		return
	}
	var req reqdto.CancelBookingRequest
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	h.respond(c, func() (*booking.Booking, error) {
		return h.cmds.Cancel(c.Request.Context(), id, a, req.Reason)
	})
}

// @Summary Open dispute
// @Description Customer disputes a completed, no-show or cancelled booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.OpenDisputeRequest true "Dispute reason"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/disputes [post]
func (h *BookingHandler) OpenDispute(c *gin.Context) {
	id, a, ok := bookingTarget(c)
	if !ok {
		return
	}
	var req reqdto.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	h.respond(c, func() (*booking.Booking, error) {
		return h.cmds.OpenDispute(c.Request.Context(), id, a, req.Reason)
	})
}

// @Summary List bookings
// @Description Provider's bookings ordered by start, filtered by window and status
// @Tags provider
// @Produce json
// @Security BearerAuth
// @Param from query string false "Window start (RFC 3339)"
// @Param to query string false "Window end (RFC 3339)"
// @Param status query string false "Booking status"
// @Param cursor query string false "Pagination cursor"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /provider/bookings [get]
func (h *BookingHandler) ListForProvider(c *gin.Context) {
	providerID, ok := requireProvider(c)
	if !ok {
		return
	}
	var req reqdto.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	filters, err := req.ToFilters()
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Invalid query parameters")
		return
	}
	items, next, err := h.q.ListForProvider(c.Request.Context(), providerID, filters, req.GetCursor(), req.GetLimit())
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingList(items, next))
}

// @Summary Mark no-show
// @Tags provider
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /provider/bookings/{id}/no-show [post]
func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	id, a, ok := bookingTarget(c)
	if !ok {
		return
	}
	h.respond(c, func() (*booking.Booking, error) {
		return h.cmds.MarkNoShow(c.Request.Context(), id, a)
	})
}

// @Summary Complete booking
// @Tags provider
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /provider/bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	id, a, ok := bookingTarget(c)
	if !ok {
		return
	}
	h.respond(c, func() (*booking.Booking, error) {
		return h.cmds.Complete(c.Request.Context(), id, a)
	})
}

// @Summary Resolve dispute
// @Description Provider or admin rules on an open dispute
// @Tags provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ResolveDisputeRequest true "Ruling"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /provider/bookings/{id}/disputes/resolve [post]
func (h *BookingHandler) ResolveDispute(c *gin.Context) {
	id, a, ok := bookingTarget(c)
	if !ok {
		return
	}
	var req reqdto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	h.respond(c, func() (*booking.Booking, error) {
		return h.cmds.ResolveDispute(c.Request.Context(), id, a, req.Outcome, req.Notes)
	})
}

func (h *BookingHandler) respond(c *gin.Context, fn func() (*booking.Booking, error)) {
	b, err := fn()
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Booking action failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromBooking(b))
}

// bookingTarget reads the booking id and the acting party; it aborts on failure.
func bookingTarget(c *gin.Context) (uuid.UUID, actor.Actor, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return uuid.Nil, actor.Actor{}, false
	}
	a, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Unauthorized", nil)
		return uuid.Nil, actor.Actor{}, false
	}
	return id, a, true
}
