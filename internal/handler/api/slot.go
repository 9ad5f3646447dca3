package api

import (
	"net/http"

	reqdto "booking-engine/internal/handler/dto/request"
	resdto "booking-engine/internal/handler/dto/response"
	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type SlotHandler struct {
	q queries.SlotQueries
}

func NewSlotHandler(q queries.SlotQueries) *SlotHandler {
	return &SlotHandler{q: q}
}

// @Summary List slots
// @Description Bookable slots of one provider for a calendar day, ordered by start
// @Tags slots
// @Produce json
// @Param slug path string true "Provider slug"
// @Param date query string true "Date (YYYY-MM-DD, provider time zone)"
// @Param duration query int false "Slot length in minutes"
// @Param serviceId query string false "Service ID (overrides duration)"
// @Success 200 {array} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /providers/{slug}/slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	var req reqdto.SlotQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	slots, err := h.q.ForDay(c.Request.Context(), req.ToQuery(c.Param("slug")))
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Failed to load slots")
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlots(slots))
}
