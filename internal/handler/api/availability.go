package api

import (
	"net/http"

	reqdto "booking-engine/internal/handler/dto/request"
	resdto "booking-engine/internal/handler/dto/response"
	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/handler/middleware"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	cmds commands.AvailabilityCommands
	q    queries.AvailabilityQueries
}

func NewAvailabilityHandler(cmds commands.AvailabilityCommands, q queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{cmds: cmds, q: q}
}

// @Summary List availability rules
// @Tags provider
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.RuleResponse
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /provider/rules [get]
func (h *AvailabilityHandler) ListRules(c *gin.Context) {
	providerID, ok := requireProvider(c)
	if !ok {
		return
	}
	views, err := h.q.ListRules(c.Request.Context(), providerID)
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Failed to list rules")
		return
	}
	res, err := resdto.FromRuleViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Create availability rule
// @Description Weekly working window with optional break; times are HH:MM in the provider's time zone
// @Tags provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateRuleRequest true "Rule"
// @Success 201 {object} resdto.RuleResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /provider/rules [post]
func (h *AvailabilityHandler) CreateRule(c *gin.Context) {
	providerID, ok := requireProvider(c)
	if !ok {
		return
	}
	var req reqdto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	rule, err := h.cmds.CreateRule(c.Request.Context(), providerID, req.ToCommand())
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Create rule failed")
		return
	}
	c.JSON(http.StatusCreated, resdto.FromRule(rule))
}

// @Summary Update availability rule
// @Description Omitted fields keep their value; clear_break removes the break
// @Tags provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rule ID"
// @Param request body reqdto.UpdateRuleRequest true "Changes"
// @Success 200 {object} resdto.RuleResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /provider/rules/{id} [patch]
func (h *AvailabilityHandler) UpdateRule(c *gin.Context) {
	providerID, ok := requireProvider(c)
	if !ok {
		return
	}
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid rule ID format", nil)
		return
	}
	var req reqdto.UpdateRuleRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	rule, err := h.cmds.UpdateRule(c.Request.Context(), providerID, ruleID, cmd)
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Update rule failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromRule(rule))
}

// @Summary Delete availability rule
// @Tags provider
// @Security BearerAuth
// @Param id path string true "Rule ID"
// @Success 204 "No Content"
// @Failure 404 {object} httperr.Response
// @Router /provider/rules/{id} [delete]
func (h *AvailabilityHandler) DeleteRule(c *gin.Context) {
	providerID, ok := requireProvider(c)
	if !ok {
		return
	}
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid rule ID format", nil)
		return
	}
	if err := h.cmds.DeleteRule(c.Request.Context(), providerID, ruleID); err != nil {
		httperr.AbortWithDomainError(c, err, "Delete rule failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List blocked slots
// @Tags provider
// @Produce json
// @Security BearerAuth
// @Param from query string false "Window start (RFC 3339)"
// @Param to query string false "Window end (RFC 3339)"
// @Success 200 {array} resdto.BlockedSlotResponse
// @Failure 400 {object} httperr.Response
// @Router /provider/blocked-slots [get]
func (h *AvailabilityHandler) ListBlockedSlots(c *gin.Context) {
	providerID, ok := requireProvider(c)
	if !ok {
		return
	}
	var req reqdto.ListBlockedSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	from, to, err := req.Window()
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Invalid query parameters")
		return
	}
	views, err := h.q.ListBlockedSlots(c.Request.Context(), providerID, from, to)
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Failed to list blocked slots")
		return
	}
	res, err := resdto.FromBlockedSlotViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Block time
// @Tags provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBlockedSlotRequest true "Blocked interval"
// @Success 201 {object} resdto.BlockedSlotResponse
// @Failure 400 {object} httperr.Response
// @Router /provider/blocked-slots [post]
func (h *AvailabilityHandler) CreateBlockedSlot(c *gin.Context) {
	providerID, ok := requireProvider(c)
	if !ok {
		return
	}
	var req reqdto.CreateBlockedSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	blocked, err := h.cmds.CreateBlockedSlot(c.Request.Context(), providerID, cmd)
	if err != nil {
		httperr.AbortWithDomainError(c, err, "Create blocked slot failed")
		return
	}
	c.JSON(http.StatusCreated, resdto.FromBlockedSlot(blocked))
}

// @Summary Unblock time
// @Tags provider
// @Security BearerAuth
// @Param id path string true "Blocked slot ID"
// @Success 204 "No Content"
// @Failure 404 {object} httperr.Response
// @Router /provider/blocked-slots/{id} [delete]
func (h *AvailabilityHandler) DeleteBlockedSlot(c *gin.Context) {
	providerID, ok := requireProvider(c)
	if !ok {
		return
	}
	blockedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid blocked slot ID format", nil)
		return
	}
	if err := h.cmds.DeleteBlockedSlot(c.Request.Context(), providerID, blockedID); err != nil {
		httperr.AbortWithDomainError(c, err, "Delete blocked slot failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func requireProvider(c *gin.Context) (uuid.UUID, bool) {
	providerID, ok := middleware.ProviderID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusForbidden, errUnauthenticated, "Provider token required", nil)
		return uuid.Nil, false
	}
	return providerID, true
}
