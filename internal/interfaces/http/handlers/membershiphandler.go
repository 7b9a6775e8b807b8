package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/application/membership/dto"
	"github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

type membershipUseCase interface {
	Execute(ctx context.Context, membershipID uint) (*dto.MembershipResponse, error)
}

type MembershipHandler struct {
	getMembershipUC    membershipUseCase
	cancelMembershipUC membershipUseCase
	logger             logger.Interface
}

func NewMembershipHandler(getMembershipUC, cancelMembershipUC membershipUseCase, logger logger.Interface) *MembershipHandler {
	return &MembershipHandler{
		getMembershipUC:    getMembershipUC,
		cancelMembershipUC: cancelMembershipUC,
		logger:             logger,
	}
}

// @Summary		Get membership
// @Tags			memberships
// @Produce		json
// @Security		APIKey
// @Param			id	path		int												true	"Membership ID"
// @Success		200	{object}	utils.APIResponse{data=dto.MembershipResponse}	"Membership"
// @Failure		404	{object}	utils.APIResponse								"Membership not found"
// @Router			/api/v1/memberships/{id} [get]
func (h *MembershipHandler) GetMembership(c *gin.Context) {
	id, err := parseIDParam(c, "id", "membership")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getMembershipUC.Execute(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// @Summary		Cancel membership
// @Description	Cancel the membership at its gateway and mark it cancelled
// @Tags			memberships
// @Produce		json
// @Security		APIKey
// @Param			id	path		int												true	"Membership ID"
// @Success		200	{object}	utils.APIResponse{data=dto.MembershipResponse}	"Membership cancelled"
// @Failure		404	{object}	utils.APIResponse								"Membership not found"
// @Router			/api/v1/memberships/{id}/cancel [post]
func (h *MembershipHandler) CancelMembership(c *gin.Context) {
	id, err := parseIDParam(c, "id", "membership")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.cancelMembershipUC.Execute(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to cancel membership", "error", err, "membership_id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "membership cancelled successfully", result)
}

// parseIDParam extracts and validates a numeric ID from a URL parameter
func parseIDParam(c *gin.Context, param, name string) (uint, error) {
	idStr := c.Param(param)
	if idStr == "" {
		return 0, errors.NewValidationError(name + " ID is required")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, errors.NewValidationError("Invalid " + name + " ID format")
	}
	if id == 0 {
		return 0, errors.NewValidationError(name + " ID cannot be zero")
	}

	return uint(id), nil
}
