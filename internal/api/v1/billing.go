package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signalforge/signalforge/internal/api/dto"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/service"
	"github.com/signalforge/signalforge/internal/types"
)

type BillingHandler struct {
	reconciliation service.ReconciliationService
	log            *logger.Logger
}

func NewBillingHandler(reconciliation service.ReconciliationService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		reconciliation: reconciliation,
		log:            log,
	}
}

// @Summary Sync the authenticated user's subscription state
// @Description Re-derives the subscription snapshot from the payment provider and persists it
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SyncSubscriptionResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/sync [post]
func (h *BillingHandler) SyncNow(c *gin.Context) {
	userID := types.GetUserID(c.Request.Context())
	if userID == "" {
		c.Error(ierr.NewError("no authenticated user").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	metadata, err := h.reconciliation.SyncUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorw("subscription sync failed", "user_id", userID, "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Unable to sync subscription").
			Mark(ierr.ErrInternal))
		return
	}

	c.JSON(http.StatusOK, dto.NewSyncSubscriptionResponse(metadata))
}

// @Summary Create a billing portal session
// @Description Thin pass-through to the payment provider's billing portal
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PortalSessionResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/portal [post]
func (h *BillingHandler) Portal(c *gin.Context) {
	userID := types.GetUserID(c.Request.Context())
	if userID == "" {
		c.Error(ierr.NewError("no authenticated user").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	var req dto.PortalSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	url, err := h.reconciliation.PortalURL(c.Request.Context(), userID, req.ReturnURL)
	if err != nil {
		h.log.Errorw("portal session creation failed", "user_id", userID, "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Unable to open billing portal").
			Mark(ierr.ErrInternal))
		return
	}

	c.JSON(http.StatusOK, dto.PortalSessionResponse{URL: url})
}
