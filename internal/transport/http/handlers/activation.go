package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/infra/logger"
	"github.com/avelir/registration-service/internal/infra/telemetry"
	"github.com/avelir/registration-service/internal/transport/http/middleware"
	"github.com/avelir/registration-service/internal/usecase"
)

// ActivationHandler exposes the activation endpoint over the configured workflow.
type ActivationHandler struct {
	workflow  usecase.Workflow
	telemetry *telemetry.Provider
}

func NewActivationHandler(workflow usecase.Workflow, provider *telemetry.Provider) *ActivationHandler {
	return &ActivationHandler{workflow: workflow, telemetry: provider}
}

// Activate redeems an activation key. Every failure mode maps to the same
// response; the distinct cause is logged and counted but never exposed, so
// the endpoint cannot be used to probe which accounts exist.
func (h *ActivationHandler) Activate(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "activation key is required"))
		return
	}

	result, err := h.workflow.Activate(c.Request.Context(), key, middleware.GetRequestContext(c))
	if err != nil {
		if ae, ok := usecase.AsActivationError(err); ok {
			h.telemetry.ObserveActivation(h.workflow.Name(), ae.Code)
			logger.WithContext(c.Request.Context()).Info("activation rejected",
				zap.String("code", ae.Code))
			c.JSON(http.StatusBadRequest, NewErrorResponse(c,
				"this activation key is invalid or has expired"))
			return
		}
		h.telemetry.ObserveActivation(h.workflow.Name(), "error")
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to activate account"))
		return
	}

	h.telemetry.ObserveActivation(h.workflow.Name(), "activated")

	c.JSON(http.StatusOK, ActivateResponse{
		Message: "account activated",
		Account: newAccountSummary(*result.Account),
	})
}
