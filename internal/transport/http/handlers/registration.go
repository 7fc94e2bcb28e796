package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelir/registration-service/internal/infra/telemetry"
	"github.com/avelir/registration-service/internal/transport/http/middleware"
	"github.com/avelir/registration-service/internal/usecase"
)

// RegistrationHandler exposes the signup endpoint over the configured workflow.
type RegistrationHandler struct {
	workflow  usecase.Workflow
	telemetry *telemetry.Provider
}

func NewRegistrationHandler(workflow usecase.Workflow, provider *telemetry.Provider) *RegistrationHandler {
	return &RegistrationHandler{workflow: workflow, telemetry: provider}
}

// Signup creates a new account through the configured workflow. Validation
// failures are reported per field with stable codes so clients can attach
// messages to the right form inputs.
func (h *RegistrationHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid signup payload"))
		return
	}

	input := usecase.SignupInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		AcceptedTOS:     req.AcceptTOS,
	}

	result, err := h.workflow.Register(c.Request.Context(), input, middleware.GetRequestContext(c))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRegistrationClosed):
			h.telemetry.ObserveRegistration(h.workflow.Name(), "closed")
			c.JSON(http.StatusForbidden, NewErrorResponse(c, "registration is currently closed"))
		default:
			if fields, ok := usecase.AsValidationErrors(err); ok {
				h.telemetry.ObserveRegistration(h.workflow.Name(), "rejected")
				c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
					Error:   "signup was rejected",
					Fields:  fields,
					TraceID: middleware.GetTraceID(c),
				})
				return
			}
			h.telemetry.ObserveRegistration(h.workflow.Name(), "error")
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to register account"))
		}
		return
	}

	h.telemetry.ObserveRegistration(h.workflow.Name(), "accepted")

	message := "account created; check your email for activation instructions"
	if !result.ActivationRequired {
		message = "account created"
	}

	c.JSON(http.StatusCreated, SignupResponse{
		Message:            message,
		Account:            newAccountSummary(*result.Account),
		ActivationRequired: result.ActivationRequired,
	})
}
