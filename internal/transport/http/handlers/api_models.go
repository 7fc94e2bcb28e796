package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/validate"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// ValidationErrorResponse carries per-field failures for a rejected signup.
type ValidationErrorResponse struct {
	Error   string                `json:"error"`
	Fields  []validate.FieldError `json:"fields"`
	TraceID string                `json:"trace_id,omitempty"`
}

// AccountSummary describes the minimal account view returned by the API.
type AccountSummary struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Status       string     `json:"status"`
	IsActive     bool       `json:"is_active"`
	RegisteredAt time.Time  `json:"registered_at"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
}

func newAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		ID:           account.ID,
		Username:     account.Username,
		Email:        account.Email,
		Status:       string(account.Status),
		IsActive:     account.IsActive,
		RegisteredAt: account.RegisteredAt,
		ActivatedAt:  account.ActivatedAt,
	}
}

// SignupRequest defines the payload for the signup endpoint.
type SignupRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	AcceptTOS       bool   `json:"accept_tos"`
}

// SignupResponse describes a successful signup.
type SignupResponse struct {
	Message            string         `json:"message"`
	Account            AccountSummary `json:"account"`
	ActivationRequired bool           `json:"activation_required"`
}

// ActivateResponse describes a successful activation.
type ActivateResponse struct {
	Message string         `json:"message"`
	Account AccountSummary `json:"account"`
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports readiness of backing services.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
