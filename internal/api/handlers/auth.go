// Package handlers provides HTTP request handlers for API endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/allthepins/identity-adapter/internal/api/response"
	"github.com/allthepins/identity-adapter/internal/auth"
	"github.com/allthepins/identity-adapter/internal/verification"
	"github.com/aws/smithy-go"
)

// AuthService is the behaviour the handlers need from auth.Service.
type AuthService interface {
	Register(ctx context.Context, req auth.RegistrationRequest) (verification.Code, error)
	Authenticate(ctx context.Context, req auth.AuthenticationRequest) (*auth.TokenPair, error)
	ForgotPassword(ctx context.Context, username string) (verification.Code, error)
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	service     AuthService
	logger      *slog.Logger
	exposeCodes bool
}

// Option configures an AuthHandler.
type Option func(*AuthHandler)

// WithExposedCodes includes verification codes in responses.
// Codes are meant to travel out of band, so this is for local development only.
func WithExposedCodes(expose bool) Option {
	return func(h *AuthHandler) {
		h.exposeCodes = expose
	}
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service AuthService, logger *slog.Logger, opts ...Option) *AuthHandler {
	h := &AuthHandler{
		service: service,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest represents the token refresh request payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest represents the forgot password request payload.
type ForgotPasswordRequest struct {
	Username string `json:"username"`
}

// PendingResponse acknowledges an action awaiting out of band confirmation.
type PendingResponse struct {
	Status           string `json:"status"`
	VerificationCode string `json:"verificationCode,omitempty"`
}

const statusVerificationPending = "verification_pending"

// Register handles user registration.
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	code, err := h.service.Register(r.Context(), auth.RegistrationRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writePending(w, code)
}

// Login handles authentication with username and password.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.service.Authenticate(r.Context(), auth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, pair); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// Refresh handles exchanging a refresh token for a new access token.
// POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "refreshToken is required")
		return
	}

	pair, err := h.service.Authenticate(r.Context(), auth.RefreshToken{Token: req.RefreshToken})
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, pair); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// ForgotPassword handles password reset requests.
// Unknown users get the same response as known ones.
// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	code, err := h.service.ForgotPassword(r.Context(), req.Username)
	if providerErrorCode(err) == "UserNotFoundException" {
		h.logger.Info("password reset requested for unknown user")
		h.writePending(w, "")
		return
	}
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writePending(w, code)
}

// decode parses the JSON body into dst, writing a 400 response on failure.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return false
	}
	return true
}

func (h *AuthHandler) writePending(w http.ResponseWriter, code verification.Code) {
	resp := PendingResponse{Status: statusVerificationPending}
	if h.exposeCodes {
		resp.VerificationCode = string(code)
	}

	if err := response.JSON(w, http.StatusAccepted, resp); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := response.Error(w, status, code, message); err != nil {
		h.logger.Error("failed to write error response", "error", err)
	}
}

// handleError maps service and provider errors to appropriate HTTP responses.
func (h *AuthHandler) handleError(w http.ResponseWriter, err error) {
	var challengeErr *auth.ChallengeError

	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	case errors.As(err, &challengeErr):
		h.writeError(w, http.StatusUnauthorized, "CHALLENGE_REQUIRED", challengeErr.Error())
		return
	case errors.Is(err, auth.ErrInvalidAuthentication):
		h.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
		return
	}

	switch providerErrorCode(err) {
	case "UsernameExistsException", "AliasExistsException":
		h.writeError(w, http.StatusConflict, "USER_EXISTS", "An account with this identifier already exists")
	case "NotAuthorizedException", "UserNotFoundException":
		h.writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	case "InvalidPasswordException", "InvalidParameterException":
		h.writeError(w, http.StatusBadRequest, "INVALID_INPUT", providerErrorMessage(err))
	case "UserNotConfirmedException":
		h.writeError(w, http.StatusForbidden, "USER_NOT_CONFIRMED", "Account is not confirmed")
	case "TooManyRequestsException", "LimitExceededException":
		h.writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
	default:
		h.logger.Error("unexpected error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// providerErrorCode returns the identity provider's API error code, or "".
func providerErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func providerErrorMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return "Invalid input"
}
