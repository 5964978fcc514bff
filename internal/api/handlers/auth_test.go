package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/allthepins/identity-adapter/internal/api/handlers"
	"github.com/allthepins/identity-adapter/internal/auth"
	"github.com/allthepins/identity-adapter/internal/verification"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockAuthService mocks the handlers.AuthService interface
type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req auth.RegistrationRequest) (verification.Code, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(verification.Code), args.Error(1)
}

func (m *mockAuthService) Authenticate(ctx context.Context, req auth.AuthenticationRequest) (*auth.TokenPair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenPair), args.Error(1)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, username string) (verification.Code, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(verification.Code), args.Error(1)
}

type handlerCase struct {
	name          string
	requestBody   any
	mockSetup     func(*mockAuthService)
	opts          []handlers.Option
	wantStatus    int
	wantErrorCode string // Expected error code in response
	checkResponse func(*testing.T, *httptest.ResponseRecorder)
}

// runHandlerCases executes each case against the handler method picked by route.
func runHandlerCases(t *testing.T, path string, route func(*handlers.AuthHandler) http.HandlerFunc, tests []handlerCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockService := new(mockAuthService)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}

			logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
			handler := handlers.NewAuthHandler(mockService, logger, tt.opts...)

			// Create request
			var body []byte
			switch v := tt.requestBody.(type) {
			case string:
				body = []byte(v)
			default:
				body, _ = json.Marshal(v)
			}

			req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute
			route(handler)(w, req)

			// Assert status code
			assert.Equal(t, tt.wantStatus, w.Code)

			// Assert error code if specified
			if tt.wantErrorCode != "" {
				var errResp struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				err := json.Unmarshal(w.Body.Bytes(), &errResp)
				require.NoError(t, err)
				assert.Equal(t, tt.wantErrorCode, errResp.Code)
			}

			// Run custom response checks
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}

			// Verify mock expectations
			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Register(t *testing.T) {
	validBody := map[string]any{
		"email":    "test@example.com",
		"password": "SecurePass123!",
	}

	runHandlerCases(t, "/auth/register", func(h *handlers.AuthHandler) http.HandlerFunc { return h.Register }, []handlerCase{
		{
			name:        "successful registration",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, auth.RegistrationRequest{
					Email:    "test@example.com",
					Password: "SecurePass123!",
				}).Return(verification.Code("code-123"), nil)
			},
			wantStatus: http.StatusAccepted,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp handlers.PendingResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "verification_pending", resp.Status)
				assert.Empty(t, resp.VerificationCode, "codes must not leak by default")
			},
		},
		{
			name:        "exposed verification code",
			requestBody: validBody,
			opts:        []handlers.Option{handlers.WithExposedCodes(true)},
			mockSetup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).Return(verification.Code("code-123"), nil)
			},
			wantStatus: http.StatusAccepted,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp handlers.PendingResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "code-123", resp.VerificationCode)
			},
		},
		{
			name:          "invalid JSON body",
			requestBody:   `{invalid json}`,
			wantStatus:    http.StatusBadRequest,
			wantErrorCode: "BAD_REQUEST",
		},
		{
			name:        "invalid input",
			requestBody: map[string]any{"password": "SecurePass123!"},
			mockSetup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(verification.Code(""), fmt.Errorf("%w: email is required", auth.ErrInvalidInput))
			},
			wantStatus:    http.StatusBadRequest,
			wantErrorCode: "INVALID_INPUT",
		},
		{
			name:        "user already exists",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(verification.Code(""), &types.UsernameExistsException{Message: aws.String("User already exists")})
			},
			wantStatus:    http.StatusConflict,
			wantErrorCode: "USER_EXISTS",
		},
		{
			name:        "password rejected by pool policy",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(verification.Code(""), &types.InvalidPasswordException{Message: aws.String("Password did not conform with policy")})
			},
			wantStatus:    http.StatusBadRequest,
			wantErrorCode: "INVALID_INPUT",
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Contains(t, w.Body.String(), "Password did not conform with policy")
			},
		},
		{
			name:        "internal server error",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(verification.Code(""), errors.New("verification store unavailable"))
			},
			wantStatus:    http.StatusInternalServerError,
			wantErrorCode: "INTERNAL_ERROR",
		},
	})
}

func TestAuthHandler_Login(t *testing.T) {
	validBody := map[string]any{
		"username": "user",
		"password": "SecurePass123!",
	}
	expires := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	runHandlerCases(t, "/auth/login", func(h *handlers.AuthHandler) http.HandlerFunc { return h.Login }, []handlerCase{
		{
			name:        "successful login",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Authenticate", mock.Anything, auth.Credentials{Username: "user", Password: "SecurePass123!"}).
					Return(&auth.TokenPair{
						Access:  auth.Token{Token: "access-token", Expires: expires},
						Refresh: &auth.Token{Token: "refresh-token", Expires: expires.Add(30 * 24 * time.Hour)},
					}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp auth.TokenPair
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "access-token", resp.Access.Token)
				assert.True(t, resp.Access.Expires.Equal(expires))
				require.NotNil(t, resp.Refresh)
				assert.Equal(t, "refresh-token", resp.Refresh.Token)
			},
		},
		{
			name:        "invalid credentials",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Authenticate", mock.Anything, mock.Anything).
					Return(nil, &types.NotAuthorizedException{Message: aws.String("Incorrect username or password.")})
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_CREDENTIALS",
		},
		{
			name:        "user not found",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Authenticate", mock.Anything, mock.Anything).
					Return(nil, &types.UserNotFoundException{Message: aws.String("User does not exist.")})
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_CREDENTIALS", // Intentionally obscure "user not found"
		},
		{
			name:        "challenge required",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Authenticate", mock.Anything, mock.Anything).
					Return(nil, &auth.ChallengeError{Name: "SMS_MFA"})
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "CHALLENGE_REQUIRED",
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Contains(t, w.Body.String(), `Invalid authentication: challenge \"SMS_MFA\"`)
			},
		},
		{
			name:        "user not confirmed",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Authenticate", mock.Anything, mock.Anything).
					Return(nil, &types.UserNotConfirmedException{Message: aws.String("User is not confirmed.")})
			},
			wantStatus:    http.StatusForbidden,
			wantErrorCode: "USER_NOT_CONFIRMED",
		},
		{
			name:        "rate limited",
			requestBody: validBody,
			mockSetup: func(m *mockAuthService) {
				m.On("Authenticate", mock.Anything, mock.Anything).
					Return(nil, &types.TooManyRequestsException{Message: aws.String("Rate exceeded")})
			},
			wantStatus:    http.StatusTooManyRequests,
			wantErrorCode: "RATE_LIMITED",
		},
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	runHandlerCases(t, "/auth/refresh", func(h *handlers.AuthHandler) http.HandlerFunc { return h.Refresh }, []handlerCase{
		{
			name:        "successful refresh",
			requestBody: map[string]any{"refreshToken": "valid-refresh-token"},
			mockSetup: func(m *mockAuthService) {
				m.On("Authenticate", mock.Anything, auth.RefreshToken{Token: "valid-refresh-token"}).
					Return(&auth.TokenPair{
						Access: auth.Token{Token: "new-access-token", Expires: time.Now().Add(time.Hour)},
					}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Contains(t, resp, "access")
				assert.NotContains(t, resp, "refresh")
			},
		},
		{
			name:        "invalid refresh token",
			requestBody: map[string]any{"refreshToken": "invalid-token"},
			mockSetup: func(m *mockAuthService) {
				m.On("Authenticate", mock.Anything, auth.RefreshToken{Token: "invalid-token"}).
					Return(nil, &types.NotAuthorizedException{Message: aws.String("Invalid Refresh Token")})
			},
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_CREDENTIALS",
		},
		{
			name:          "missing refresh token",
			requestBody:   map[string]any{},
			wantStatus:    http.StatusBadRequest,
			wantErrorCode: "BAD_REQUEST",
		},
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	runHandlerCases(t, "/auth/forgot-password", func(h *handlers.AuthHandler) http.HandlerFunc { return h.ForgotPassword }, []handlerCase{
		{
			name:        "successful request",
			requestBody: map[string]any{"username": "user"},
			opts:        []handlers.Option{handlers.WithExposedCodes(true)},
			mockSetup: func(m *mockAuthService) {
				m.On("ForgotPassword", mock.Anything, "user").Return(verification.Code("reset-code"), nil)
			},
			wantStatus: http.StatusAccepted,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp handlers.PendingResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "reset-code", resp.VerificationCode)
			},
		},
		{
			name:        "unknown user looks the same",
			requestBody: map[string]any{"username": "missing"},
			opts:        []handlers.Option{handlers.WithExposedCodes(true)},
			mockSetup: func(m *mockAuthService) {
				m.On("ForgotPassword", mock.Anything, "missing").
					Return(verification.Code(""), &types.UserNotFoundException{Message: aws.String("User does not exist.")})
			},
			wantStatus: http.StatusAccepted,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp handlers.PendingResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "verification_pending", resp.Status)
				assert.Empty(t, resp.VerificationCode)
			},
		},
		{
			name:        "verification failure",
			requestBody: map[string]any{"username": "user"},
			mockSetup: func(m *mockAuthService) {
				m.On("ForgotPassword", mock.Anything, "user").
					Return(verification.Code(""), errors.New("verification store unavailable"))
			},
			wantStatus:    http.StatusInternalServerError,
			wantErrorCode: "INTERNAL_ERROR",
		},
		{
			name:          "invalid JSON body",
			requestBody:   `not json`,
			wantStatus:    http.StatusBadRequest,
			wantErrorCode: "BAD_REQUEST",
		},
	})
}
