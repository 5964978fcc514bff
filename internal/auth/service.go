// Package auth adapts the managed identity provider and the verification
// service into register, authenticate and forgot-password operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/allthepins/identity-adapter/internal/identity"
	"github.com/allthepins/identity-adapter/internal/platform/jwt"
	"github.com/allthepins/identity-adapter/internal/verification"
	"github.com/google/uuid"
)

// DefaultAccessTokenExpiry is assumed when neither the provider response nor
// the access token states an expiry.
const DefaultAccessTokenExpiry = time.Hour

// Config holds the dependencies of a Service.
type Config struct {
	Provider   identity.Provider
	Verifier   verification.Issuer
	Logger     *slog.Logger
	UserPoolID string

	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// NewUsername generates provider usernames. Defaults to random v4 UUIDs.
	NewUsername func() string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service performs authentication against the identity provider.
// It holds no state between calls and never retries.
type Service struct {
	provider           identity.Provider
	verifier           verification.Issuer
	logger             *slog.Logger
	userPoolID         string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	newUsername        func() string
	now                func() time.Time
}

// NewService creates a new auth service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("verification issuer is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.UserPoolID == "" {
		return nil, errors.New("user pool ID is required")
	}
	if cfg.RefreshTokenExpiry <= 0 {
		return nil, errors.New("refresh token expiry is required")
	}

	s := &Service{
		provider:           cfg.Provider,
		verifier:           cfg.Verifier,
		logger:             cfg.Logger,
		userPoolID:         cfg.UserPoolID,
		accessTokenExpiry:  cfg.AccessTokenExpiry,
		refreshTokenExpiry: cfg.RefreshTokenExpiry,
		newUsername:        cfg.NewUsername,
		now:                cfg.Now,
	}
	if s.accessTokenExpiry <= 0 {
		s.accessTokenExpiry = DefaultAccessTokenExpiry
	}
	if s.newUsername == nil {
		s.newUsername = uuid.NewString
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

// Register signs a new user up under a generated username and issues the code
// that confirms the registration.
// If issuing the code fails the user already exists in the provider; nothing is rolled back.
func (s *Service) Register(ctx context.Context, req RegistrationRequest) (verification.Code, error) {
	if req.Email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if req.Password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	username := s.newUsername()

	err := s.provider.SignUp(ctx, identity.SignUpInput{
		Username: username,
		Password: req.Password,
		Attributes: []identity.Attribute{
			{Name: identity.AttributeEmail, Value: req.Email},
		},
	})
	if err != nil {
		return "", err
	}

	code, err := s.verifier.Issue(ctx, verification.Request{
		Purpose:  verification.PurposeSignUp,
		Username: username,
		Email:    req.Email,
	})
	if err != nil {
		s.logger.Warn("user signed up without verification code", "username", username, "error", err)
		return "", err
	}

	s.logger.Info("user registered", "username", username)
	return code, nil
}

// Authenticate exchanges credentials or a refresh token for tokens.
func (s *Service) Authenticate(ctx context.Context, req AuthenticationRequest) (*TokenPair, error) {
	viaCredentials := false

	switch r := req.(type) {
	case Credentials:
		if r.Username == "" || r.Password == "" {
			return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
		}
		viaCredentials = true
	case RefreshToken:
		if r.Token == "" {
			return nil, fmt.Errorf("%w: refresh token is required", ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported authentication request %T", ErrInvalidInput, req)
	}

	result, err := s.provider.InitiateAuth(ctx, req.flow(), req.params())
	if err != nil {
		return nil, err
	}

	if result.ChallengeName != "" {
		s.logger.Info("authentication challenge rejected", "challenge", result.ChallengeName)
		return nil, &ChallengeError{Name: result.ChallengeName}
	}
	if result.Tokens == nil || result.Tokens.AccessToken == "" {
		return nil, ErrInvalidAuthentication
	}

	now := s.now()
	pair := &TokenPair{
		Access: Token{
			Token:   result.Tokens.AccessToken,
			Expires: s.accessExpiry(now, result.Tokens),
		},
	}

	if viaCredentials && result.Tokens.RefreshToken != "" {
		pair.Refresh = &Token{
			Token:   result.Tokens.RefreshToken,
			Expires: now.Add(s.refreshTokenExpiry),
		}
	}

	if sub, err := jwt.Subject(result.Tokens.AccessToken); err == nil {
		s.logger.Debug("user authenticated", "sub", sub, "flow", string(req.flow()))
	}

	return pair, nil
}

// ForgotPassword confirms the user exists and issues a password reset code.
func (s *Service) ForgotPassword(ctx context.Context, username string) (verification.Code, error) {
	if username == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	user, err := s.provider.AdminGetUser(ctx, s.userPoolID, username)
	if err != nil {
		return "", err
	}

	// The lookup may resolve an alias such as an email to the canonical username.
	if user.Username != "" {
		username = user.Username
	}

	code, err := s.verifier.Issue(ctx, verification.Request{
		Purpose:  verification.PurposePasswordReset,
		Username: username,
		Email:    user.Attribute(identity.AttributeEmail),
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("password reset requested", "username", username)
	return code, nil
}

// accessExpiry prefers the provider's stated lifetime, then the token's exp claim.
func (s *Service) accessExpiry(now time.Time, tokens *identity.Tokens) time.Time {
	if tokens.ExpiresIn > 0 {
		return now.Add(tokens.ExpiresIn)
	}
	if exp, err := jwt.ExpiresAt(tokens.AccessToken); err == nil {
		return exp
	}
	return now.Add(s.accessTokenExpiry)
}
