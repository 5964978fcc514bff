// Package trigger implements user pool Lambda triggers.
package trigger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/allthepins/identity-adapter/internal/identity"
	"github.com/aws/aws-lambda-go/events"
)

// ErrEmailAlreadyRegistered rejects a sign-up whose email belongs to an existing user.
// The message is shown to the signing-up user as is.
var ErrEmailAlreadyRegistered = errors.New("Email address already registered") //nolint:staticcheck // user facing message

// PreSignupHandler rejects sign-ups for email addresses that are already in the pool.
//
// The check and the sign-up that follows are not atomic: two concurrent
// sign-ups for the same address can both pass.
type PreSignupHandler struct {
	provider identity.Provider
	logger   *slog.Logger
}

// NewPreSignupHandler creates a handler that queries provider.
func NewPreSignupHandler(provider identity.Provider, logger *slog.Logger) (*PreSignupHandler, error) {
	if provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &PreSignupHandler{provider: provider, logger: logger}, nil
}

// Handle returns evt unchanged to allow the sign-up, or an error to deny it.
func (h *PreSignupHandler) Handle(ctx context.Context, evt events.CognitoEventUserPoolsPreSignup) (events.CognitoEventUserPoolsPreSignup, error) {
	log := h.logger.With("trigger", evt.TriggerSource, "user_pool_id", evt.UserPoolID)

	email := evt.Request.UserAttributes[identity.AttributeEmail]
	if email == "" {
		log.Info("skipping duplicate check because no email address was found")
		return evt, nil
	}

	users, err := h.provider.ListUsers(ctx, evt.UserPoolID, identity.EmailFilter(email))
	if err != nil {
		log.Error("failed to list users", "error", err)
		return evt, err
	}

	if len(users) > 0 {
		log.Info("sign-up denied", "reason", "email already registered", "matches", len(users))
		return evt, ErrEmailAlreadyRegistered
	}

	return evt, nil
}
