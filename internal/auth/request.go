package auth

import (
	"time"

	"github.com/allthepins/identity-adapter/internal/identity"
)

// RegistrationRequest holds the data needed to register a user.
type RegistrationRequest struct {
	Email    string
	Password string
}

// AuthenticationRequest is either Credentials or RefreshToken.
type AuthenticationRequest interface {
	flow() identity.AuthFlow
	params() identity.AuthParams
}

// Credentials authenticates with a username and password.
type Credentials struct {
	Username string
	Password string
}

func (Credentials) flow() identity.AuthFlow { return identity.FlowUserPassword }

func (c Credentials) params() identity.AuthParams {
	return identity.AuthParams{
		identity.ParamUsername: c.Username,
		identity.ParamPassword: c.Password,
	}
}

// RefreshToken authenticates with a previously issued refresh token.
type RefreshToken struct {
	Token string
}

func (RefreshToken) flow() identity.AuthFlow { return identity.FlowRefreshToken }

func (r RefreshToken) params() identity.AuthParams {
	return identity.AuthParams{
		identity.ParamRefreshToken: r.Token,
	}
}

// Token is a token together with the time it stops being accepted.
type Token struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// TokenPair is returned by Authenticate. Refresh is only set when the user
// authenticated with credentials.
type TokenPair struct {
	Access  Token  `json:"access"`
	Refresh *Token `json:"refresh,omitempty"`
}
