// Package identity defines the capabilities consumed from the managed identity
// provider and an Amazon Cognito user pool implementation of them.
package identity

import (
	"context"
	"strings"
	"time"
)

// AuthFlow selects how InitiateAuth authenticates a user.
type AuthFlow string

const (
	// FlowUserPassword authenticates with USERNAME and PASSWORD parameters.
	FlowUserPassword AuthFlow = "USER_PASSWORD_AUTH"
	// FlowRefreshToken exchanges a REFRESH_TOKEN parameter for new tokens.
	FlowRefreshToken AuthFlow = "REFRESH_TOKEN_AUTH"
)

// Auth parameter names understood by the provider.
const (
	ParamUsername     = "USERNAME"
	ParamPassword     = "PASSWORD"
	ParamRefreshToken = "REFRESH_TOKEN"
)

// AttributeEmail is the standard email user attribute.
const AttributeEmail = "email"

// AuthParams are the flow specific parameters sent to InitiateAuth.
type AuthParams map[string]string

// Attribute is a single user attribute.
type Attribute struct {
	Name  string
	Value string
}

// SignUpInput holds the data submitted when creating a user.
type SignUpInput struct {
	Username   string
	Password   string
	Attributes []Attribute
}

// Tokens are the credentials issued after successful authentication.
// RefreshToken is empty for the refresh token flow.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AuthResult is the outcome of InitiateAuth: either Tokens or a ChallengeName.
type AuthResult struct {
	Tokens        *Tokens
	ChallengeName string
	Session       string
}

// User is a user record held by the provider.
type User struct {
	Username   string
	Status     string
	Enabled    bool
	Attributes []Attribute
}

// Attribute returns the value of the named attribute, or "" if it is absent.
func (u *User) Attribute(name string) string {
	for _, a := range u.Attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Provider is the narrow set of identity provider operations the adapter
// and the trigger rely on.
type Provider interface {
	SignUp(ctx context.Context, input SignUpInput) error
	InitiateAuth(ctx context.Context, flow AuthFlow, params AuthParams) (*AuthResult, error)
	AdminGetUser(ctx context.Context, userPoolID, username string) (*User, error)
	ListUsers(ctx context.Context, userPoolID, filter string) ([]User, error)
}

var filterEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EmailFilter returns the exact match ListUsers filter for email.
func EmailFilter(email string) string {
	return AttributeEmail + `="` + filterEscaper.Replace(email) + `"`
}
