package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoAPI is the subset of the Cognito user pools SDK client in use.
// *cognitoidentityprovider.Client satisfies it.
type CognitoAPI interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	AdminGetUser(ctx context.Context, params *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
	ListUsers(ctx context.Context, params *cip.ListUsersInput, optFns ...func(*cip.Options)) (*cip.ListUsersOutput, error)
}

// ClientOptions configures the SDK client built by NewCognitoClient.
type ClientOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the service endpoint, e.g. for a local emulator.
	Endpoint string
}

// NewCognitoClient builds a Cognito user pools SDK client from the default
// AWS credential chain, overridden by any values set in opts.
func NewCognitoClient(ctx context.Context, opts ClientOptions) (*cip.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return cip.NewFromConfig(awsCfg, func(o *cip.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

// Cognito implements Provider against a Cognito user pool app client.
// SDK errors are returned unwrapped so callers can inspect the API error code.
type Cognito struct {
	api      CognitoAPI
	clientID string
}

// ErrNoClientID is returned by app client operations when no client ID was configured.
var ErrNoClientID = errors.New("app client ID is required")

// NewCognito creates a provider for the given app client.
// The app client must not have a client secret. clientID may be empty when
// only the admin operations AdminGetUser and ListUsers are needed.
func NewCognito(api CognitoAPI, clientID string) (*Cognito, error) {
	if api == nil {
		return nil, errors.New("cognito client is required")
	}

	return &Cognito{api: api, clientID: clientID}, nil
}

// SignUp registers a new user through the app client.
func (c *Cognito) SignUp(ctx context.Context, input SignUpInput) error {
	if c.clientID == "" {
		return ErrNoClientID
	}

	_, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(c.clientID),
		Username:       aws.String(input.Username),
		Password:       aws.String(input.Password),
		UserAttributes: toAttributeTypes(input.Attributes),
	})
	return err
}

// InitiateAuth starts the given auth flow.
func (c *Cognito) InitiateAuth(ctx context.Context, flow AuthFlow, params AuthParams) (*AuthResult, error) {
	if c.clientID == "" {
		return nil, ErrNoClientID
	}

	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId:       aws.String(c.clientID),
		AuthFlow:       types.AuthFlowType(flow),
		AuthParameters: params,
	})
	if err != nil {
		return nil, err
	}

	result := &AuthResult{
		ChallengeName: string(out.ChallengeName),
		Session:       aws.ToString(out.Session),
	}

	if r := out.AuthenticationResult; r != nil {
		result.Tokens = &Tokens{
			AccessToken:  aws.ToString(r.AccessToken),
			IDToken:      aws.ToString(r.IdToken),
			RefreshToken: aws.ToString(r.RefreshToken),
			ExpiresIn:    time.Duration(r.ExpiresIn) * time.Second,
		}
	}

	return result, nil
}

// AdminGetUser looks a user up by username.
func (c *Cognito) AdminGetUser(ctx context.Context, userPoolID, username string) (*User, error) {
	out, err := c.api.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, err
	}

	return &User{
		Username:   aws.ToString(out.Username),
		Status:     string(out.UserStatus),
		Enabled:    out.Enabled,
		Attributes: fromAttributeTypes(out.UserAttributes),
	}, nil
}

// ListUsers returns every user in the pool matching filter, following pagination.
func (c *Cognito) ListUsers(ctx context.Context, userPoolID, filter string) ([]User, error) {
	input := &cip.ListUsersInput{
		UserPoolId: aws.String(userPoolID),
	}
	if filter != "" {
		input.Filter = aws.String(filter)
	}

	var users []User
	paginator := cip.NewListUsersPaginator(c.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, u := range page.Users {
			users = append(users, User{
				Username:   aws.ToString(u.Username),
				Status:     string(u.UserStatus),
				Enabled:    u.Enabled,
				Attributes: fromAttributeTypes(u.Attributes),
			})
		}
	}

	return users, nil
}

func toAttributeTypes(attrs []Attribute) []types.AttributeType {
	out := make([]types.AttributeType, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, types.AttributeType{
			Name:  aws.String(a.Name),
			Value: aws.String(a.Value),
		})
	}
	return out
}

func fromAttributeTypes(attrs []types.AttributeType) []Attribute {
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, Attribute{
			Name:  aws.ToString(a.Name),
			Value: aws.ToString(a.Value),
		})
	}
	return out
}
