package main

import (
	"context"
	"os"

	"github.com/allthepins/identity-adapter/internal/config"
	"github.com/allthepins/identity-adapter/internal/identity"
	"github.com/allthepins/identity-adapter/internal/platform/logger"
	"github.com/allthepins/identity-adapter/internal/trigger"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.LoadTrigger()
	if err != nil {
		logger.New("presignup", "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New("presignup", cfg.Server.LogLevel)

	client, err := identity.NewCognitoClient(context.Background(), identity.ClientOptions{
		Region:   cfg.AWS.Region,
		Endpoint: cfg.AWS.CognitoEndpoint,
	})
	if err != nil {
		log.Error("failed to init cognito client", "error", err)
		os.Exit(1)
	}

	// The trigger only lists users, which needs no app client.
	provider, err := identity.NewCognito(client, "")
	if err != nil {
		log.Error("failed to init identity provider", "error", err)
		os.Exit(1)
	}

	h, err := trigger.NewPreSignupHandler(provider, log)
	if err != nil {
		log.Error("failed to init handler", "error", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
