// Command debug replays pre sign-up events from a JSON file against a real user pool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/allthepins/identity-adapter/internal/config"
	"github.com/allthepins/identity-adapter/internal/identity"
	"github.com/allthepins/identity-adapter/internal/platform/logger"
	"github.com/allthepins/identity-adapter/internal/trigger"
	"github.com/aws/aws-lambda-go/events"
	"github.com/joho/godotenv"
)

func main() {
	var dataPath string
	flag.StringVar(&dataPath, "data", filepath.Join("fixtures", "debug-data.json"), "path to JSON file with pre sign-up events")
	flag.Parse()

	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	cfg, err := config.LoadTrigger()
	if err != nil {
		logger.New("debug", "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New("debug", cfg.Server.LogLevel)

	ctx := context.Background()
	client, err := identity.NewCognitoClient(ctx, identity.ClientOptions{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.CognitoEndpoint,
	})
	if err != nil {
		log.Error("failed to init cognito client", "error", err)
		os.Exit(1)
	}

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

	data, err := os.ReadFile(dataPath)
	if err != nil {
		log.Error("failed to read data file", "path", dataPath, "error", err)
		os.Exit(1)
	}

	var evts []events.CognitoEventUserPoolsPreSignup
	if err := json.Unmarshal(data, &evts); err != nil {
		log.Error("failed to parse event file", "error", err)
		os.Exit(1)
	}

	denied := 0
	for i, e := range evts {
		rErr := ""
		if _, err := h.Handle(ctx, e); err != nil {
			rErr = err.Error()
			denied++
		}
		log.Info("event handled", "index", i, "email", e.Request.UserAttributes[identity.AttributeEmail], "error", rErr)
	}

	log.Info("replay completed", "events", len(evts), "denied", denied)
}
