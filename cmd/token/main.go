// Command token issues an API access token for a host application.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"shared-wallet-backend/internal/config"
	"shared-wallet-backend/internal/security"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	clientID := flag.String("client", "", "Client id to embed in the token")
	scope := flag.String("scope", "", "Comma-separated scopes (wallets:read, wallets:write); empty issues an unrestricted token")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *clientID == "" {
		log.Fatal("-client is required")
	}

	var scopes []string
	for _, s := range strings.Split(*scope, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}

	tm := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.AccessTokenTTL())
	token, err := tm.GenerateAccessToken(*clientID, scopes)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
