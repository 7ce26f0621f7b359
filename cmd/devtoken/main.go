// Command devtoken signs an access token with AUTH_JWT_SECRET for local use.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"moviecatalog/pkg/config"
	"moviecatalog/pkg/jwt"
)

func main() {
	var (
		subject string
		role    string
	)
	flag.StringVar(&subject, "sub", "local-dev", "Token subject")
	flag.StringVar(&role, "role", jwt.RoleAdmin, "Role claim (admin or user)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	token, err := jwt.NewJWTProvider(cfg.Auth.JWTSecret, cfg.TokenTTL()).GenerateAccessToken(subject, role)
	if err != nil {
		slog.Error("cannot sign token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
