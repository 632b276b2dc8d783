// Test program to generate token pairs for a user id.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/openmeet/server/internal/auth"
	"github.com/openmeet/server/internal/config"
)

// nopTokenStore satisfies auth.TokenStore without a database. Refresh
// tokens minted here cannot be rotated against a live blacklist.
type nopTokenStore struct{}

func (nopTokenStore) Revoke(context.Context, string, uuid.UUID, time.Time) (bool, error) {
	return true, nil
}

func (nopTokenStore) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gentoken [-config file] <user-uuid>")
		os.Exit(1)
	}
	userID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid user id: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pair, err := auth.NewTokenManager(cfg.Auth, nopTokenStore{}).Issue(userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Access token:")
	fmt.Println(pair.AccessToken)
	fmt.Println("\nRefresh token:")
	fmt.Println(pair.RefreshToken)
	fmt.Println("\nTest with:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:%d/events/\n", pair.AccessToken, cfg.Server.Port)
}
