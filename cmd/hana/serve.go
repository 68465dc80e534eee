package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/maxvdec/hana/internal/cache"
	"github.com/maxvdec/hana/internal/config"
	"github.com/maxvdec/hana/server"
	"github.com/maxvdec/hana/server/token"
	"github.com/spf13/pflag"
)

const (
	envListen = "HANA_LISTEN_ADDRESS"
	envSecret = "HANA_TOKEN_SECRET"
	envDB     = "HANA_DATABASE"
)

// runServe implements "hana serve [--issue-token]": start the compile
// service, or (with --issue-token) sign and print a bearer token for an
// already-configured secret and exit without serving.
func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flagListen := fs.StringP("listen", "l", "", "Listen on the given ADDRESS:PORT.")
	flagSecret := fs.StringP("secret", "s", "", "Use the given secret for signing service tokens.")
	flagDB := fs.String("db", "", "Path to the sqlite compile cache database.")
	issueToken := fs.Bool("issue-token", false, "Sign and print a service token for the resolved secret, then exit.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	listenAddr := cfg.Server.BindAddr
	if v := os.Getenv(envListen); v != "" {
		listenAddr = v
	}
	if fs.Lookup("listen").Changed {
		listenAddr = *flagListen
	}

	dbPath := cfg.Server.DBPath
	if v := os.Getenv(envDB); v != "" {
		dbPath = v
	}
	if fs.Lookup("db").Changed {
		dbPath = *flagDB
	}

	secretStr := cfg.Server.TokenSecret
	if v := os.Getenv(envSecret); v != "" {
		secretStr = v
	}
	if fs.Lookup("secret").Changed {
		secretStr = *flagSecret
	}

	secret, err := resolveSecret(secretStr)
	if err != nil {
		return err
	}

	if *issueToken {
		tok, err := token.Issue(secret)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Println(tok)
		return nil
	}

	store, err := cache.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open compile cache: %w", err)
	}
	defer store.Close()

	srv := server.New(store, secret)
	log.Info("starting hana compile service", "addr", listenAddr)
	return srv.ListenAndServe(context.Background(), listenAddr)
}

// resolveSecret pads a too-short secret by repetition (matching the
// teacher's 32-byte minimum) and rejects one over 64 bytes. An empty secret
// generates a random one and warns that tokens will not survive a restart.
func resolveSecret(secret string) (string, error) {
	if secret == "" {
		buf := make([]byte, 64)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate token secret: %w", err)
		}
		log.Warn("using a generated token secret; all issued tokens become invalid on restart")
		return string(buf), nil
	}

	for len(secret) < 32 {
		secret += secret
	}
	if len(secret) > 64 {
		return "", fmt.Errorf("token secret is %d bytes, but must be <= 64 bytes", len(secret))
	}
	return secret, nil
}
