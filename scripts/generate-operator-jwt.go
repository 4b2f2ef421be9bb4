//go:build ignore

// Generates an operator bearer token for the management API.
//
// Run: OPERATOR_JWT_SECRET=... go run scripts/generate-operator-jwt.go -sub alice
//
// The secret and issuer must match the gateway's operator configuration.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	subject := flag.String("sub", "operator", "Token subject")
	issuer := flag.String("iss", "signal-gateway", "Token issuer, must match operator.jwt_issuer")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	flag.Parse()

	secret := os.Getenv("OPERATOR_JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "ERROR: OPERATOR_JWT_SECRET is not set")
		os.Exit(1)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": *subject,
		"iss": *issuer,
		"iat": now.Unix(),
		"exp": now.Add(*ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Operator API Bearer Token ===")
	fmt.Println()
	fmt.Println(signed)
	fmt.Println()
	fmt.Printf("Subject: %s\nIssuer:  %s\nExpires: %s\n", *subject, *issuer, now.Add(*ttl).Format(time.RFC3339))
}
