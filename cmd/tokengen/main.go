// Command tokengen mints an operator bearer token for the write routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/josh-kwaku/digital-banking/internal/auth"
)

func main() {
	_ = godotenv.Load()

	operator := flag.String("operator", "", "operator name placed in the token subject")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to $JWT_SECRET)")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *operator == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -operator NAME [-secret S] [-expiry 24h]")
		os.Exit(2)
	}

	token, err := auth.GenerateToken(*operator, *secret, *expiry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
