// Command hashpw prompts for a password without echo and prints the digest
// the server would store. Useful for preparing database fixtures. The secret
// key must match the server's INSIGHT_SECRET_KEY for the digest to verify.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/insight/internal/server/auth"
)

func main() {
	secret := flag.String("s", "dev_secret", "server secret key")
	flag.Parse()

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading password: %v\n", err)
		os.Exit(1)
	}

	digest, err := auth.NewBcryptHasher(*secret).Hash(string(password))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error hashing password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(digest)
}
