// Command keygen prints a freshly generated encryption key suitable for
// the ENCRYPTION_KEY environment variable.
package main

import (
	"fmt"
	"os"

	"github.com/xenai/xenai-server/pkg/secrets"
)

func main() {
	key, err := secrets.GenerateKey(secrets.KeySize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(key)
}
