package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
)

// Generates a random hex secret, suitable for JWT_SECRET or a webhook
// signing secret.
func main() {
	length := flag.Int("bytes", 32, "Secret length in bytes before hex encoding")
	flag.Parse()

	buf := make([]byte, *length)
	if _, err := rand.Read(buf); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(buf))
}
