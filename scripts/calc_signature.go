package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// calc_signature.go - Utility to calculate the X-Compras-Signature header
// for a webhook payload, so endpoint owners can verify deliveries.
//
// Usage:
//   go run scripts/calc_signature.go <secret> < payload.json
//
// Output:
//   sha256=adf716ab3ebb2a1138973de4a44fe454c05c0d070e897fc55220af74807b25ae

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/calc_signature.go <secret> < payload.json")
		os.Exit(1)
	}

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading payload: %v\n", err)
		os.Exit(1)
	}

	mac := hmac.New(sha256.New, []byte(os.Args[1]))
	mac.Write(payload)

	fmt.Printf("sha256=%s\n", hex.EncodeToString(mac.Sum(nil)))
}
