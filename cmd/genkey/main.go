// Package main provides a small tool to generate secret keys, their
// digests, and supporting credentials for deploying the vault.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/keepsakelabs/giftvault/internal/auth"
	"github.com/keepsakelabs/giftvault/internal/gate"
	"github.com/keepsakelabs/giftvault/internal/secrets"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for ADMIN_PASSWORD_HASH")
	agePair := flag.Bool("age", false, "generate an age key pair for media sealing")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	if *agePair {
		pub, priv, err := secrets.GenerateKeyPair()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating age key pair: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("public: ", pub)
		fmt.Println("private:", priv)
		return
	}

	key, err := gate.GenerateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("key:   ", key)
	fmt.Println("digest:", gate.Digest(key))
}
