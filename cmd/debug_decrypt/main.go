package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"zone-mirror/core/config"
	"zone-mirror/core/secrets"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("usage: debug_decrypt <iv:authTag:ciphertext>")
		os.Exit(2)
	}
	encoded := os.Args[1]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Sync.EncryptionKey == "" {
		log.Fatal("no encryption key configured")
	}

	cipher, err := secrets.NewCipher(cfg.Sync.EncryptionKey)
	if err != nil {
		log.Fatal(err)
	}

	parts := strings.Split(encoded, ":")
	fmt.Printf("Segments: %d\n", len(parts))
	for i, part := range parts {
		fmt.Printf("  [%d] %d hex chars\n", i, len(part))
	}

	plaintext, err := cipher.Open(encoded)
	if err != nil {
		log.Fatal(err)
	}

	// Only show enough to confirm the right key decrypted the right secret.
	masked := plaintext
	if len(masked) > 6 {
		masked = masked[:3] + strings.Repeat("*", len(masked)-6) + masked[len(masked)-3:]
	}
	fmt.Printf("Decrypted %d chars: %s\n", len(plaintext), masked)
}
