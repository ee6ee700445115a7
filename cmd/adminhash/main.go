package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/security"
)

// Lit le secret admin sur stdin et affiche la valeur de ADMIN_PASSWORD_HASH.
func main() {
	secret, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && secret == "" {
		fmt.Fprintln(os.Stderr, "usage: echo -n <secret> | adminhash")
		os.Exit(2)
	}
	secret = strings.TrimRight(secret, "\r\n")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "empty secret")
		os.Exit(2)
	}

	hash, err := security.HashSecret(secret, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash failed:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
