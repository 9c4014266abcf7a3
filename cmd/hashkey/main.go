// cmd/hashkey prints an argon2id hash suitable for ADMIN_KEY_HASH, so the
// plaintext admin key never has to live in the server's environment.
//
// Usage:
//
//	go run ./cmd/hashkey 'my-admin-key'
//	echo -n 'my-admin-key' | go run ./cmd/hashkey
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jason-s-yu/ranked/internal/auth"
	"github.com/sirupsen/logrus"
)

func main() {
	var secret string
	if len(os.Args) > 1 {
		secret = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logrus.Fatalf("failed to read key from stdin: %v", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		logrus.Fatal("admin key must not be empty")
	}

	hash, err := auth.CreateHash(secret, auth.DefaultParams)
	if err != nil {
		logrus.Fatalf("failed to hash key: %v", err)
	}
	fmt.Println(hash)
}
