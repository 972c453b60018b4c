// Command hashpw prints a bcrypt hash for OPERATOR_PASSWORD_HASH.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	pw := ""
	if len(os.Args) > 1 {
		pw = os.Args[1]
	} else {
		// read from stdin so the password stays out of shell history
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hashpw <password>  (or pipe it on stdin)")
			os.Exit(2)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if len(pw) < 6 {
		log.Fatal("password too short (min 6)")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}
	fmt.Println(string(h))
}
