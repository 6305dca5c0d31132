// Command issuekey prints the bcrypt hash to put in AUTH_ISSUE_KEY_HASH.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/genius-car/internal/auth"
)

func main() {
	var (
		key  string
		cost int
	)
	pflag.StringVarP(&key, "key", "k", "", "issuance key to hash (read from stdin when empty)")
	pflag.IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	pflag.Parse()

	if key == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "issuekey: no key given")
			os.Exit(2)
		}
		key = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashIssueKey(key, cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issuekey: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
