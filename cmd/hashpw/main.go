// Command hashpw prints a bcrypt hash for seeding users.password_hash.
// The password is read from the first line of stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iliyamo/table-reservation/internal/utils"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "hashpw: read password:", err)
		os.Exit(1)
	}
	hash, err := utils.HashPassword(strings.TrimRight(line, "\r\n"), *cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
