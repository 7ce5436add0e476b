// FILE: cmd/meridian/main.go
// Package main implements the deal tooling: validation, generation,
// solving and the certification database.
package main

import (
	"errors"
	"fmt"
	"os"

	"meridian/cmd/meridian/cli"
)

func main() {
	if err := cli.Run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, cli.ErrInvalidDeals) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
