package main

import (
	"os"

	"github.com/aryan0dhankhar/storefront/cmd/sitectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
