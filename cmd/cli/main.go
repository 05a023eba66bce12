package main

import (
	"os"

	"github.com/tenantgate/tenantgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
