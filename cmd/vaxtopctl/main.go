package main

import (
	"os"

	"github.com/anonto42/vaxtop/backend/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
