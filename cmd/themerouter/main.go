package main

import (
	"os"

	"github.com/osomworks/themerouter/cmd/themerouter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
