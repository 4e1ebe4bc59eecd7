package main

import (
	"fmt"
	"os"

	"lazo-pipeline/cmd/lazo/cmd"
	"lazo-pipeline/internal/config"
)

func main() {
	// A missing .env is fine, the environment may be set system-wide
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
