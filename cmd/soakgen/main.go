// soakgen generates Go entity models from soak mapping files.
//
// Usage:
//
//	soakgen generate --mappings ./mappings [--out models_gen.go] [--package models]
//	soakgen inspect --mappings ./mappings
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "soakgen",
	Short: "Generate Go entity models from mapping files",
	Long: `soakgen turns entity mapping files (.soak, .soak.yaml, .soak.json) into
Go structs carrying the accessor methods the hydrator invokes at runtime.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
