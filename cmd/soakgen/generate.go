package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soaklib/soak/mapfile"
)

var (
	genMappings string
	genOut      string
	genPackage  string
	genRegister bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render Go entity models from a mapping directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := mapfile.LoadDir(genMappings)
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			return fmt.Errorf("no mapping files under %s", genMappings)
		}

		cfg := mapfile.DefaultConfig()
		cfg.Package = genPackage
		cfg.Register = genRegister

		w := os.Stdout
		if genOut != "-" {
			f, err := os.Create(genOut)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			w = f
		}
		return mapfile.Render(w, defs, cfg)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&genMappings, "mappings", ".", "Directory holding mapping files")
	generateCmd.Flags().StringVar(&genOut, "out", "-", "Output file, - for stdout")
	generateCmd.Flags().StringVar(&genPackage, "package", "models", "Package name for generated code")
	generateCmd.Flags().BoolVar(&genRegister, "register", true, "Emit the RegisterAll helper")
}
