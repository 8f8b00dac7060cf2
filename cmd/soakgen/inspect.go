package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soaklib/soak/mapfile"
	"github.com/soaklib/soak/metadata"
)

var inspectMappings string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the entities resolved from a mapping directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := mapfile.LoadDir(inspectMappings)
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			return fmt.Errorf("no mapping files under %s", inspectMappings)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, def := range defs {
			fmt.Fprintf(w, "%s\ttable %s\t\n", def.Name, def.TableName())
			for _, f := range def.Fields {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", f.Name, f.Kind, fieldFlags(f))
			}
			for _, a := range def.Assocs {
				card := "one"
				if a.ToMany {
					card = "many"
				}
				fmt.Fprintf(w, "  %s\t%s %s\t\n", a.Name, card, a.Target)
			}
		}
		return w.Flush()
	},
}

func fieldFlags(f metadata.FieldDef) string {
	var flags []string
	if f.Key {
		flags = append(flags, "key")
	}
	if f.Nullable {
		flags = append(flags, "nullable")
	}
	if f.Unique {
		flags = append(flags, "unique")
	}
	return strings.Join(flags, ",")
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectMappings, "mappings", ".", "Directory holding mapping files")
}
