// Info command for the beaker CLI.
// Implements: prd004-curation-cli R1.2, R3.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display dataset information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "info:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		info, err := store.LoadInfo()
		if err != nil {
			if isNotFound(err) {
				fmt.Fprintln(os.Stderr, noDatasetHint())
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "load info:", err)
			os.Exit(exitSysError)
		}

		names, err := store.ListRecords()
		if err != nil {
			fmt.Fprintln(os.Stderr, "list records:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			out := map[string]any{
				"dataset_id":        info.DatasetID,
				"name":              info.Name,
				"append_properties": info.AppendProperties,
				"schema_version":    info.SchemaVersion,
				"created_at":        info.CreatedAt,
				"records":           len(names),
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(data))
		} else {
			fmt.Printf("ID:       %s\n", info.DatasetID)
			fmt.Printf("Name:     %s\n", info.Name)
			fmt.Printf("Append:   %t\n", info.AppendProperties)
			fmt.Printf("Schema:   %d\n", info.SchemaVersion)
			fmt.Printf("Created:  %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("Records:  %d\n", len(names))
		}

		return nil
	},
}
