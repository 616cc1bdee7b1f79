// Delete command for the beaker CLI.
// Implements: prd004-curation-cli R1.7, R7.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <record>",
	Short: "Remove a record from the dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "delete:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		if err := store.DeleteRecord(name); err != nil {
			if isNotFound(err) {
				fmt.Fprintf(os.Stderr, "record %q not found\n", name)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "delete record:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Deleted record %q\n", name)
		return nil
	},
}
