// Export command for the beaker CLI.
// Implements: prd004-curation-cli R1.6, R6; prd003-record-store R8.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dataset as JSON Lines",
	Long: `Export writes one JSON object per record, in creation order, to stdout
or to the file named by --out. Array properties carry their values,
shape, and units; metadata properties carry their values.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			if isNotFound(err) {
				fmt.Fprintln(os.Stderr, noDatasetHint())
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		defer ds.Close()

		if exportOut == "" {
			if err := ds.ExportJSONL(os.Stdout); err != nil {
				fmt.Fprintln(os.Stderr, "export:", err)
				os.Exit(exitSysError)
			}
			return nil
		}

		f, err := os.Create(exportOut)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		if err := ds.ExportJSONL(f); err != nil {
			f.Close()
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		if err := f.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Exported %d record(s) to %s\n", ds.Len(), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")
}
