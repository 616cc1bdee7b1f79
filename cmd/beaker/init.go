// Init command for the beaker CLI.
// Implements: prd004-curation-cli R1.1, R7; prd003-record-store R3.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benchtop/beaker/internal/sqlite"
	"github.com/benchtop/beaker/pkg/curate"
)

var (
	initName      string
	initAppend    bool
	initOverwrite bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a dataset store",
	Long: `Init creates the data directory, attaches a fresh record store, and
writes the dataset row.

An existing store is left untouched unless --overwrite is given.

Example:
  beaker init --name qm9
  beaker init --name qm9 --append
  beaker init --name qm9 --overwrite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		if err := ensureConfigDir(configDir); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		dataDir, err := resolveDataDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		store := sqlite.NewBackend()
		err = store.Attach(curate.StoreConfig{
			Backend:   curate.BackendSQLite,
			DataDir:   dataDir,
			Overwrite: initOverwrite,
		})
		if err != nil {
			if errors.Is(err, curate.ErrStoreExists) {
				fmt.Fprintf(os.Stderr, "store already exists in %s (use --overwrite to discard it)\n", dataDir)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		if _, err := curate.NewDataset(initName, curate.Options{
			AppendProperties: initAppend,
			Store:            store,
		}); err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}

		fmt.Println("Dataset initialized successfully")
		fmt.Println("  name:  ", initName)
		fmt.Println("  config:", configDir)
		fmt.Println("  data:  ", dataDir)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "dataset name")
	initCmd.Flags().BoolVar(&initAppend, "append", false, "new records accept appended configurations for existing properties")
	initCmd.Flags().BoolVar(&initOverwrite, "overwrite", false, "discard an existing store")
	initCmd.MarkFlagRequired("name")
}
