// Version command for the beaker CLI.
// Implements: prd004-curation-cli R1.8.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchtop/beaker/pkg/beaker"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the beaker version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("beaker", beaker.Version)
	},
}
