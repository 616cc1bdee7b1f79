// Show command for the beaker CLI.
// Implements: prd004-curation-cli R1.4, R3.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benchtop/beaker/pkg/curate"
	"github.com/benchtop/beaker/pkg/elements"
)

var showCmd = &cobra.Command{
	Use:   "show <record>",
	Short: "Display a record with full details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "show:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		rec, err := store.LoadRecord(name)
		if err != nil {
			if isNotFound(err) {
				fmt.Fprintf(os.Stderr, "record %q not found\n", name)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "load record:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				fmt.Fprintln(os.Stderr, "marshal JSON:", err)
				os.Exit(exitSysError)
			}
			fmt.Println(string(out))
			return nil
		}

		printRecord(rec)
		return nil
	},
}

// printRecord renders the human-readable record view.
func printRecord(rec *curate.Record) {
	fmt.Printf("Name:     %s\n", rec.Name())
	if atomic, ok := rec.AtomicNumbers(); ok {
		if zs, err := atomic.Array().Ints(); err == nil {
			if formula, err := elements.Formula(zs); err == nil {
				fmt.Printf("Formula:  %s\n", formula)
			}
		}
	}
	if n, ok := rec.NAtoms(); ok {
		fmt.Printf("Atoms:    %d\n", n)
	}
	if n, ok := rec.NConfigs(); ok {
		fmt.Printf("Configs:  %d\n", n)
	}
	fmt.Printf("Append:   %t\n", rec.AppendMode())

	props := rec.Properties()
	if len(props) == 0 {
		return
	}

	fmt.Println("\nProperties:")
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tCLASS\tTYPE\tUNITS\tSHAPE\tVALUE")
	for _, p := range props {
		if p.IsMetaData() {
			fmt.Fprintf(w, "  %s\t%s\t%s\t\t\t%s\n",
				p.Name(), p.Classification(), p.Type(), formatMeta(p.Meta()))
			continue
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t\n",
			p.Name(), p.Classification(), p.Type(), p.Units().Name(), formatShape(p.Array().Shape()))
	}
	w.Flush()

	output := sb.String()
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
}

// formatShape renders a shape like (3, 1).
func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatMeta renders a metadata value inline, truncated for the table.
func formatMeta(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	s := string(data)
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}
