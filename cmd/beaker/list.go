// List command summarizes every record in the dataset.
// Implements: prd004-curation-cli R1.3, R3; prd002-records-and-datasets R11.
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

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records in the dataset",
	Long: `List fetches all records and displays one summary line per record:
name, chemical formula, atom and configuration counts, and the number
of properties.

Example:
  beaker list
  beaker list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// recordSummary is one list line.
type recordSummary struct {
	Name       string `json:"name"`
	Formula    string `json:"formula,omitempty"`
	NAtoms     int    `json:"n_atoms,omitempty"`
	NConfigs   int    `json:"n_configs,omitempty"`
	Properties int    `json:"properties"`
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(exitSysError)
	}
	defer store.Detach()

	names, err := store.ListRecords()
	if err != nil {
		fmt.Fprintln(os.Stderr, "list records:", err)
		os.Exit(exitSysError)
	}

	summaries := make([]recordSummary, 0, len(names))
	for _, name := range names {
		rec, err := store.LoadRecord(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load record %q: %s\n", name, err)
			os.Exit(exitSysError)
		}
		summaries = append(summaries, summarize(rec))
	}

	if flagJSON {
		output, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "marshal records:", err)
			os.Exit(exitSysError)
		}
		fmt.Println(string(output))
	} else {
		printRecordTable(summaries)
	}

	return nil
}

// summarize builds the list line for one record.
func summarize(rec *curate.Record) recordSummary {
	s := recordSummary{Name: rec.Name(), Properties: rec.Len()}
	if n, ok := rec.NAtoms(); ok {
		s.NAtoms = n
	}
	if n, ok := rec.NConfigs(); ok {
		s.NConfigs = n
	}
	if atomic, ok := rec.AtomicNumbers(); ok {
		if zs, err := atomic.Array().Ints(); err == nil {
			if formula, err := elements.Formula(zs); err == nil {
				s.Formula = formula
			}
		}
	}
	return s
}

// printRecordTable prints records in a human-readable table format.
func printRecordTable(summaries []recordSummary) {
	if len(summaries) == 0 {
		fmt.Println("No records found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tFORMULA\tATOMS\tCONFIGS\tPROPERTIES")
	fmt.Fprintln(w, "----\t-------\t-----\t-------\t----------")
	for _, s := range summaries {
		// Truncate name if too long
		name := s.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			name,
			s.Formula,
			s.NAtoms,
			s.NConfigs,
			s.Properties,
		)
	}
	w.Flush()

	// Print output, trimming trailing whitespace from each line
	output := sb.String()
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		fmt.Println(strings.TrimRight(line, " "))
	}

	fmt.Printf("Total: %d record(s)\n", len(summaries))
}
