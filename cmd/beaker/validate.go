// Validate command for the beaker CLI.
// Implements: prd004-curation-cli R1.5, R5; prd002-records-and-datasets R12.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benchtop/beaker/pkg/curate"
	"github.com/benchtop/beaker/pkg/geometry"
	"github.com/benchtop/beaker/pkg/units"
)

var validateMinDistance float64

var validateCmd = &cobra.Command{
	Use:   "validate [record]",
	Short: "Check records for consistent configuration counts",
	Long: `Validate reports whether the per-atom and per-system properties of each
record carry the same number of configurations. With --min-distance it
also screens every configuration for atom pairs closer than the given
separation in nanometers. Validation never modifies the store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Float64Var(&validateMinDistance, "min-distance", 0,
		"flag atom pairs closer than this separation in nm")
}

type closeContact struct {
	Config   int     `json:"config"`
	I        int     `json:"i"`
	J        int     `json:"j"`
	Distance float64 `json:"distance_nm"`
}

type countDetail struct {
	Property       string `json:"property"`
	Classification string `json:"classification"`
	Configs        int    `json:"configs"`
}

type recordReport struct {
	Record        string         `json:"record"`
	Consistent    bool           `json:"consistent"`
	Counts        []countDetail  `json:"counts,omitempty"`
	CloseContacts []closeContact `json:"close_contacts,omitempty"`
}

type validateReport struct {
	Consistent    bool           `json:"consistent"`
	CloseContacts int            `json:"close_contacts"`
	Records       []recordReport `json:"records"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	store, err := attachStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "validate:", err)
		os.Exit(exitSysError)
	}
	defer store.Detach()

	var names []string
	if len(args) == 1 {
		names = args
	} else {
		names, err = store.ListRecords()
		if err != nil {
			fmt.Fprintln(os.Stderr, "list records:", err)
			os.Exit(exitSysError)
		}
	}

	report := validateReport{Consistent: true, Records: []recordReport{}}
	for _, name := range names {
		rec, err := store.LoadRecord(name)
		if err != nil {
			if isNotFound(err) {
				fmt.Fprintf(os.Stderr, "record %q not found\n", name)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "load record:", err)
			os.Exit(exitSysError)
		}

		rr := validateRecord(rec)
		if !rr.Consistent {
			report.Consistent = false
		}
		report.CloseContacts += len(rr.CloseContacts)
		report.Records = append(report.Records, rr)
	}

	if flagJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "marshal JSON:", err)
			os.Exit(exitSysError)
		}
		fmt.Println(string(out))
	} else {
		printValidateReport(report)
	}

	if !report.Consistent || report.CloseContacts > 0 {
		os.Exit(exitUserError)
	}
	return nil
}

// validateRecord runs the consistency check and, when --min-distance is
// set, the close-contact screen on one record.
func validateRecord(rec *curate.Record) recordReport {
	ok, counts := rec.Validate()
	rr := recordReport{Record: rec.Name(), Consistent: ok}
	if !ok {
		for _, c := range counts {
			rr.Counts = append(rr.Counts, countDetail{
				Property:       c.Property,
				Classification: string(c.Classification),
				Configs:        c.Configs,
			})
		}
	}
	if validateMinDistance > 0 {
		contacts, err := screenContacts(rec, validateMinDistance)
		if err != nil {
			fmt.Fprintf(os.Stderr, "check distances for %q: %v\n", rec.Name(), err)
			os.Exit(exitSysError)
		}
		rr.CloseContacts = contacts
	}
	return rr
}

// screenContacts reports atom pairs closer than minDist nanometers in
// any configuration of the record. Records without a position-like
// property, or with fewer than two atoms, have nothing to screen.
func screenContacts(rec *curate.Record, minDist float64) ([]closeContact, error) {
	pos, ok := findPositions(rec)
	if !ok {
		return nil, nil
	}
	conv, err := pos.Converted(units.Nanometer)
	if err != nil {
		return nil, err
	}
	pairs, err := geometry.MinDistances(conv.Array())
	if err != nil {
		if errors.Is(err, geometry.ErrTooFewAtoms) {
			return nil, nil
		}
		return nil, err
	}
	var contacts []closeContact
	for config, pair := range pairs {
		if pair.Distance < minDist {
			contacts = append(contacts, closeContact{
				Config:   config,
				I:        pair.I,
				J:        pair.J,
				Distance: pair.Distance,
			})
		}
	}
	return contacts, nil
}

// findPositions picks the property to screen: "positions" when present,
// otherwise the first per-atom length property with three components.
func findPositions(rec *curate.Record) (*curate.Property, bool) {
	if p, ok := rec.Property("positions"); ok && positionLike(p) {
		return p, true
	}
	for _, p := range rec.Properties() {
		if positionLike(p) {
			return p, true
		}
	}
	return nil, false
}

func positionLike(p *curate.Property) bool {
	if p.Classification() != curate.ClassPerAtom || p.Type() != curate.TypeLength {
		return false
	}
	arr := p.Array()
	return arr.Rank() == 3 && arr.Dim(2) == 3
}

func printValidateReport(report validateReport) {
	for _, rr := range report.Records {
		switch {
		case !rr.Consistent:
			fmt.Printf("%s: INCONSISTENT\n", rr.Record)
			for _, c := range rr.Counts {
				fmt.Printf("  %s (%s): %d config(s)\n", c.Property, c.Classification, c.Configs)
			}
		case len(rr.CloseContacts) > 0:
			fmt.Printf("%s: %d close contact(s)\n", rr.Record, len(rr.CloseContacts))
		default:
			fmt.Printf("%s: ok\n", rr.Record)
		}
		for _, cc := range rr.CloseContacts {
			fmt.Printf("  config %d: atoms %d-%d at %.4f nm\n", cc.Config, cc.I, cc.J, cc.Distance)
		}
	}

	switch {
	case !report.Consistent:
		fmt.Printf("\nValidated %d record(s): inconsistent configuration counts found\n", len(report.Records))
	case report.CloseContacts > 0:
		fmt.Printf("\nValidated %d record(s): %d close contact(s) found\n", len(report.Records), report.CloseContacts)
	default:
		fmt.Printf("\nValidated %d record(s): all consistent\n", len(report.Records))
	}
}
