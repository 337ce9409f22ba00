// Command vinctl decodes, validates and extracts VINs from the command line.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/config"
	"github.com/WessleyAI/wessley-vin/pkg/vinscan"
	"github.com/WessleyAI/wessley-vin/pkg/vpic"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// errInvalid makes validate exit non-zero without printing usage.
var errInvalid = errors.New("invalid VIN")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var wmiFile string
	root := &cobra.Command{
		Use:   "vinctl",
		Short: "Decode and validate Vehicle Identification Numbers",
		Long: `vinctl decodes 17-character VINs into their manufacturer, region,
model year, plant and serial fields and verifies the check digit.

Example:
  vinctl decode 1HGCM82633A004352
  vinctl validate 5YJ3E1EA7PF123456
  vinctl extract "scan: 1HGCM82633A0O4352 lot 7"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if wmiFile == "" {
				return nil
			}
			entries, err := config.ReadWMIFile(wmiFile)
			if err != nil {
				return err
			}
			vin.RegisterWMIs(entries)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&wmiFile, "wmi-file", os.Getenv("WMI_FILE"), "JSON file of extra WMI -> manufacturer entries")

	root.AddCommand(decodeCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(wmiCmd())
	root.AddCommand(extractCmd())
	return root
}

func decodeCmd() *cobra.Command {
	var (
		strict      bool
		noAssumeNA  bool
		currentYear int
		minYear     int
		maxYear     int
		asJSON      bool
		remote      bool
		vpicURL     string
	)
	cmd := &cobra.Command{
		Use:   "decode <vin>",
		Short: "Decode a VIN into its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := vin.Decode(args[0],
				vin.WithRequireValidCheckDigit(strict),
				vin.WithAssumeNACheckDigit(!noAssumeNA),
				vin.WithCurrentYear(currentYear),
				vin.WithYearRange(minYear, maxYear),
			)
			if err != nil {
				return err
			}

			var details *vpic.Details
			if remote {
				c := vpic.New(vpic.Config{BaseURL: vpicURL, Timeout: 15 * time.Second})
				d, err := c.Decode(cmd.Context(), res.VIN, res.ModelYear)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "vpic: %v\n", err)
				} else {
					details = &d
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Result vin.Result    `json:"result"`
					VPIC   *vpic.Details `json:"vpic,omitempty"`
				}{res, details})
			}
			printResult(out, res)
			if details != nil {
				printDetails(out, *details)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&strict, "strict", false, "fail when the check digit is invalid")
	f.BoolVar(&noAssumeNA, "no-assume-na", false, "treat check digit mismatches as authoritative in every region")
	f.IntVar(&currentYear, "current-year", 0, "anchor year for model-year resolution (default: this year)")
	f.IntVar(&minYear, "min-year", 0, "earliest model year to consider (default: 1980)")
	f.IntVar(&maxYear, "max-year", 0, "latest model year to consider (default: next year)")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	f.BoolVar(&remote, "remote", false, "enrich with NHTSA vPIC")
	f.StringVar(&vpicURL, "vpic-url", vpic.DefaultBaseURL, "vPIC base URL")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <vin>",
		Short: "Check structure and check digit; exits 1 when invalid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := vin.Validate(args[0])
			if v.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", v.Reason)
			return errInvalid
		},
	}
}

func wmiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wmi",
		Short: "Inspect the manufacturer registry",
	}

	var prefix string
	list := &cobra.Command{
		Use:   "list",
		Short: "List known WMIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wmis := vin.KnownWMIs()
			keys := make([]string, 0, len(wmis))
			p := vin.Normalize(prefix)
			for k := range wmis {
				if strings.HasPrefix(k, p) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range keys {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", k, wmis[k], vin.RegionOf(k))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&prefix, "prefix", "", "only list WMIs starting with this prefix")

	lookup := &cobra.Command{
		Use:   "lookup <wmi>",
		Short: "Resolve a WMI to its manufacturer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wmi := vin.Normalize(args[0])
			if len(wmi) != 3 {
				return fmt.Errorf("WMI must be exactly 3 characters, got %q", wmi)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", wmi, vin.ResolveManufacturer(wmi), vin.RegionOf(wmi))
			return nil
		},
	}

	cmd.AddCommand(list, lookup)
	return cmd
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <text>...",
		Short: "Find VIN candidates in free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			cands := vinscan.Candidates(text)
			if len(cands) == 0 {
				return errors.New("no VIN candidates found")
			}
			for _, c := range cands {
				mark := " "
				if vin.IsValid(c) {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, c)
			}
			return nil
		},
	}
}

func printResult(w io.Writer, r vin.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	year := "unknown"
	if r.HasModelYear() {
		year = fmt.Sprint(r.ModelYear)
	}
	check := "valid"
	if !r.CheckDigit.Valid {
		check = "invalid"
	}
	if r.CheckDigit.Reason != "" {
		check += " (" + r.CheckDigit.Reason + ")"
	}
	fmt.Fprintf(tw, "VIN\t%s\n", r.VIN)
	fmt.Fprintf(tw, "WMI\t%s\n", r.WMI)
	fmt.Fprintf(tw, "VDS\t%s\n", r.VDS)
	fmt.Fprintf(tw, "VIS\t%s\n", r.VIS)
	fmt.Fprintf(tw, "Manufacturer\t%s\n", r.Manufacturer)
	fmt.Fprintf(tw, "Region\t%s\n", r.Region)
	if r.Country != "" {
		fmt.Fprintf(tw, "Country\t%s\n", r.Country)
	}
	fmt.Fprintf(tw, "Model year\t%s\n", year)
	fmt.Fprintf(tw, "Plant\t%s\n", r.PlantCode)
	fmt.Fprintf(tw, "Serial\t%s\n", r.SerialNumber)
	fmt.Fprintf(tw, "Check digit\t%s\n", check)
	tw.Flush()
}

func printDetails(w io.Writer, d vpic.Details) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "vPIC make\t%s\n", d.Make)
	fmt.Fprintf(tw, "vPIC model\t%s\n", d.Model)
	if d.BodyClass != "" {
		fmt.Fprintf(tw, "vPIC body\t%s\n", d.BodyClass)
	}
	if d.FuelType != "" {
		fmt.Fprintf(tw, "vPIC fuel\t%s\n", d.FuelType)
	}
	tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
