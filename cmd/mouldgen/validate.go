package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/soypat/mould/constraint"
	"github.com/soypat/mould/profile"
	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate <profile>",
	Short: "Check a profile document for structural and printability problems",
	Long: `Decode a YAML or JSON profile document and report constraint violations:
axis crossings, undercuts above the foot zone and self intersections.
Structural defects fail the command; violations fail it only if blocking.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args[0], cfg.ConstraintOptions(), validateJSON)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print violations as JSON")
}

func loadProfile(path string) (profile.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return profile.Profile{}, err
	}
	defer f.Close()
	p, err := profile.Decode(f)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("loading profile %s: %w", path, err)
	}
	return p, nil
}

func runValidate(w io.Writer, path string, opts constraint.Options, asJSON bool) error {
	p, err := loadProfile(path)
	if err != nil {
		return err
	}
	vs := opts.Check(p)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Violations []constraint.Violation `json:"violations"`
			Printable  bool                   `json:"printable"`
		}{append([]constraint.Violation{}, vs...), constraint.Printable(vs)}); err != nil {
			return err
		}
	} else {
		for _, v := range vs {
			fmt.Fprintln(w, v)
		}
		fmt.Fprintf(w, "%d points, %d curves, %d violations\n", len(p.Points), p.CurveCount(), len(vs))
	}
	if !constraint.Printable(vs) {
		return fmt.Errorf("profile %s has blocking violations", path)
	}
	return nil
}
