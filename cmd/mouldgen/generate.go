package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/soypat/mould/config"
	"github.com/soypat/mould/engine"
	"github.com/soypat/mould/kernel"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	generateOut     string
	generateSummary bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <profile>",
	Short: "Generate the mould parts of a profile",
	Long: `Generate the proof, inner mould, outer shell and ring meshes of a profile
and write them as JSON {"parts": {"<name>": {"vertices", "normals", "indices"}}}.
A part that fails is written as "<name>-error" and the others are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if generateOut != "" {
			f, err := os.Create(generateOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return runGenerate(w, args[0], cfg, generateSummary)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateOut, "output", "o", "", "output file (default: stdout)")
	generateCmd.Flags().BoolVar(&generateSummary, "summary", false, "print a part table instead of meshes")
	addParamFlags(generateCmd.Flags())
}

func runGenerate(w io.Writer, path string, c *config.Config, summary bool) error {
	p, err := loadProfile(path)
	if err != nil {
		return err
	}
	params, err := c.EngineParams()
	if err != nil {
		return err
	}
	quality, err := c.Quality()
	if err != nil {
		return err
	}
	e := engine.New(kernel.New(), c.EngineOptions()...)
	res, err := e.Generate(engine.Request{Profile: p, Params: params, Quality: quality})
	if err != nil {
		return err
	}
	for _, perr := range res.Errs() {
		logger.Warn("part failed", zap.Error(perr))
	}
	if summary {
		return writeSummary(w, res)
	}
	return json.NewEncoder(w).Encode(res)
}

func writeSummary(w io.Writer, res *engine.Result) error {
	names := make([]string, 0, len(res.Parts))
	for name := range res.Parts {
		names = append(names, name)
	}
	sort.Strings(names)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PART\tKIND\tTRIANGLES\tVERTICES")
	for _, name := range names {
		part := res.Parts[name]
		if part.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t%v\n", name, part.Kind, part.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", name, part.Kind, part.TriangleCount(), part.VertexCount())
	}
	fmt.Fprintf(tw, "state: %s\t\t\t\n", res.State)
	return tw.Flush()
}
