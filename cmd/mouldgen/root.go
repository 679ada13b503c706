package main

import (
	"fmt"
	"os"

	"github.com/soypat/mould/bridge"
	"github.com/soypat/mould/config"
	"github.com/soypat/mould/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "mouldgen",
	Short: "Generate slip casting moulds from vessel profiles",
	Long: `mouldgen turns the half profile of a thrown vessel into the parts of a
slip casting mould: a proof of the fired piece, the inner mould enlarged for
clay shrinkage, and an outer shell with its base ring split for demoulding.

Settings come from defaults, an optional YAML config file and MOULD_*
environment variables, e.g. MOULD_PARAMS_WALL_THICKNESS=3.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd.Flags())
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// flagKeys maps command flags to the configuration keys they override.
var flagKeys = map[string]string{
	"shrinkage":      "params.shrinkage_rate",
	"clay-body":      "params.clay_body",
	"wall-thickness": "params.wall_thickness",
	"slip-well":      "params.slip_well",
	"split-count":    "params.split_count",
	"quality":        "mesh.quality",
}

// addParamFlags registers the flags overriding mould parameters.
func addParamFlags(fs *pflag.FlagSet) {
	fs.Float64("shrinkage", 0, "clay shrinkage rate in [0,0.99)")
	fs.String("clay-body", "", "clay body preset: earthenware, porcelain, stoneware")
	fs.Float64("wall-thickness", 0, "inner mould wall thickness in mm")
	fs.String("slip-well", "", "slip well: none, regular, tall")
	fs.Int("split-count", 0, "outer mould pieces: 2 or 4")
	fs.String("quality", "", "mesh quality: standard, high")
}

// setup loads the configuration, binding flags set on the command line, and
// installs the logger.
func setup(fs *pflag.FlagSet) error {
	v := config.New()
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}
	c, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	l, err := c.Logger(verbose)
	if err != nil {
		return err
	}
	engine.SetLogger(l)
	bridge.SetLogger(l)
	cfg, logger = c, l
	if f := v.ConfigFileUsed(); f != "" {
		logger.Debug("using config file", zap.String("file", f))
	}
	return nil
}
