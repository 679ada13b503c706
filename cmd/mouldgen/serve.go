package main

import (
	"os"
	"time"

	"github.com/soypat/mould/bridge"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveHang time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the envelope protocol over stdin and stdout",
	Long: `Read one JSON envelope per line from stdin and answer each with one JSON
line on stdout:

  {"id": 1, "command": "generateMould", "profile": {...}, "params": {...}}
  {"id": 1, "data": {...}}

Commands: init, revolve, generateMould, heapSize, memoryTest. A generateMould
superseded by a newer one is answered with "data": null.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b := bridge.New(
			bridge.WithFactory(bridge.EngineFactory(cfg.EngineOptions()...)),
			bridge.WithHangTimeout(serveHang),
		)
		defer b.Close()
		go func() {
			for err := range b.Errors() {
				logger.Error("execution context failure", zap.Error(err))
			}
		}()
		return bridge.Serve(cmd.Context(), b, os.Stdin, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().DurationVar(&serveHang, "hang-timeout", 0, "report the context hung after a call runs this long (0 disables)")
}
