package main

import (
	"fmt"
	"io"

	"github.com/soypat/mould/config"
	"github.com/soypat/mould/engine"
	"github.com/soypat/mould/kernel"
	"github.com/spf13/cobra"
)

var heapRuns int

var heapCmd = &cobra.Command{
	Use:   "heap <profile>",
	Short: "Run generation repeatedly and report the kernel heap after each run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHeap(cmd.OutOrStdout(), args[0], cfg, heapRuns)
	},
}

func init() {
	rootCmd.AddCommand(heapCmd)
	heapCmd.Flags().IntVarP(&heapRuns, "runs", "n", 20, "number of generation runs")
	addParamFlags(heapCmd.Flags())
}

func runHeap(w io.Writer, path string, c *config.Config, runs int) error {
	p, err := loadProfile(path)
	if err != nil {
		return err
	}
	params, err := c.EngineParams()
	if err != nil {
		return err
	}
	e := engine.New(kernel.New(), c.EngineOptions()...)
	sizes, err := e.MemoryTest(engine.Request{Profile: p, Params: params}, runs)
	if err != nil {
		return err
	}
	for i, sz := range sizes {
		fmt.Fprintf(w, "run %2d: %d bytes live\n", i+1, sz)
	}
	st := e.Heap()
	fmt.Fprintf(w, "allocs %d, frees %d, peak %d bytes\n", st.Allocs, st.Frees, st.Peak)
	if st.Live != 0 {
		return fmt.Errorf("%d kernel objects leaked", st.Live)
	}
	return nil
}
