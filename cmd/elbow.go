package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/clusterloom-cli/internal/chart"
	"github.com/KaramelBytes/clusterloom-cli/internal/segment"
)

var (
	elbInput    inputFlags
	elbFeatures []string
	elbPlot     string
	elbSeed     int64
	elbMaxK     int
)

var elbowCmd = &cobra.Command{
	Use:   "elbow <file>",
	Short: "Sweep k and print the within-cluster sum of squares",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		ds, err := elbInput.load(args[0])
		if err != nil {
			return err
		}
		logger, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		opts := pipelineOptions(c)
		opts.Logger = logger
		opts.Features = splitList(elbFeatures)
		if cmd.Flags().Changed("seed") {
			opts.Seed = elbSeed
		}
		if elbMaxK > 0 {
			opts.MaxK = elbMaxK
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		res, err := segment.RunElbow(ctx, ds, opts)
		if err != nil {
			return err
		}
		printWarnings(cmd, res.Warnings)

		out := cmd.OutOrStdout()
		// With --plot - the PNG owns stdout and the table moves to stderr.
		if elbPlot == "-" {
			out = cmd.ErrOrStderr()
		}
		fmt.Fprintf(out, "Features: %v\n\n", res.Features)
		fmt.Fprintf(out, "%4s  %14s  %s\n", "k", "WCSS", "iterations")
		for _, pt := range res.Elbow {
			fmt.Fprintf(out, "%4d  %14.4f  %d\n", pt.K, pt.Inertia, pt.Iterations)
		}
		if elbPlot != "" {
			p, err := chart.Elbow(res.Elbow)
			if err != nil {
				return err
			}
			if elbPlot == "-" {
				return chart.Write(p, cmd.OutOrStdout(), "png")
			}
			if err := chart.Save(p, elbPlot); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote elbow chart to %s\n", elbPlot)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(elbowCmd)
	elbInput.bind(elbowCmd.Flags())
	elbowCmd.Flags().StringSliceVar(&elbFeatures, "features", nil, "comma-separated feature columns (default: highest variance)")
	elbowCmd.Flags().StringVar(&elbPlot, "plot", "", "write the elbow chart to this PNG file (- for stdout)")
	elbowCmd.Flags().Int64Var(&elbSeed, "seed", 0, "random seed (overrides config)")
	elbowCmd.Flags().IntVar(&elbMaxK, "max-k", 0, "largest k to try (1..10, overrides config)")
}
