package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/clusterloom-cli/internal/chart"
	cfgpkg "github.com/KaramelBytes/clusterloom-cli/internal/config"
	"github.com/KaramelBytes/clusterloom-cli/internal/dataset"
	"github.com/KaramelBytes/clusterloom-cli/internal/metrics"
	"github.com/KaramelBytes/clusterloom-cli/internal/project"
	"github.com/KaramelBytes/clusterloom-cli/internal/segment"
	"github.com/KaramelBytes/clusterloom-cli/internal/utils"
)

// Output file names written by the cluster command.
const (
	clusteredFile = "clustered_data.csv"
	summaryFile   = "cluster_summary.csv"
	reportFile    = "report.md"
	elbowPlotFile = "elbow.png"
	pcaPlotFile   = "clusters_pca.png"
)

var (
	clInput       inputFlags
	clK           int
	clFeatures    []string
	clSeed        int64
	clOutDir      string
	clPlots       bool
	clProject     string
	clMetricsFile string
	clSkipElbow   bool
	clQuiet       bool
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "Cluster a dataset with k-means and export labels, summary and report",
	Long: `Run the full pipeline on a CSV/TSV/XLSX file: select numeric features, impute
missing values with the column median, standardize, sweep k=1..10 for the elbow
curve, fit k-means++ with the chosen k, score with the silhouette coefficient,
project to 2-D with PCA and summarize each cluster in original units.

Example:
  clusterloom cluster customers.csv -k 4 --features Age,Income,SpendingScore --plots`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		path := args[0]
		ds, err := clInput.load(path)
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
		opts.SkipElbow = clSkipElbow

		var proj *project.Project
		if clProject != "" {
			dir, err := resolveProjectDirByName(clProject)
			if err != nil {
				return err
			}
			if proj, err = project.LoadProject(dir); err != nil {
				return err
			}
			if pc := proj.Config; pc != nil {
				if pc.K > 0 {
					opts.K = pc.K
				}
				if pc.Seed != nil {
					opts.Seed = *pc.Seed
				}
				opts.Features = pc.Features
			}
		}
		flags := cmd.Flags()
		if flags.Changed("k") {
			opts.K = clK
		}
		if flags.Changed("seed") {
			opts.Seed = clSeed
		}
		if feats := splitList(clFeatures); len(feats) > 0 {
			opts.Features = feats
		}

		rec := metrics.New(metrics.DefaultNamespace)
		opts.Metrics = rec
		metricsFile := c.MetricsFile
		if clMetricsFile != "" {
			metricsFile = clMetricsFile
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		res, runErr := segment.Run(ctx, ds, opts)
		if metricsFile != "" {
			if err := rec.WriteTextfile(metricsFile); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
			}
		}
		if runErr != nil {
			return runErr
		}
		printWarnings(cmd, res.Warnings)

		runID := project.NewRunID()
		outDir := clOutDir
		if outDir == "" {
			if proj != nil {
				outDir = proj.RunDir(runID)
			} else {
				outDir = c.OutputDir
			}
		}
		files, err := writeOutputs(res, outDir, clPlots || c.Plots)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !clQuiet {
			fmt.Fprintln(out, res.Markdown())
		}
		for _, f := range files {
			fmt.Fprintf(out, "✓ Wrote %s\n", f)
		}

		if proj != nil {
			run := &project.Run{
				ID:          runID,
				Dataset:     ds.Name,
				DatasetPath: path,
				Records:     ds.Len(),
				Features:    res.Features,
				K:           res.Assignment.K,
				Seed:        res.Seed,
				Inertia:     res.Assignment.Inertia,
				Imputed:     res.Imputation.Total,
				OutputDir:   outDir,
				Files:       files,
			}
			if res.Scored() {
				score := segment.Round(res.Score, 4)
				run.Silhouette = &score
			}
			proj.AddRun(run)
			if err := proj.Save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Recorded run %s in project %s\n", run.ShortID(), proj.Name)
		}
		return nil
	},
}

func pipelineOptions(c *cfgpkg.Global) segment.Options {
	return segment.Options{
		K:                  c.DefaultK,
		Seed:               c.Seed,
		MaxK:               c.MaxK,
		MaxIter:            c.MaxIter,
		NInit:              c.NInit,
		Decimals:           c.SummaryDecimals,
		MaxDefaultFeatures: c.MaxDefaultFeatures,
	}
}

// writeOutputs exports the labeled data, summary and report, plus charts when
// plots is set. It returns the written paths.
func writeOutputs(res *segment.Result, dir string, plots bool) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	labeled, err := res.Labeled()
	if err != nil {
		return nil, err
	}
	var files []string
	write := func(name string, fn func(string) error) error {
		p := filepath.Join(dir, name)
		if err := fn(p); err != nil {
			return err
		}
		files = append(files, p)
		return nil
	}
	if err := write(clusteredFile, func(p string) error { return dataset.WriteCSVFile(p, labeled.Table()) }); err != nil {
		return nil, err
	}
	if err := write(summaryFile, func(p string) error { return dataset.WriteCSVFile(p, res.SummaryTable()) }); err != nil {
		return nil, err
	}
	if err := write(reportFile, func(p string) error { return utils.SafeWriteFile(p, []byte(res.Markdown())) }); err != nil {
		return nil, err
	}
	if !plots {
		return files, nil
	}
	if len(res.Elbow) > 0 {
		p, err := chart.Elbow(res.Elbow)
		if err != nil {
			return nil, err
		}
		if err := write(elbowPlotFile, func(path string) error { return chart.Save(p, path) }); err != nil {
			return nil, err
		}
	}
	p, err := chart.Clusters(res.Projection, res.Assignment.Labels, res.Assignment.K)
	if err != nil {
		return nil, err
	}
	if err := write(pcaPlotFile, func(path string) error { return chart.Save(p, path) }); err != nil {
		return nil, err
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clInput.bind(clusterCmd.Flags())
	f := clusterCmd.Flags()
	f.IntVarP(&clK, "k", "k", segment.DefaultK, "number of clusters (2..10)")
	f.StringSliceVar(&clFeatures, "features", nil, "comma-separated feature columns (default: highest variance)")
	f.Int64Var(&clSeed, "seed", segment.DefaultSeed, "random seed (overrides config)")
	f.StringVarP(&clOutDir, "output", "o", "", "output directory (default: config output_dir, or the project run dir)")
	f.BoolVar(&clPlots, "plots", false, "also write elbow.png and clusters_pca.png")
	f.StringVarP(&clProject, "project", "p", "", "record the run in this project")
	f.StringVar(&clMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	f.BoolVar(&clSkipElbow, "skip-elbow", false, "skip the k=1..10 sweep")
	f.BoolVarP(&clQuiet, "quiet", "q", false, "do not print the report")
}
