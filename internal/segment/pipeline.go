package segment

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/KaramelBytes/clusterloom-cli/internal/dataset"
	"github.com/KaramelBytes/clusterloom-cli/internal/logging"
)

// ClusterColumn is the name of the label column added to exported data.
const ClusterColumn = "Cluster"

// Recorder receives pipeline measurements. internal/metrics implements it.
type Recorder interface {
	ObserveStage(stage string, d time.Duration, err error)
	ObserveDataset(records, features, imputed int)
	ObserveElbow(curve []ElbowPoint)
	ObserveAssignment(a *Assignment, score float64, scored bool)
}

// Options configures a pipeline run. Zero values fall back to defaults.
type Options struct {
	// Features overrides the default high-variance subset when non-empty.
	Features           []string
	K                  int
	Seed               int64
	MaxK               int
	MaxIter            int
	NInit              int
	Decimals           int
	MaxDefaultFeatures int
	// SkipElbow omits the sweep from Run.
	SkipElbow bool

	Logger  logging.Logger
	Metrics Recorder
}

func (o Options) withDefaults() Options {
	if o.K == 0 {
		o.K = DefaultK
	}
	if o.MaxK <= 0 || o.MaxK > MaxK {
		o.MaxK = MaxK
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.NInit <= 0 {
		o.NInit = DefaultNInit
	}
	if o.Decimals <= 0 {
		o.Decimals = DefaultDecimals
	}
	if o.MaxDefaultFeatures <= 0 {
		o.MaxDefaultFeatures = DefaultMaxFeatures
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	return o
}

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result collects every artifact of a run.
type Result struct {
	Dataset      *dataset.Dataset
	Selection    *Selection
	Features     []string
	Imputation   ImputeReport
	Params       Params
	Standardized Matrix
	Elbow        []ElbowPoint
	Assignment   *Assignment
	Score        float64
	// ScoreErr is set when the silhouette could not be computed. The rest of
	// the result is still valid.
	ScoreErr   error
	Projection *Projection
	Summary    *Summary
	Warnings   []string
	Timings    []StageTiming
	Seed       int64
}

// Scored reports whether a silhouette score is available.
func (r *Result) Scored() bool { return r.ScoreErr == nil && r.Assignment != nil }

// Labeled returns a copy of the dataset with the Cluster column appended.
func (r *Result) Labeled() (*dataset.Dataset, error) {
	if r.Assignment == nil {
		return nil, fmt.Errorf("no cluster assignment")
	}
	vals := make([]dataset.Value, len(r.Assignment.Labels))
	for i, l := range r.Assignment.Labels {
		vals[i] = dataset.Number(float64(l))
	}
	return r.Dataset.WithColumn(ClusterColumn, vals)
}

// SummaryTable renders the cluster summary.
func (r *Result) SummaryTable() dataset.Table {
	if r.Summary == nil {
		return dataset.Table{}
	}
	return r.Summary.Table()
}

type runner struct {
	opts Options
	log  logging.Logger
	res  *Result
}

func (p *runner) stage(name string, fn func() error) error {
	p.log.Debug("stage started", logging.String("stage", name))
	start := time.Now()
	err := fn()
	d := time.Since(start)
	p.res.Timings = append(p.res.Timings, StageTiming{Stage: name, Duration: d})
	if p.opts.Metrics != nil {
		p.opts.Metrics.ObserveStage(name, d, err)
	}
	if err != nil {
		p.log.Debug("stage failed", logging.String("stage", name), logging.Duration("duration", d), logging.Err(err))
		return err
	}
	p.log.Info("stage finished", logging.String("stage", name), logging.Duration("duration", d))
	return nil
}

func newRunner(ds *dataset.Dataset, opts Options) *runner {
	opts = opts.withDefaults()
	return &runner{
		opts: opts,
		log:  opts.Logger.Named("segment").With(logging.String("dataset", ds.Name)),
		res:  &Result{Dataset: ds, Seed: opts.Seed},
	}
}

// prepare runs selection, imputation and standardization.
func (p *runner) prepare(ds *dataset.Dataset) error {
	res := p.res
	var raw Matrix
	err := p.stage(StageSelect, func() error {
		sel, err := SelectFeatures(ds, p.opts.MaxDefaultFeatures)
		res.Selection = sel
		if err != nil {
			return err
		}
		features := sel.Default
		if len(p.opts.Features) > 0 {
			if features, err = sel.ValidateSelection(ds, p.opts.Features); err != nil {
				return err
			}
		}
		res.Features = features
		raw, err = ExtractMatrix(ds, features)
		return err
	})
	if err != nil {
		return err
	}
	p.log.Info("features selected", logging.Strings("features", res.Features), logging.Int("records", ds.Len()))

	var imputed Matrix
	err = p.stage(StageImpute, func() error {
		var err error
		imputed, res.Imputation, err = ImputeMedian(raw)
		return err
	})
	if err != nil {
		return err
	}
	if !res.Imputation.Empty() {
		names := make([]string, 0, len(res.Imputation.Filled))
		for name := range res.Imputation.Filled {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%d missing value(s) in %q filled with the median %s",
				res.Imputation.Filled[name], name, strconv.FormatFloat(res.Imputation.Medians[name], 'g', 6, 64)))
		}
		p.log.Warn("missing values imputed", logging.Int("cells", res.Imputation.Total), logging.Strings("columns", names))
	}
	if p.opts.Metrics != nil {
		p.opts.Metrics.ObserveDataset(ds.Len(), len(res.Features), res.Imputation.Total)
	}

	return p.stage(StageStandardize, func() error {
		var err error
		res.Standardized, res.Params, err = Standardize(imputed)
		return err
	})
}

func (p *runner) elbow(ctx context.Context) error {
	return p.stage(StageElbow, func() error {
		curve, err := Elbow(ctx, p.res.Standardized, ElbowOptions{
			MaxK:    p.opts.MaxK,
			Seed:    p.opts.Seed,
			MaxIter: p.opts.MaxIter,
			NInit:   p.opts.NInit,
		})
		if err != nil {
			return err
		}
		p.res.Elbow = curve
		if p.opts.Metrics != nil {
			p.opts.Metrics.ObserveElbow(curve)
		}
		return nil
	})
}

// RunElbow prepares the features and sweeps k without a final assignment.
func RunElbow(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	p := newRunner(ds, opts)
	if err := p.prepare(ds); err != nil {
		return p.res, err
	}
	if err := p.elbow(ctx); err != nil {
		return p.res, err
	}
	return p.res, nil
}

// Run executes the whole pipeline. Stage failures are returned as *Error,
// except validation which only sets Result.ScoreErr.
func Run(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	p := newRunner(ds, opts)
	res := p.res
	if err := ValidateK(p.opts.K, ds.Len()); err != nil {
		return res, err
	}
	if err := p.prepare(ds); err != nil {
		return res, err
	}
	if !p.opts.SkipElbow {
		if err := p.elbow(ctx); err != nil {
			return res, err
		}
	}

	err := p.stage(StageCluster, func() error {
		km := KMeans{K: p.opts.K, Seed: p.opts.Seed, MaxIter: p.opts.MaxIter, NInit: p.opts.NInit}
		a, err := km.Fit(ctx, res.Standardized)
		res.Assignment = a
		return err
	})
	if err != nil {
		return res, err
	}
	p.log.Info("clusters assigned", logging.Int("k", res.Assignment.K),
		logging.Float64("inertia", res.Assignment.Inertia), logging.Int("iterations", res.Assignment.Iterations))

	_ = p.stage(StageValidate, func() error {
		res.Score, res.ScoreErr = Silhouette(res.Standardized, res.Assignment)
		return res.ScoreErr
	})
	if res.ScoreErr != nil {
		res.Warnings = append(res.Warnings, "silhouette score unavailable: "+res.ScoreErr.Error())
		p.log.Warn("validation skipped", logging.Err(res.ScoreErr))
	}
	if p.opts.Metrics != nil {
		p.opts.Metrics.ObserveAssignment(res.Assignment, res.Score, res.ScoreErr == nil)
	}

	err = p.stage(StageProject, func() error {
		var err error
		res.Projection, err = Project(res.Standardized)
		return err
	})
	if err != nil {
		return res, err
	}

	err = p.stage(StageSummarize, func() error {
		var err error
		res.Summary, err = Summarize(ds, res.Features, res.Assignment, p.opts.Decimals)
		return err
	})
	if err != nil {
		return res, err
	}
	return res, nil
}
