// Package metrics exposes pipeline measurements as Prometheus collectors. A
// one-shot CLI run has no scrape endpoint, so the registry is written to a
// node_exporter textfile instead.
package metrics

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/KaramelBytes/clusterloom-cli/internal/segment"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "clusterloom"

// Pipeline implements segment.Recorder on a private registry.
type Pipeline struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	records       prometheus.Gauge
	features      prometheus.Gauge
	imputed       prometheus.Gauge
	elbowInertia  *prometheus.GaugeVec
	clusterCount  prometheus.Gauge
	clusterSize   *prometheus.GaugeVec
	inertia       prometheus.Gauge
	silhouette    prometheus.Gauge
}

var _ segment.Recorder = (*Pipeline)(nil)

// New registers the pipeline collectors under namespace.
func New(namespace string) *Pipeline {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	p := &Pipeline{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
		}, []string{"stage", "outcome"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stage failures by error kind.",
		}, []string{"stage", "kind"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records in the clustered dataset.",
		}),
		features: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "features",
			Help:      "Features used for clustering.",
		}),
		imputed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "imputed_cells",
			Help:      "Missing cells filled with a column median.",
		}),
		elbowInertia: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "elbow_inertia",
			Help:      "Within-cluster sum of squares per candidate k.",
		}, []string{"k"}),
		clusterCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clusters",
			Help:      "Cluster count of the final assignment.",
		}),
		clusterSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cluster_size",
			Help:      "Members per cluster label.",
		}, []string{"cluster"}),
		inertia: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inertia",
			Help:      "Within-cluster sum of squares of the final assignment.",
		}),
		silhouette: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "silhouette_score",
			Help:      "Mean silhouette coefficient; NaN when it could not be computed.",
		}),
	}
	p.registry.MustRegister(p.stageDuration, p.stageErrors, p.records, p.features, p.imputed,
		p.elbowInertia, p.clusterCount, p.clusterSize, p.inertia, p.silhouette)
	return p
}

// Registry returns the underlying registry.
func (p *Pipeline) Registry() *prometheus.Registry { return p.registry }

func (p *Pipeline) ObserveStage(stage string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		kind := segment.KindOf(err).String()
		p.stageErrors.WithLabelValues(stage, kind).Inc()
	}
	p.stageDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

func (p *Pipeline) ObserveDataset(records, features, imputed int) {
	p.records.Set(float64(records))
	p.features.Set(float64(features))
	p.imputed.Set(float64(imputed))
}

func (p *Pipeline) ObserveElbow(curve []segment.ElbowPoint) {
	for _, pt := range curve {
		p.elbowInertia.WithLabelValues(strconv.Itoa(pt.K)).Set(pt.Inertia)
	}
}

func (p *Pipeline) ObserveAssignment(a *segment.Assignment, score float64, scored bool) {
	p.clusterCount.Set(float64(a.K))
	p.inertia.Set(a.Inertia)
	for c, n := range a.Sizes() {
		p.clusterSize.WithLabelValues(strconv.Itoa(c)).Set(float64(n))
	}
	if scored {
		p.silhouette.Set(score)
	} else {
		p.silhouette.Set(math.NaN())
	}
}

// WriteTextfile writes the registry in the Prometheus text format.
func (p *Pipeline) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
