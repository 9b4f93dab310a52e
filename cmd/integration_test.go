package cmd

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/clusterloom-cli/internal/segment"
)

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(args ...string) (string, error) {
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// writeSegmentsCSV writes 30 customers in three spending groups plus a text
// column and one missing cell.
func writeSegmentsCSV(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("CustomerID,Segment,Age,Income,SpendingScore\n")
	centers := [][3]float64{{25, 30, 80}, {45, 90, 20}, {60, 50, 50}}
	n := 0
	for g, c := range centers {
		for i := 0; i < 10; i++ {
			n++
			age := c[0] + float64(i%5) - 2
			income := c[1] + float64(i%3)*2 - 2
			score := fmt.Sprintf("%.1f", c[2]+float64(i%4)-1.5)
			if g == 1 && i == 3 {
				score = "NA"
			}
			fmt.Fprintf(&b, "C%03d,group-%d,%.0f,%.0f,%s\n", n, g, age, income, score)
		}
	}
	path := filepath.Join(dir, "customers.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return recs
}

func TestCLI_Init_Cluster_ListRuns(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := writeSegmentsCSV(t, home)
	outDir := filepath.Join(home, "out")
	promFile := filepath.Join(home, "run.prom")

	runCmd(t, "init", "shop", "-d", "customer segments")
	out := runCmd(t, "cluster", data, "-k", "3", "-o", outDir, "--plots", "-p", "shop", "--metrics-file", promFile)

	if !strings.Contains(out, "# Cluster report: customers.csv") {
		t.Fatalf("report not printed:\n%s", out)
	}
	if !strings.Contains(out, `1 missing value(s) in "SpendingScore"`) {
		t.Fatalf("imputation warning missing:\n%s", out)
	}

	clustered := readCSV(t, filepath.Join(outDir, clusteredFile))
	if got := strings.Join(clustered[0], ","); got != "CustomerID,Segment,Age,Income,SpendingScore,Cluster" {
		t.Fatalf("clustered header = %s", got)
	}
	if len(clustered) != 31 {
		t.Fatalf("clustered rows = %d, want 31", len(clustered))
	}
	// every customer of a segment shares a cluster
	bySegment := map[string]string{}
	for _, rec := range clustered[1:] {
		if prev, ok := bySegment[rec[1]]; ok && prev != rec[5] {
			t.Fatalf("segment %s split across clusters %s and %s", rec[1], prev, rec[5])
		}
		bySegment[rec[1]] = rec[5]
	}
	if clustered[14][4] != "NA" {
		t.Fatalf("missing cell should be exported as read, got %q", clustered[14][4])
	}

	summary := readCSV(t, filepath.Join(outDir, summaryFile))
	if got := strings.Join(summary[0], ","); got != "Cluster,Income,SpendingScore,Age" {
		t.Fatalf("summary header = %s", got)
	}
	if len(summary) != 4 {
		t.Fatalf("summary rows = %d, want 4", len(summary))
	}

	for _, name := range []string{reportFile, elbowPlotFile, pcaPlotFile} {
		if info, err := os.Stat(filepath.Join(outDir, name)); err != nil || info.Size() == 0 {
			t.Fatalf("expected %s to be written: %v", name, err)
		}
	}
	prom, err := os.ReadFile(promFile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(prom), "clusterloom_clusters 3") {
		t.Fatalf("metrics missing cluster count:\n%s", prom)
	}

	runs := runCmd(t, "list", "--runs", "-p", "shop")
	if !strings.Contains(runs, "customers.csv") || !strings.Contains(runs, "k=3 seed=42") {
		t.Fatalf("run not listed:\n%s", runs)
	}
	projects := runCmd(t, "list", "--projects")
	if !strings.Contains(projects, "- shop") {
		t.Fatalf("project not listed:\n%s", projects)
	}
}

func TestCLI_ProjectDefaultsAndRunDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := writeSegmentsCSV(t, home)

	runCmd(t, "init", "defaults")
	runCmd(t, "project", "set", "-p", "defaults", "k", "2")
	runCmd(t, "project", "set", "-p", "defaults", "features", "Age,Income")
	show := runCmd(t, "project", "show", "-p", "defaults")
	if !strings.Contains(show, "k: 2") || !strings.Contains(show, "features: Age,Income") {
		t.Fatalf("project defaults not saved:\n%s", show)
	}

	runCmd(t, "cluster", data, "-p", "defaults", "-q")

	matches, _ := filepath.Glob(filepath.Join(home, ".clusterloom", "projects", "defaults", "runs", "*", clusteredFile))
	if len(matches) != 1 {
		t.Fatalf("expected one run dir with outputs, got %v", matches)
	}
	summary := readCSV(t, filepath.Join(filepath.Dir(matches[0]), summaryFile))
	if got := strings.Join(summary[0], ","); got != "Cluster,Age,Income" {
		t.Fatalf("summary header = %s", got)
	}
	if len(summary) != 3 {
		t.Fatalf("k=2 expected 2 summary rows, got %d", len(summary)-1)
	}
	runs := runCmd(t, "list", "--runs", "-p", "defaults")
	if !strings.Contains(runs, "k=2") {
		t.Fatalf("project k not applied:\n%s", runs)
	}
}

func TestCLI_ProjectByPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := writeSegmentsCSV(t, home)
	projDir := filepath.Join(home, ".clusterloom", "projects", "bypath")

	runCmd(t, "init", "bypath")
	runCmd(t, "cluster", data, "-k", "3", "-p", projDir, "-q")

	runDirs, _ := filepath.Glob(filepath.Join(projDir, "runs", "*"))
	if len(runDirs) != 1 {
		t.Fatalf("expected one run dir, got %v", runDirs)
	}
	// a run directory or project.json inside the project resolves to its root
	for _, ref := range []string{runDirs[0], filepath.Join(projDir, "project.json")} {
		show := runCmd(t, "project", "show", "-p", ref)
		if !strings.Contains(show, "name: bypath") || !strings.Contains(show, "runs: 1") {
			t.Fatalf("project show -p %s:\n%s", ref, show)
		}
	}
	if _, err := execute("list", "--runs", "-p", filepath.Join(home, "elsewhere")); err == nil {
		t.Fatalf("expected error for a path outside any project")
	}
}

func TestCLI_ClusterErrors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := writeSegmentsCSV(t, home)

	_, err := execute("cluster", data, "-k", "11", "-o", filepath.Join(home, "x"))
	if !errors.Is(err, segment.ErrInvalidK) {
		t.Fatalf("expected InvalidK, got %v", err)
	}
	_, err = execute("cluster", data, "--features", "Age,Segment", "-o", filepath.Join(home, "x"))
	if !errors.Is(err, segment.ErrInvalidSelection) {
		t.Fatalf("expected InvalidSelection, got %v", err)
	}
	_, err = execute("cluster", filepath.Join(home, "missing.csv"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := os.Stat(filepath.Join(home, "x")); !os.IsNotExist(err) {
		t.Fatalf("failed runs should not create the output dir")
	}
}

func TestCLI_FeaturesAndElbow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := writeSegmentsCSV(t, home)

	out := runCmd(t, "features", data, "--preview", "2")
	if !strings.Contains(out, "customers.csv: 30 records, 5 columns") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "Default selection: Income, SpendingScore, Age") {
		t.Fatalf("unexpected default selection:\n%s", out)
	}
	if strings.Contains(out, "Segment"+strings.Repeat(" ", 10)) {
		t.Fatalf("text column listed as numeric:\n%s", out)
	}

	plot := filepath.Join(home, "elbow.png")
	out = runCmd(t, "elbow", data, "--features", "Age,Income", "--plot", plot)
	lines := 0
	for _, l := range strings.Split(out, "\n") {
		fields := strings.Fields(l)
		if len(fields) != 3 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err == nil {
			lines++
		}
	}
	if lines != 10 {
		t.Fatalf("expected 10 elbow rows, got %d:\n%s", lines, out)
	}
	if _, err := os.Stat(plot); err != nil {
		t.Fatalf("elbow plot not written: %v", err)
	}
}

func TestCLI_ElbowPlotToStdout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := writeSegmentsCSV(t, home)

	resetFlags(rootCmd)
	cfg = nil
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"elbow", data, "--features", "Age,Income", "--plot", "-"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("elbow --plot -: %v\n%s", err, stderr.String())
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("stdout is not a PNG stream (%d bytes)", stdout.Len())
	}
	if !strings.Contains(stderr.String(), "WCSS") {
		t.Fatalf("inertia table should go to stderr:\n%s", stderr.String())
	}
	if _, err := os.Stat("-"); !os.IsNotExist(err) {
		t.Fatalf("no file named - should be created")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	runCmd(t, "config", "set", "default_k", "5")
	runCmd(t, "config", "set", "seed", "7")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "default_k: 5") || !strings.Contains(out, "seed: 7") {
		t.Fatalf("config not persisted:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".clusterloom", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := execute("config", "set", "default_k", "42"); err == nil {
		t.Fatalf("expected validation error for default_k=42")
	}
}
