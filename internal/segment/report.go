package segment

import (
	"fmt"
	"strings"
)

// Markdown renders the run as a standalone report.
func (r *Result) Markdown() string {
	var b strings.Builder
	name := "dataset"
	if r.Dataset != nil && r.Dataset.Name != "" {
		name = r.Dataset.Name
	}
	b.WriteString(fmt.Sprintf("# Cluster report: %s\n\n", name))
	if r.Dataset != nil {
		if r.Dataset.TotalRows > r.Dataset.Len() {
			b.WriteString(fmt.Sprintf("Records: %d (of %d)\n", r.Dataset.Len(), r.Dataset.TotalRows))
		} else {
			b.WriteString(fmt.Sprintf("Records: %d\n", r.Dataset.Len()))
		}
		b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Dataset.Columns)))
	}
	b.WriteString(fmt.Sprintf("Features: %s\n", strings.Join(r.Features, ", ")))
	b.WriteString(fmt.Sprintf("Seed: %d\n", r.Seed))

	if len(r.Elbow) > 0 {
		b.WriteString("\n## Elbow curve\n\n")
		b.WriteString("| k | WCSS |\n| --- | --- |\n")
		for _, pt := range r.Elbow {
			b.WriteString(fmt.Sprintf("| %d | %.4f |\n", pt.K, pt.Inertia))
		}
	}

	if a := r.Assignment; a != nil {
		b.WriteString(fmt.Sprintf("\n## Clusters (k=%d)\n\n", a.K))
		if r.ScoreErr == nil {
			b.WriteString(fmt.Sprintf("Silhouette score: %.2f\n", r.Score))
		} else {
			b.WriteString("Silhouette score: n/a\n")
		}
		b.WriteString(fmt.Sprintf("Inertia: %.4f (%d iterations)\n", a.Inertia, a.Iterations))
	}

	if s := r.Summary; s != nil && len(s.Rows) > 0 {
		b.WriteString("\n## Cluster summary\n\n")
		t := s.Table()
		b.WriteString("| " + strings.Join(t.Header, " | ") + " | Size |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(t.Header)+1) + "\n")
		for i, row := range t.Rows {
			b.WriteString("| " + strings.Join(row, " | ") + fmt.Sprintf(" | %d |\n", s.Rows[i].Size))
		}
	}

	if p := r.Projection; p != nil {
		b.WriteString("\n## PCA projection\n\n")
		b.WriteString(fmt.Sprintf("Explained variance: PC1 %.1f%%, PC2 %.1f%%\n",
			p.ExplainedVarianceRatio[0]*100, p.ExplainedVarianceRatio[1]*100))
		b.WriteString("\n| Feature | PC1 | PC2 |\n| --- | --- | --- |\n")
		for j, f := range p.Names {
			b.WriteString(fmt.Sprintf("| %s | %.3f | %.3f |\n", f, p.Components[0][j], p.Components[1][j]))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}
