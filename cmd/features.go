package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/clusterloom-cli/internal/segment"
)

var (
	featInput   inputFlags
	featPreview int
)

var featuresCmd = &cobra.Command{
	Use:   "features <file>",
	Short: "Preview a dataset and list its numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		ds, err := featInput.load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if ds.TotalRows > ds.Len() {
			fmt.Fprintf(out, "%s: %d records loaded (of %d), %d columns\n", ds.Name, ds.Len(), ds.TotalRows, len(ds.Columns))
		} else {
			fmt.Fprintf(out, "%s: %d records, %d columns\n", ds.Name, ds.Len(), len(ds.Columns))
		}

		if featPreview > 0 {
			fmt.Fprintln(out, "\nPreview:")
			fmt.Fprintln(out, strings.Join(ds.Columns, " | "))
			for _, row := range ds.Head(featPreview) {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = v.String()
				}
				fmt.Fprintln(out, strings.Join(cells, " | "))
			}
		}

		sel, err := segment.SelectFeatures(ds, c.MaxDefaultFeatures)
		if sel != nil && len(sel.Numeric) > 0 {
			def := map[string]bool{}
			for _, n := range sel.Default {
				def[n] = true
			}
			fmt.Fprintln(out, "\nNumeric columns:")
			for _, f := range sel.Numeric {
				mark := " "
				if def[f.Name] {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %-30s variance %-12.4g missing %d\n", mark, f.Name, f.Variance, f.Missing)
			}
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nDefault selection: %s\n", strings.Join(sel.Default, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featInput.bind(featuresCmd.Flags())
	featuresCmd.Flags().IntVar(&featPreview, "preview", 5, "number of records to preview (0 to skip)")
}
