package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/clusterloom-cli/internal/dataset"
)

// inputFlags are the dataset loading flags shared by features, elbow and cluster.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.delimiter, "delimiter", "", "field delimiter: ',', ';', 'tab' (default: sniffed)")
	fs.StringVar(&f.decimal, "decimal", "", "decimal separator: '.' or 'comma' (default: auto)")
	fs.StringVar(&f.thousands, "thousands", "", "thousands separator: ',', '.' or 'space'")
	fs.IntVar(&f.maxRows, "max-rows", 0, "maximum records to load (0 = default limit)")
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX sheet name")
	fs.IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX 1-based sheet index (used when --sheet-name is empty)")
}

func (f *inputFlags) reset() { *f = inputFlags{} }

func (f *inputFlags) options() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(f.thousands) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator == opt.ThousandsSeparator {
		return opt, fmt.Errorf("--decimal and --thousands must differ")
	}
	opt.SheetName = f.sheetName
	if f.sheetIndex > 0 {
		opt.SheetIndex = f.sheetIndex
	}
	return opt, nil
}

func (f *inputFlags) load(path string) (*dataset.Dataset, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("load %s: no records found", path)
	}
	return ds, nil
}

// splitList accepts "a,b" as well as repeated flags.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s\n", w)
	}
}
