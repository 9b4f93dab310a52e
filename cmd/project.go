package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/clusterloom-cli/internal/project"
)

var (
	pmProject string
	pmClear   bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage per-project clustering defaults",
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a project's defaults and latest run",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadNamedProject()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name: %s\n", p.Name)
		if p.Description != "" {
			fmt.Fprintf(out, "description: %s\n", p.Description)
		}
		if p.Config.K > 0 {
			fmt.Fprintf(out, "k: %d\n", p.Config.K)
		}
		if p.Config.Seed != nil {
			fmt.Fprintf(out, "seed: %d\n", *p.Config.Seed)
		}
		if len(p.Config.Features) > 0 {
			fmt.Fprintf(out, "features: %s\n", strings.Join(p.Config.Features, ","))
		}
		fmt.Fprintf(out, "runs: %d\n", len(p.Runs))
		if r := p.LatestRun(); r != nil {
			fmt.Fprintf(out, "latest: %s (%s, k=%d) -> %s\n", r.ShortID(), r.Dataset, r.K, r.OutputDir)
		}
		return nil
	},
}

var projectSetCmd = &cobra.Command{
	Use:   "set <k|seed|features> [value]",
	Short: "Set or clear a project default",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadNamedProject()
		if err != nil {
			return err
		}
		key := args[0]
		if !pmClear && len(args) < 2 {
			return fmt.Errorf("value is required unless --clear is set")
		}
		val := ""
		if len(args) == 2 {
			val = args[1]
		}
		switch key {
		case "k":
			if pmClear {
				p.Config.K = 0
				break
			}
			k, err := strconv.Atoi(val)
			if err != nil || k < 2 || k > 10 {
				return fmt.Errorf("invalid k: %s (use 2..10)", val)
			}
			p.Config.K = k
		case "seed":
			if pmClear {
				p.Config.Seed = nil
				break
			}
			s, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed: %w", err)
			}
			p.Config.Seed = &s
		case "features":
			if pmClear {
				p.Config.Features = nil
				break
			}
			feats := splitList([]string{val})
			if len(feats) < 2 {
				return fmt.Errorf("features needs at least 2 columns")
			}
			p.Config.Features = feats
		default:
			return fmt.Errorf("unknown project key: %s (use k, seed or features)", key)
		}
		if err := p.Save(); err != nil {
			return err
		}
		if pmClear {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s for %s\n", key, pmProject)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s for %s: %s\n", key, pmProject, val)
		}
		return nil
	},
}

func loadNamedProject() (*project.Project, error) {
	if pmProject == "" {
		return nil, fmt.Errorf("--project is required")
	}
	dir, err := resolveProjectDirByName(pmProject)
	if err != nil {
		return nil, err
	}
	return project.LoadProject(dir)
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectSetCmd)
	projectCmd.PersistentFlags().StringVarP(&pmProject, "project", "p", "", "project name")
	projectSetCmd.Flags().BoolVar(&pmClear, "clear", false, "clear the value instead of setting it")
}
