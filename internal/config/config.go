package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory under $HOME holding config and projects.
const DirName = ".clusterloom"

// Global configuration structure.
type Global struct {
	// Clustering
	Seed               int64 `mapstructure:"seed" yaml:"seed"`
	DefaultK           int   `mapstructure:"default_k" yaml:"default_k"`
	MaxK               int   `mapstructure:"max_k" yaml:"max_k"`
	MaxIter            int   `mapstructure:"max_iter" yaml:"max_iter"`
	NInit              int   `mapstructure:"n_init" yaml:"n_init"`
	MaxDefaultFeatures int   `mapstructure:"max_default_features" yaml:"max_default_features"`
	SummaryDecimals    int   `mapstructure:"summary_decimals" yaml:"summary_decimals"`

	// Output
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	ProjectsDir string `mapstructure:"projects_dir" yaml:"projects_dir"`
	Plots       bool   `mapstructure:"plots" yaml:"plots"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"seed", "default_k", "max_k", "max_iter", "n_init", "max_default_features", "summary_decimals",
	"output_dir", "projects_dir", "plots", "metrics_file", "log_level", "log_format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("seed", 42)
	v.SetDefault("default_k", 4)
	v.SetDefault("max_k", 10)
	v.SetDefault("max_iter", 300)
	v.SetDefault("n_init", 10)
	v.SetDefault("max_default_features", 4)
	v.SetDefault("summary_decimals", 2)
	v.SetDefault("output_dir", "clusterloom-out")
	v.SetDefault("projects_dir", "")
	v.SetDefault("plots", false)
	v.SetDefault("metrics_file", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.clusterloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := homeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CLUSTERLOOM")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve projects_dir default: ~/.clusterloom/projects
	if c.ProjectsDir == "" {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		c.ProjectsDir = filepath.Join(dir, "projects")
	}
	return &c, nil
}

// Set parses val and assigns it to the field named by key.
func (c *Global) Set(key, val string) error {
	intIn := func(lo, hi int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < lo || (hi > 0 && i > hi) {
			if hi > 0 {
				return 0, fmt.Errorf("invalid %s: %v (use %d..%d)", key, val, lo, hi)
			}
			return 0, fmt.Errorf("invalid %s: %v (minimum %d)", key, val, lo)
		}
		return i, nil
	}
	dst := map[string]*int{
		"default_k":            &c.DefaultK,
		"max_k":                &c.MaxK,
		"max_iter":             &c.MaxIter,
		"n_init":               &c.NInit,
		"max_default_features": &c.MaxDefaultFeatures,
		"summary_decimals":     &c.SummaryDecimals,
	}
	bounds := map[string][2]int{
		"default_k":            {2, 10},
		"max_k":                {1, 10},
		"max_iter":             {1, 0},
		"n_init":               {1, 0},
		"max_default_features": {2, 0},
		"summary_decimals":     {1, 10},
	}
	if p, ok := dst[key]; ok {
		b := bounds[key]
		i, err := intIn(b[0], b[1])
		if err != nil {
			return err
		}
		*p = i
		return nil
	}

	switch key {
	case "seed":
		s, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for seed: %w", err)
		}
		c.Seed = s
	case "output_dir":
		c.OutputDir = val
	case "projects_dir":
		c.ProjectsDir = val
	case "plots":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for plots: %w", err)
		}
		c.Plots = b
	case "metrics_file":
		c.MetricsFile = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "console", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get renders the value of key for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "seed":
		return strconv.FormatInt(c.Seed, 10), nil
	case "default_k":
		return strconv.Itoa(c.DefaultK), nil
	case "max_k":
		return strconv.Itoa(c.MaxK), nil
	case "max_iter":
		return strconv.Itoa(c.MaxIter), nil
	case "n_init":
		return strconv.Itoa(c.NInit), nil
	case "max_default_features":
		return strconv.Itoa(c.MaxDefaultFeatures), nil
	case "summary_decimals":
		return strconv.Itoa(c.SummaryDecimals), nil
	case "output_dir":
		return c.OutputDir, nil
	case "projects_dir":
		return c.ProjectsDir, nil
	case "plots":
		return strconv.FormatBool(c.Plots), nil
	case "metrics_file":
		return c.MetricsFile, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}
