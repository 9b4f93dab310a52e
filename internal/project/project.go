package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/clusterloom-cli/internal/utils"
)

const (
	projectFileName = "project.json"
	runsDirName     = "runs"
)

// Project represents a ClusterLoom project persisted on disk. It keeps the
// history of clustering runs made against its datasets.
type Project struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Runs        []*Run         `json:"runs"`
	Config      *ProjectConfig `json:"config"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Not serialized: on-disk location of the project.json
	rootDir string `json:"-"`
}

// ProjectConfig holds per-project overrides of the global clustering defaults.
// Zero values inherit the global configuration.
type ProjectConfig struct {
	K        int      `json:"k,omitempty"`
	Seed     *int64   `json:"seed,omitempty"`
	Features []string `json:"features,omitempty"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, rootDir string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		Config:      &ProjectConfig{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, projectFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if p.Config == nil {
		p.Config = &ProjectConfig{}
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// RunDir is where the artifacts of run id are written.
func (p *Project) RunDir(id string) string {
	return filepath.Join(p.rootDir, runsDirName, id)
}

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	p.UpdatedAt = time.Now()
	return utils.WriteJSON(filepath.Join(p.rootDir, projectFileName), p)
}

// AddRun appends r to the history, assigning an id and timestamp when unset.
func (p *Project) AddRun(r *Run) *Run {
	if r.ID == "" {
		r.ID = NewRunID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	p.Runs = append(p.Runs, r)
	p.UpdatedAt = time.Now()
	return r
}

// LatestRun returns the most recently recorded run, or nil.
func (p *Project) LatestRun() *Run {
	if len(p.Runs) == 0 {
		return nil
	}
	return p.Runs[len(p.Runs)-1]
}

// FindRun looks a run up by full id or unique id prefix.
func (p *Project) FindRun(id string) (*Run, error) {
	var match *Run
	for _, r := range p.Runs {
		if r.ID == id {
			return r, nil
		}
		if strings.HasPrefix(r.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
			}
			match = r
		}
	}
	if match == nil {
		return nil, fmt.Errorf("run %q not found in project %s", id, p.Name)
	}
	return match, nil
}
