package project

import (
	"time"

	"github.com/google/uuid"
)

// Run records one clustering invocation and where its outputs went.
type Run struct {
	ID          string   `json:"id"`
	Dataset     string   `json:"dataset"`
	DatasetPath string   `json:"dataset_path"`
	Records     int      `json:"records"`
	Features    []string `json:"features"`
	K           int      `json:"k"`
	Seed        int64    `json:"seed"`
	Inertia     float64  `json:"inertia"`
	// Silhouette is nil when the score could not be computed.
	Silhouette *float64  `json:"silhouette,omitempty"`
	Imputed    int       `json:"imputed"`
	OutputDir  string    `json:"output_dir"`
	Files      []string  `json:"files"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string { return uuid.NewString() }

// ShortID is the first block of the id, enough to tell runs apart in listings.
func (r *Run) ShortID() string {
	if len(r.ID) >= 8 {
		return r.ID[:8]
	}
	return r.ID
}
