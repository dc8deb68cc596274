package sweep

import (
	"context"

	"github.com/roach88/cicverify/internal/golden"
)

// BuildRequest asks a backend to build one parameterization.
type BuildRequest struct {
	Top      string
	Sources  []string
	Generics []Generic
	Params   golden.Params
	Dir      string

	// Always forces a clean build. The orchestrator always sets it: every
	// parameter combination changes the generated hardware.
	Always bool
}

// TestRequest asks a backend to run one scenario against the last build in
// Dir.
type TestRequest struct {
	Top        string
	Scenario   string
	Params     golden.Params
	Dir        string
	Input      string
	Plusargs   []string
	ResultFile string
	MaxTime    uint64
}

// TestReport is the outcome of one scenario run.
type TestReport struct {
	Pass       bool     `json:"pass"`
	Failures   []string `json:"failures,omitempty"`
	Samples    int      `json:"samples"`
	ResultFile string   `json:"result_file"`
}

// Builder is a build and test backend.
type Builder interface {
	// Name identifies the backend in logs and persisted runs.
	Name() string
	Build(ctx context.Context, req BuildRequest) error
	Test(ctx context.Context, req TestRequest) (*TestReport, error)
}
