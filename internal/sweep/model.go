package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/roach88/cicverify/internal/dutmodel"
	"github.com/roach88/cicverify/internal/golden"
	"github.com/roach88/cicverify/internal/harness"
)

// ErrNotBuilt is returned by Test when Dir holds no build.
var ErrNotBuilt = errors.New("sweep: no build in directory")

const modelBuildFile = "model.build.json"

// ModelBuilder runs scenarios in-process against the behavioral device
// model. A build elaborates the device once to check that the parameters
// are realizable and records them in Dir.
//
// Thread-safety: ModelBuilder is safe for concurrent use on distinct
// directories.
type ModelBuilder struct {
	log *zap.Logger

	mu     sync.Mutex
	builds map[string]golden.Params
}

// NewModelBuilder creates the in-process backend.
func NewModelBuilder(log *zap.Logger) *ModelBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &ModelBuilder{log: log, builds: make(map[string]golden.Params)}
}

// Name implements Builder.
func (m *ModelBuilder) Name() string { return "model" }

// Build implements Builder.
func (m *ModelBuilder) Build(ctx context.Context, req BuildRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buildPath := filepath.Join(req.Dir, modelBuildFile)
	if req.Always {
		if err := os.Remove(buildPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("model build: %w", err)
		}
		m.mu.Lock()
		delete(m.builds, req.Dir)
		m.mu.Unlock()
	}

	if _, err := dutmodel.New(req.Params); err != nil {
		return fmt.Errorf("model build: %w", err)
	}
	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return fmt.Errorf("model build: %w", err)
	}
	data, err := json.MarshalIndent(struct {
		Top      string        `json:"top"`
		Generics []Generic     `json:"generics"`
		Params   golden.Params `json:"params"`
	}{req.Top, req.Generics, req.Params}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(buildPath, data, 0o644); err != nil {
		return fmt.Errorf("model build: %w", err)
	}

	m.mu.Lock()
	m.builds[req.Dir] = req.Params
	m.mu.Unlock()
	m.log.Debug("model built", zap.String("dir", req.Dir), zap.Stringer("params", req.Params))
	return nil
}

// Test implements Builder. The result file holds the JSON encoded
// harness.Result.
func (m *ModelBuilder) Test(ctx context.Context, req TestRequest) (*TestReport, error) {
	m.mu.Lock()
	params, ok := m.builds[req.Dir]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBuilt, req.Dir)
	}

	dev, err := dutmodel.New(params, dutmodel.WithLogger(m.log))
	if err != nil {
		return nil, err
	}
	sc := &harness.Scenario{
		Name:    req.Scenario,
		Params:  req.Params,
		Input:   req.Input,
		MaxTime: req.MaxTime,
	}
	if req.Scenario == harness.ScenarioPDM {
		sc.Output = filepath.Join(req.Dir, fmt.Sprintf("%s_%s.csv", req.Top, req.Scenario))
	}

	res, err := harness.Run(ctx, sc, dev, harness.WithLogger(m.log))
	if err != nil {
		return nil, err
	}

	resultPath := filepath.Join(req.Dir, req.ResultFile)
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(resultPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("model test: %w", err)
	}
	return &TestReport{
		Pass:       res.Pass,
		Failures:   res.Failures(),
		Samples:    len(res.Samples),
		ResultFile: resultPath,
	}, nil
}
