package sweep

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrCommandFailed is returned when a simulator step exits non-zero.
var ErrCommandFailed = errors.New("sweep: simulator command failed")

// NVC builds and tests with the nvc VHDL simulator and cocotb. Tests run the
// cocotb module named after the top entity, filtered to the scenario.
type NVC struct {
	// Binary is the simulator executable. Default: "nvc".
	Binary string

	// Library is the design library name. Default: "work".
	Library string

	// VHPIPlugin is the cocotb VHPI library loaded into the simulator.
	VHPIPlugin string

	// Env is added to the environment of every test run.
	Env map[string]string

	// Run executes commands. Default: ExecCommand.
	Run CommandFunc

	Log *zap.Logger
}

// Name implements Builder.
func (n *NVC) Name() string { return "nvc" }

func (n *NVC) binary() string {
	if n.Binary == "" {
		return "nvc"
	}
	return n.Binary
}

func (n *NVC) library() string {
	if n.Library == "" {
		return "work"
	}
	return n.Library
}

func (n *NVC) logger() *zap.Logger {
	if n.Log == nil {
		return zap.NewNop()
	}
	return n.Log
}

func (n *NVC) workArg(dir string) string {
	return fmt.Sprintf("--work=%s:%s", n.library(), filepath.Join(dir, n.library()))
}

func (n *NVC) run(ctx context.Context, dir string, env []string, args ...string) error {
	run := n.Run
	if run == nil {
		run = ExecCommand
	}
	n.logger().Debug("running simulator", zap.String("dir", dir), zap.Strings("args", args))
	res, err := run(ctx, dir, env, n.binary(), args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: %s %s: exit %d: %s", ErrCommandFailed, n.binary(), args[1], res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return nil
}

// Build analyses the ordered sources and elaborates the top entity with the
// generics of the request. With Always the library is deleted first.
func (n *NVC) Build(ctx context.Context, req BuildRequest) error {
	if len(req.Sources) == 0 {
		return fmt.Errorf("nvc build: no sources for %s", req.Top)
	}
	lib := filepath.Join(req.Dir, n.library())
	if req.Always {
		if err := os.RemoveAll(lib); err != nil {
			return fmt.Errorf("nvc build: %w", err)
		}
	}
	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return fmt.Errorf("nvc build: %w", err)
	}

	analyse := append([]string{n.workArg(req.Dir), "-a"}, req.Sources...)
	if err := n.run(ctx, req.Dir, nil, analyse...); err != nil {
		return err
	}

	elaborate := []string{n.workArg(req.Dir), "-e"}
	for _, g := range req.Generics {
		elaborate = append(elaborate, "-g", g.Name+"="+g.Value)
	}
	elaborate = append(elaborate, req.Top)
	return n.run(ctx, req.Dir, nil, elaborate...)
}

// Test runs the elaborated top with cocotb loaded and reads the JUnit
// results file cocotb writes.
func (n *NVC) Test(ctx context.Context, req TestRequest) (*TestReport, error) {
	resultPath := filepath.Join(req.Dir, req.ResultFile)
	env := []string{
		"TOPLEVEL=" + req.Top,
		"TOPLEVEL_LANG=vhdl",
		"COCOTB_TEST_MODULES=" + req.Top,
		"COCOTB_TEST_FILTER=" + req.Scenario,
		"COCOTB_RESULTS_FILE=" + resultPath,
	}
	if req.Input != "" {
		env = append(env, "CIC_STIMULUS="+req.Input)
	}
	keys := make([]string, 0, len(n.Env))
	for k := range n.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+n.Env[k])
	}

	args := []string{n.workArg(req.Dir), "-r", req.Top}
	if n.VHPIPlugin != "" {
		args = append(args, "--load="+n.VHPIPlugin)
	}
	if req.MaxTime > 0 {
		args = append(args, fmt.Sprintf("--stop-time=%dns", req.MaxTime))
	}
	args = append(args, req.Plusargs...)

	runErr := n.run(ctx, req.Dir, env, args...)
	if runErr != nil && !errors.Is(runErr, ErrCommandFailed) {
		return nil, runErr
	}

	report, err := readJUnit(resultPath)
	if err != nil {
		if runErr != nil {
			return nil, runErr
		}
		return nil, err
	}
	if runErr != nil {
		report.Pass = false
		report.Failures = append(report.Failures, runErr.Error())
	}
	return report, nil
}

type junitSuites struct {
	Cases []junitCase `xml:"testsuite>testcase"`
}

type junitCase struct {
	Name    string        `xml:"name,attr"`
	Failure *junitMessage `xml:"failure"`
	Error   *junitMessage `xml:"error"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
}

func readJUnit(path string) (*TestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nvc test: results: %w", err)
	}
	var suites junitSuites
	if err := xml.Unmarshal(data, &suites); err != nil {
		return nil, fmt.Errorf("nvc test: results: %w", err)
	}
	report := &TestReport{Pass: len(suites.Cases) > 0, ResultFile: path}
	for _, c := range suites.Cases {
		for _, m := range []*junitMessage{c.Failure, c.Error} {
			if m != nil {
				report.Pass = false
				report.Failures = append(report.Failures, c.Name+": "+m.Message)
			}
		}
	}
	if len(suites.Cases) == 0 {
		report.Failures = append(report.Failures, "no test cases ran")
	}
	return report, nil
}
