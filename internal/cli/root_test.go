package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// execute runs the CLI with a silent logger and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWith(t, &RootOptions{Logger: zap.NewNop()}, args...)
}

func executeWith(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "cicv", cmd.Use)
	assert.Contains(t, cmd.Long, "CIC decimation")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"deps", "golden", "run", "runs", "sweep"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestParamFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"golden", "run"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		for flag, def := range map[string]string{"order": "3", "delay": "1", "ratio": "4", "compensate": "false"} {
			f := sub.Flags().Lookup(flag)
			require.NotNil(t, f, "%s --%s", name, flag)
			assert.Equal(t, def, f.DefValue)
		}
	}
}

func TestSweepCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sweepCmd, _, err := cmd.Find([]string{"sweep"})
	require.NoError(t, err)

	assert.Equal(t, "model", sweepCmd.Flags().Lookup("backend").DefValue)
	assert.Equal(t, "", sweepCmd.Flags().Lookup("db").DefValue)
	assert.Equal(t, "p", sweepCmd.Flags().Lookup("parallel").Shorthand)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := execute(t, "--format", "invalid", "golden")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseBuildsLogger(t *testing.T) {
	opts := &RootOptions{}
	_, _, err := executeWith(t, opts, "--verbose", "golden")
	require.NoError(t, err)
	require.NotNil(t, opts.Logger)
	assert.True(t, opts.Logger.Core().Enabled(zap.DebugLevel))
}
