package python

import (
	"context"
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/dicom-mcp/internal/execx/execxtest"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
)

// TestParseVersion covers the version strings real interpreters print.
func TestParseVersion(t *testing.T) {
	tests := []struct {
		output   string
		want     string
		hasError bool
	}{
		{"Python 3.11.4\n", "3.11.4", false},
		{"Python 3.9\n", "3.9.0", false},
		{"Python 3.13.0rc1\n", "3.13.0", false},
		{"Python 2.7.18", "2.7.18", false},
		{"", "", true},
		{"command not found", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			v, err := ParseVersion(tt.output)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

// TestResolve_PrefersPython3 verifies the primary candidate wins when it
// responds, and the fallback is never consulted.
func TestResolve_PrefersPython3(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("python3 --version", execxtest.FakeResult{Stdout: "Python 3.12.1\n"}).
		On("python --version", execxtest.FakeResult{Stdout: "Python 3.10.0\n"})

	interp, err := NewResolver(runner, nil, nil).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "python3", interp.Command)
	assert.Equal(t, "3.12.1", interp.Version.String())
	assert.Equal(t, []string{"python3 --version"}, runner.CommandLines())
}

// TestResolve_FallsBackToPython checks the single fallback when python3
// is absent.
func TestResolve_FallsBackToPython(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("python --version", execxtest.FakeResult{Stdout: "Python 3.10.0\n"})

	interp, err := NewResolver(runner, nil, nil).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "python", interp.Command)
	assert.Equal(t, []string{"python3 --version", "python --version"}, runner.CommandLines())
}

// TestResolve_VersionOnStderr verifies that a version printed on stderr
// (Python 2 behaviour) is still parsed, and that a too-old interpreter is
// rejected.
func TestResolve_VersionOnStderr(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("python --version", execxtest.FakeResult{Stderr: "Python 2.7.18\n"})

	_, err := NewResolver(runner, []string{"python"}, nil).Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2.7.18")
}

// TestResolve_NoneFound verifies the terminal diagnostic and its exit code.
func TestResolve_NoneFound(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("python3 --version", execxtest.FakeResult{ExitCode: 1, Stderr: "broken"})

	_, err := NewResolver(runner, nil, nil).Resolve(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitInterpreterNotFound, cliErr.Code)
	assert.Equal(t, "Python is not installed or not in PATH", cliErr.Message)
	require.Len(t, cliErr.Hints, 1)
	assert.Contains(t, cliErr.Hints[0], "Python 3.9 or later")
	assert.Contains(t, cliErr.Hints[0], DownloadURL)
}

// TestResolve_OnlyTooOld reports an outdated interpreter instead of a
// missing one when that is all the host has.
func TestResolve_OnlyTooOld(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("python3 --version", execxtest.FakeResult{Stdout: "Python 3.8.10"})

	_, err := NewResolver(runner, nil, nil).Resolve(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitInterpreterNotFound, cliErr.Code)
	assert.Equal(t, "Python 3.9 or later is required", cliErr.Message)
	assert.ErrorIs(t, err, ErrTooOld)
	assert.Contains(t, err.Error(), "python3 is Python 3.8.10")
}

// TestResolve_CustomCandidatesAndMinimum exercises configuration supplied
// through DICOM_MCP_PYTHON / the YAML file.
func TestResolve_CustomCandidatesAndMinimum(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("/opt/py/bin/python3.10 --version", execxtest.FakeResult{Stdout: "Python 3.10.2"}).
		On("/usr/bin/python3.12 --version", execxtest.FakeResult{Stdout: "Python 3.12.0"})

	r := NewResolver(runner,
		[]string{"/opt/py/bin/python3.10", "/usr/bin/python3.12"},
		semver.MustParse("3.11.0"))

	interp, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/python3.12", interp.Command)
}

// TestResolve_UnparseableOutput treats garbage output like a failure.
func TestResolve_UnparseableOutput(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("python3 --version", execxtest.FakeResult{Stdout: "hello"}).
		On("python --version", execxtest.FakeResult{Stdout: "Python 3.11.0"})

	interp, err := NewResolver(runner, nil, nil).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "python", interp.Command)
}
