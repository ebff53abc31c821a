package deps

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/dicom-mcp/internal/execx/execxtest"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
)

func TestImportScript(t *testing.T) {
	assert.Equal(t, "import mcp; import pydantic; import playwright",
		ImportScript(model.DefaultImportCheck))
	assert.Equal(t, "", ImportScript(nil))
}

func TestCheck_AllPresent(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("python3 -c import mcp; import pydantic; import playwright", execxtest.FakeResult{})

	err := NewChecker(runner).Check(context.Background(), "python3", model.DefaultImportCheck, "chromium")
	assert.NoError(t, err)
}

// TestCheck_Missing verifies the diagnostic, exit code and the install
// instructions shown to the user.
func TestCheck_Missing(t *testing.T) {
	runner := execxtest.NewFakeRunner().
		On("python3 -c import mcp; import pydantic; import playwright", execxtest.FakeResult{
			ExitCode: 1,
			Stderr:   "ModuleNotFoundError: No module named 'playwright'",
		})

	err := NewChecker(runner).Check(context.Background(), "python3", model.DefaultImportCheck, "chromium")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitDependenciesMissing, cliErr.Code)
	assert.Equal(t, []string{
		"Please install the dependencies:",
		"  pip install mcp pydantic playwright",
		"  playwright install chromium",
	}, cliErr.Hints)
	assert.Contains(t, err.Error(), "No module named 'playwright'")
}

func TestCheck_NoModules(t *testing.T) {
	runner := execxtest.NewFakeRunner()

	assert.NoError(t, NewChecker(runner).Check(context.Background(), "python3", nil, "chromium"))
	assert.Empty(t, runner.Calls())
}

// TestInstallRequirements_BestEffort checks that one failing requirement
// does not stop the others and that the order is preserved.
func TestInstallRequirements_BestEffort(t *testing.T) {
	reqs := model.MustParseRequirements([]string{"mcp>=0.8.0", "pydantic>=2.0", "pydicom>=2.3.0"})
	runner := execxtest.NewFakeRunner().
		On("python3 -m pip install mcp>=0.8.0", execxtest.FakeResult{}).
		On("python3 -m pip install pydantic>=2.0", execxtest.FakeResult{ExitCode: 1, Stderr: "resolution impossible"}).
		On("python3 -m pip install pydicom>=2.3.0", execxtest.FakeResult{})

	var seen []string
	inst := NewInstaller(runner)
	inst.OnResult = func(req model.Requirement, err error) {
		mark := "ok"
		if err != nil {
			mark = "fail"
		}
		seen = append(seen, req.String()+":"+mark)
	}

	report := inst.InstallRequirements(context.Background(), "python3", reqs)

	assert.Equal(t, []string{
		"python3 -m pip install mcp>=0.8.0",
		"python3 -m pip install pydantic>=2.0",
		"python3 -m pip install pydicom>=2.3.0",
	}, runner.CommandLines())
	require.Len(t, report.Installed, 2)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "pydantic>=2.0", report.Failed[0].String())
	assert.False(t, report.OK())
	assert.Equal(t, []string{"mcp>=0.8.0:ok", "pydantic>=2.0:fail", "pydicom>=2.3.0:ok"}, seen)
}

// TestInstall_BrowserFailureIsReported verifies that a browser failure is
// captured in the report instead of being returned as a fatal error.
func TestInstall_BrowserFailureIsReported(t *testing.T) {
	reqs := model.MustParseRequirements([]string{"mcp>=0.8.0"})
	runner := execxtest.NewFakeRunner().
		On("python -m pip install mcp>=0.8.0", execxtest.FakeResult{}).
		On("python -m playwright install chromium", execxtest.FakeResult{ExitCode: 1})

	report := NewInstaller(runner).Install(context.Background(), "python", reqs, "chromium")

	assert.Len(t, report.Installed, 1)
	assert.Empty(t, report.Failed)
	require.Error(t, report.BrowserErr)
	assert.Contains(t, report.BrowserErr.Error(), "chromium")
	assert.False(t, report.OK())
}

func TestInstall_AllSucceed(t *testing.T) {
	reqs := model.MustParseRequirements([]string{"httpx>=0.24.0"})
	runner := execxtest.NewFakeRunner().
		On("python3 -m pip install httpx>=0.24.0", execxtest.FakeResult{Stdout: "Successfully installed httpx"}).
		On("python3 -m playwright install chromium", execxtest.FakeResult{})

	var out bytes.Buffer
	inst := NewInstaller(runner)
	inst.Output = &out

	report := inst.Install(context.Background(), "python3", reqs, "chromium")
	assert.True(t, report.OK())
	assert.Contains(t, out.String(), "Successfully installed httpx")
}

// TestInstallRequirements_Cancelled marks remaining requirements as failed
// without invoking pip once the context is done.
func TestInstallRequirements_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reqs := model.MustParseRequirements([]string{"mcp", "pydantic"})
	runner := execxtest.NewFakeRunner()

	report := NewInstaller(runner).InstallRequirements(ctx, "python3", reqs)
	assert.Len(t, report.Failed, 2)
	assert.Empty(t, runner.Calls())
}
