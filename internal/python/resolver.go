package python

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/shinji-kodama/dicom-mcp/internal/ctxlog"
	"github.com/shinji-kodama/dicom-mcp/internal/execx"
	"github.com/shinji-kodama/dicom-mcp/internal/model"
)

// DefaultCandidates is the lookup order for the interpreter command.
var DefaultCandidates = []string{"python3", "python"}

// DefaultMinVersion is the oldest Python the server supports.
var DefaultMinVersion = semver.MustParse("3.9.0")

// DownloadURL is shown when no interpreter is found.
const DownloadURL = "https://www.python.org/"

// ErrTooOld is wrapped by Resolve's error when every interpreter that ran
// reported a version below the minimum.
var ErrTooOld = errors.New("python version below minimum")

// versionPattern matches "3.11", "3.11.4" and the numeric prefix of
// pre-releases such as "3.13.0rc1".
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// Resolver finds a working Python interpreter.
type Resolver struct {
	runner     execx.Runner
	candidates []string
	minVersion *semver.Version
}

// NewResolver creates a Resolver. Empty candidates fall back to
// DefaultCandidates and a nil minVersion to DefaultMinVersion.
func NewResolver(runner execx.Runner, candidates []string, minVersion *semver.Version) *Resolver {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	if minVersion == nil {
		minVersion = DefaultMinVersion
	}
	return &Resolver{runner: runner, candidates: candidates, minVersion: minVersion}
}

// Resolve returns the first candidate that responds to `--version` with a
// version at or above the minimum.
//
// Returns a model.CLIError with ExitInterpreterNotFound when every candidate
// fails.
func (r *Resolver) Resolve(ctx context.Context) (model.Interpreter, error) {
	log := ctxlog.FromContext(ctx)

	var (
		lastErr error
		tooOld  error
	)
	for _, cmd := range r.candidates {
		version, err := r.probe(ctx, cmd)
		if err != nil {
			log.Debug("interpreter candidate rejected", "command", cmd, "error", err)
			lastErr = err
			continue
		}

		if version.LessThan(r.minVersion) {
			log.Debug("interpreter too old", "command", cmd, "version", version.String(), "min", r.minVersion.String())
			tooOld = fmt.Errorf("%w: %s is Python %s, need %s or later", ErrTooOld, cmd, version, r.minVersion)
			continue
		}

		return model.Interpreter{Command: cmd, Version: version}, nil
	}

	message := "Python is not installed or not in PATH"
	if tooOld != nil {
		// an old interpreter is a more useful diagnosis than a missing one
		message = fmt.Sprintf("Python %d.%d or later is required", r.minVersion.Major(), r.minVersion.Minor())
		lastErr = tooOld
	}

	return model.Interpreter{}, model.WrapCLIError(
		model.ExitInterpreterNotFound,
		message,
		lastErr,
	).WithHints(fmt.Sprintf("Please install Python %d.%d or later from %s",
		r.minVersion.Major(), r.minVersion.Minor(), DownloadURL))
}

// probe runs `<cmd> --version` and parses the reported version. Python 2
// prints its version on stderr, so both streams are inspected.
func (r *Resolver) probe(ctx context.Context, cmd string) (*semver.Version, error) {
	var stderr strings.Builder
	stdout, err := r.runner.Run(ctx, execx.Command{
		Name:   cmd,
		Args:   []string{"--version"},
		Stderr: &stderr,
	})
	if err != nil {
		return nil, err
	}

	output := stdout
	if strings.TrimSpace(output) == "" {
		output = stderr.String()
	}
	return ParseVersion(output)
}

// ParseVersion extracts the interpreter version from `python --version`
// output such as "Python 3.11.4".
func ParseVersion(output string) (*semver.Version, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return nil, fmt.Errorf("no version in %q", strings.TrimSpace(output))
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	return semver.NewVersion(fmt.Sprintf("%s.%s.%s", m[1], m[2], patch))
}
