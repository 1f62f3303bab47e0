package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/errors"
	"github.com/matzehuels/scormlens/pkg/pipeline"
)

// stdinArg reads the package from standard input.
const stdinArg = "-"

// packageArgs accepts exactly one package: a path, an http(s) URL or "-".
var packageArgs = cobra.ExactArgs(1)

// isURL reports whether arg should be downloaded rather than opened.
func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// analyze loads and analyzes the package named by arg. Fatal analysis
// errors are returned with the failing stage in the message.
func (c *CLI) analyze(ctx context.Context, arg string, o analysisOptions) (*course.Model, error) {
	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	opts := c.pipelineOptions(o)
	prog := newProgress(c.Logger)

	spinner := newSpinner(ctx, "Analyzing "+displayName(arg, opts.Source))
	spinner.Start()
	m, hit, err := c.dispatch(ctx, runner, arg, opts)
	spinner.Stop()

	if err != nil {
		if errors.IsFatal(err) {
			return nil, fmt.Errorf("%s", fatalMessage(err))
		}
		return nil, err
	}
	c.Logger.Debug("analysis ready", "source", m.Source, "cache", hit)
	prog.done("Analyzed " + m.Source)
	return m, nil
}

func (c *CLI) dispatch(ctx context.Context, r *pipeline.Runner, arg string, opts pipeline.Options) (*course.Model, bool, error) {
	switch {
	case arg == stdinArg:
		data, err := readStdin(os.Stdin, c.config.Limits.MaxUploadBytes)
		if err != nil {
			return nil, false, err
		}
		return r.AnalyzeWithCacheInfo(ctx, data, opts)
	case isURL(arg):
		if err := errors.ValidateURL(arg); err != nil {
			return nil, false, err
		}
		return r.AnalyzeURL(ctx, arg, opts)
	default:
		return r.AnalyzeFile(ctx, arg, opts)
	}
}

// readStdin reads at most limit bytes from r.
func readStdin(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "package on stdin exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no package data on stdin")
	}
	return data, nil
}

func displayName(arg, override string) string {
	switch {
	case override != "":
		return override
	case arg == stdinArg:
		return "stdin"
	}
	return pipeline.SourceName(arg)
}
