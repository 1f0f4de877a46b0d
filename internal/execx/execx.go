// Package execx runs external commands without a shell.
//
// Command strings pass through sanitize.Command and are then split into an
// argv with shell-style quoting, so a name like "my app" stays one
// argument while metacharacters such as ; | & $ never reach a process.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/sanitize"
)

// Runner runs a command line in a working directory and returns its
// combined output.
type Runner interface {
	Run(ctx context.Context, dir, command string) ([]byte, error)
}

// Exec is the Runner backed by os/exec.
type Exec struct {
	// Env is appended to the current environment.
	Env []string

	// Stream, when set, also receives the command's output as it runs.
	Stream io.Writer

	Logger *zap.Logger
}

// New returns an Exec runner.
func New(logger *zap.Logger) *Exec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exec{Logger: logger}
}

// Split sanitizes command and splits it into arguments.
func Split(command string) ([]string, error) {
	clean := sanitize.Command(command)

	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	args, err := parser.Parse(clean)
	if err != nil {
		return nil, errors.New("E403").
			WithDetailf("cannot parse %q", clean).
			Wrap(err)
	}
	if len(args) == 0 {
		return nil, errors.New("E403").WithDetail("empty command")
	}
	return args, nil
}

// Quote quotes s as a single argument for Split. Backslashes survive, so
// Windows paths can be passed through unchanged.
func Quote(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// Run sanitizes and splits command, then runs it in dir. The returned
// output is always the combined stdout and stderr, even on failure.
func (e *Exec) Run(ctx context.Context, dir, command string) ([]byte, error) {
	args, err := Split(command)
	if err != nil {
		return nil, err
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return nil, errors.New("E403").
			WithDetailf("%s is not installed or not on PATH", args[0]).
			WithSuggestion("Install Node.js (which provides npm and npx) and try again").
			Wrap(err)
	}

	log := e.logger().With(zap.String("command", strings.Join(args, " ")), zap.String("dir", dir))
	log.Debug("running command")

	cmd := exec.CommandContext(ctx, path, args[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), e.Env...)

	var out bytes.Buffer
	var w io.Writer = &out
	if e.Stream != nil {
		w = io.MultiWriter(&out, e.Stream)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Run(); err != nil {
		log.Debug("command failed", zap.Error(err))
		if ctx.Err() != nil {
			return out.Bytes(), fmt.Errorf("%s interrupted: %w", args[0], ctx.Err())
		}
		return out.Bytes(), fmt.Errorf("%s failed: %w", args[0], err)
	}

	return out.Bytes(), nil
}

func (e *Exec) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
