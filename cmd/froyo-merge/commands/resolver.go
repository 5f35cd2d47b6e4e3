package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/openfroyo/froyo-merge/pkg/plugin"
	"github.com/openfroyo/froyo-merge/pkg/telemetry"
	"github.com/rs/zerolog/log"
)

// commandResolver runs the host's update command for the follow-up
// resolution.
type commandResolver struct {
	argv    []string
	dir     string
	timeout time.Duration
	tracer  *telemetry.Tracer
	stdout  io.Writer
	stderr  io.Writer
}

func newCommandResolver(command, dir string, timeout time.Duration, tracer *telemetry.Tracer) (*commandResolver, error) {
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resolver command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("resolver command is empty")
	}
	return &commandResolver{
		argv:    argv,
		dir:     dir,
		timeout: timeout,
		tracer:  tracer,
		stdout:  os.Stderr,
		stderr:  os.Stderr,
	}, nil
}

// args returns the full command line for req: the configured command, the
// allow-listed packages and the mode flags.
func (r *commandResolver) args(req plugin.ResolveRequest) []string {
	args := append([]string(nil), r.argv[1:]...)
	args = append(args, req.AllowList...)
	if !req.DevMode {
		args = append(args, "--no-dev")
	}
	if !req.DumpAutoloader {
		args = append(args, "--no-autoloader")
	}
	if req.OptimizeAutoloader {
		args = append(args, "--optimize-autoloader")
	}
	return args
}

// Resolve runs the command and returns its exit status. A command that ran
// and exited non-zero is reported through the status, not the error.
func (r *commandResolver) Resolve(ctx context.Context, req plugin.ResolveRequest) (int, error) {
	ctx, span := r.tracer.StartResolutionSpan(ctx, req.RunID, req.AllowList)
	defer span.End()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := r.args(req)
	log.Info().
		Str("command", r.argv[0]).
		Strs("args", args).
		Msg("Running follow-up resolution")

	cmd := exec.CommandContext(ctx, r.argv[0], args...)
	cmd.Dir = r.dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		span.SetAttributes(telemetry.AttrExitCode.Int(0))
		telemetry.RecordSuccess(span)
		return 0, nil
	case errors.As(err, &exitErr):
		code := exitErr.ExitCode()
		span.SetAttributes(telemetry.AttrExitCode.Int(code))
		telemetry.RecordError(span, err)
		return code, nil
	default:
		telemetry.RecordError(span, err)
		return -1, fmt.Errorf("failed to run resolver: %w", err)
	}
}

// fileLockStore backs up and restores the host lock file.
type fileLockStore struct {
	path string
}

func (s *fileLockStore) Backup() ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read lock file: %w", err)
	}
	return data, true, nil
}

func (s *fileLockStore) Restore(data []byte) error {
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to restore lock file: %w", err)
	}
	return nil
}
