package plugin

import (
	"context"
	"fmt"

	"github.com/openfroyo/froyo-merge/pkg/manifest"
	"github.com/openfroyo/froyo-merge/pkg/merge"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// PackageName is the package identity of the merge plugin itself. Its first
// installation schedules the follow-up resolution.
const PackageName = "openfroyo/froyo-merge"

// DumpFlags are the flags of an autoload dump phase.
type DumpFlags struct {
	// Optimize requests an optimized autoloader.
	Optimize bool
}

// ResolveRequest describes the follow-up resolution run.
type ResolveRequest struct {
	// RunID identifies the merge run that scheduled the resolution.
	RunID string

	// AllowList restricts the update to these packages.
	AllowList []string

	DevMode            bool
	DumpAutoloader     bool
	OptimizeAutoloader bool
}

// Resolver runs the host's dependency resolution. It returns the exit status
// of the run; a non-zero status is a failure.
type Resolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (int, error)
}

// LockStore backs up and restores the host's lock artifact.
type LockStore interface {
	// Backup returns the current lock contents. ok is false when no lock
	// artifact exists.
	Backup() (data []byte, ok bool, err error)

	// Restore writes data back as the lock artifact.
	Restore(data []byte) error
}

// Recorder receives the outcome of follow-up resolutions.
type Recorder interface {
	RecordResolution(success bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordResolution(bool) {}

// HookTracer starts the span of one lifecycle hook invocation.
// telemetry.Tracer satisfies it.
type HookTracer interface {
	StartHookSpan(ctx context.Context, hook, runID string) (context.Context, trace.Span)
}

type nopHookTracer struct{}

func (nopHookTracer) StartHookSpan(ctx context.Context, hook, _ string) (context.Context, trace.Span) {
	return noop.NewTracerProvider().Tracer("").Start(ctx, hook)
}

// Plugin binds the merge orchestrator to the host lifecycle. One Plugin
// serves one host command; its Run is shared by every hook.
type Plugin struct {
	root     manifest.RootPackage
	orch     *merge.Orchestrator
	resolver Resolver
	locks    LockStore
	recorder Recorder
	hooks    HookTracer
	logger   zerolog.Logger
	run      *merge.Run
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithResolver sets the resolver used after first install.
func WithResolver(r Resolver) Option {
	return func(p *Plugin) { p.resolver = r }
}

// WithLockStore sets the lock artifact store.
func WithLockStore(l LockStore) Option {
	return func(p *Plugin) { p.locks = l }
}

// WithRecorder sets the resolution metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Plugin) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithTracer sets the tracer used for hook spans.
func WithTracer(t HookTracer) Option {
	return func(p *Plugin) {
		if t != nil {
			p.hooks = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Plugin) { p.logger = logger }
}

// New creates a plugin for root backed by orch.
func New(root manifest.RootPackage, orch *merge.Orchestrator, opts ...Option) *Plugin {
	p := &Plugin{
		root:     root,
		orch:     orch,
		recorder: nopRecorder{},
		hooks:    nopHookTracer{},
		logger:   zerolog.Nop(),
		run:      merge.NewRun(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run returns the run state shared by the hooks.
func (p *Plugin) Run() *merge.Run {
	return p.run
}

// OnInit merges at process start. Dev mode is not known yet and is assumed
// off.
func (p *Plugin) OnInit(ctx context.Context) error {
	ctx, span := p.startHook(ctx, "init")
	defer span.End()

	p.run.DevMode = false
	return p.merge(ctx, span)
}

// OnPreCommand merges before install, update or autoload dump with the
// authoritative dev mode. For the dump phase it records the autoloader flags
// for a later follow-up resolution.
func (p *Plugin) OnPreCommand(ctx context.Context, devMode, dumpPhase bool, flags DumpFlags) error {
	ctx, span := p.startHook(ctx, "pre-command")
	defer span.End()

	p.run.DevMode = devMode
	if dumpPhase {
		p.run.DumpAutoloader = true
		p.run.OptimizeAutoloader = flags.Optimize
	}
	return p.merge(ctx, span)
}

// OnPostPackageInstalled notes the first installation of the plugin package.
func (p *Plugin) OnPostPackageInstalled(packageName string) {
	if packageName != PackageName {
		return
	}
	p.logger.Info().Msg("Merge plugin installed for the first time, scheduling follow-up resolution")
	p.run.FirstInstall = true
}

// OnPostCommand runs one follow-up resolution restricted to the merged
// requirements when the plugin was just installed. A failed resolution
// restores the lock artifact and is reported as a warning; the returned error
// is non-nil only when the lock artifact could not be handled.
func (p *Plugin) OnPostCommand(ctx context.Context) error {
	ctx, span := p.startHook(ctx, "post-command")
	defer span.End()

	if !p.run.FirstInstall {
		return nil
	}
	p.run.FirstInstall = false

	allow := p.run.AllowList()
	if len(allow) == 0 || p.resolver == nil {
		return nil
	}
	span.SetAttributes(attribute.StringSlice("merge.allow_list", allow))
	p.logger.Info().Strs("packages", allow).Msg("Running update to apply merge settings")

	var backup []byte
	var hasBackup bool
	if p.locks != nil {
		var err error
		backup, hasBackup, err = p.locks.Backup()
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to back up lock artifact: %w", err)
		}
	}

	status, err := p.resolver.Resolve(ctx, ResolveRequest{
		RunID:              p.run.ID,
		AllowList:          allow,
		DevMode:            p.run.DevMode,
		DumpAutoloader:     p.run.DumpAutoloader,
		OptimizeAutoloader: p.run.OptimizeAutoloader,
	})
	if status == 0 && err == nil {
		p.recorder.RecordResolution(true)
		span.SetStatus(codes.Ok, "resolved")
		return nil
	}
	if status == 0 {
		status = -1
	}

	failure := merge.NewResolutionFailure(status, err)
	p.recorder.RecordResolution(false)
	span.RecordError(failure)

	if hasBackup {
		if rerr := p.locks.Restore(backup); rerr != nil {
			span.SetStatus(codes.Error, rerr.Error())
			return fmt.Errorf("failed to restore lock artifact after %v: %w", failure, rerr)
		}
		p.logger.Warn().Err(failure).Msg("Update to apply merge settings failed, lock artifact restored")
		return nil
	}
	p.logger.Warn().Err(failure).Msg("Update to apply merge settings failed")
	return nil
}

func (p *Plugin) startHook(ctx context.Context, hook string) (context.Context, trace.Span) {
	return p.hooks.StartHookSpan(ctx, hook, p.run.ID)
}

func (p *Plugin) merge(ctx context.Context, span trace.Span) error {
	result, err := p.orch.Merge(ctx, p.root, p.run)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("merge.files", len(result.Files)))
	return nil
}
