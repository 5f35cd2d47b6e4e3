package merge

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/openfroyo/froyo-merge/pkg/manifest"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// File outcomes reported to the Recorder.
const (
	OutcomeMerged       = "merged"
	OutcomeDevMerged    = "dev_merged"
	OutcomeAlreadyDone  = "already_merged"
	OutcomeRootRequires = "root_requires"
)

// Recorder receives merge metrics.
type Recorder interface {
	RecordPass(mode string, success bool, duration time.Duration)
	RecordFile(outcome string)
	RecordError(kind string)
}

type nopRecorder struct{}

func (nopRecorder) RecordPass(string, bool, time.Duration) {}
func (nopRecorder) RecordFile(string)                      {}
func (nopRecorder) RecordError(string)                     {}

// SpanStarter starts trace spans. trace.Tracer satisfies it.
type SpanStarter interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Result describes what one merge pass did.
type Result struct {
	// Files lists the satellites folded in merge order.
	Files []string

	// Skipped lists the satellites skipped because the root already
	// requires their package.
	Skipped []string

	// Committed lists the root sections that were written.
	Committed []manifest.Section

	// Entries records every visited file with its outcome, in visit order.
	Entries []Entry
}

// Entry is one visited satellite file.
type Entry struct {
	Path    string
	Package string
	Outcome string
}

func (r *Result) record(path, pkg, outcome string) {
	r.Entries = append(r.Entries, Entry{Path: path, Package: pkg, Outcome: outcome})
}

// Orchestrator discovers satellite manifests and folds them into a root
// package.
type Orchestrator struct {
	baseDir  string
	loader   Loader
	logger   zerolog.Logger
	tracer   SpanStarter
	recorder Recorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithTracer sets the span starter used for pass and file spans.
func WithTracer(tracer SpanStarter) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(o *Orchestrator) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

// WithLoader replaces the manifest loader.
func WithLoader(loader Loader) Option {
	return func(o *Orchestrator) {
		if loader != nil {
			o.loader = loader
		}
	}
}

// NewOrchestrator creates an orchestrator resolving patterns against baseDir.
func NewOrchestrator(baseDir string, opts ...Option) *Orchestrator {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		abs = filepath.Clean(baseDir)
	}
	o := &Orchestrator{
		baseDir:  abs,
		loader:   LoaderFunc(manifest.Load),
		logger:   zerolog.Nop(),
		tracer:   otel.Tracer("github.com/openfroyo/froyo-merge/pkg/merge"),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BaseDir returns the directory patterns are resolved against.
func (o *Orchestrator) BaseDir() string {
	return o.baseDir
}

// Merge runs one merge pass: it reads the settings from the root extra
// section, folds every matched satellite into a working copy of the root,
// and writes the touched sections back once all files were processed. On
// error the root and the run are left unchanged.
func (o *Orchestrator) Merge(ctx context.Context, root manifest.RootPackage, run *Run) (*Result, error) {
	start := time.Now()
	mode := "no-dev"
	if run.DevMode {
		mode = "dev"
	}

	ctx, span := o.tracer.Start(ctx, "merge.pass",
		trace.WithAttributes(
			attribute.String("merge.run_id", run.ID),
			attribute.String("merge.mode", mode),
			attribute.String("merge.root", root.Name()),
		),
	)
	defer span.End()

	logger := o.logger.With().Str("run_id", run.ID).Str("mode", mode).Logger()

	fail := func(err error) (*Result, error) {
		kind := string(KindOf(err))
		if kind == "" {
			kind = "unknown"
		}
		o.recorder.RecordError(kind)
		o.recorder.RecordPass(mode, false, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Msg("Merge pass failed")
		return nil, err
	}

	settings, err := LoadSettings(root.Extra())
	if err != nil {
		return fail(err)
	}
	if settings.IgnoreDuplicates && settings.Replace {
		logger.Warn().Msg("Both replace and ignore-duplicates are set; duplicates will be ignored")
	}

	w := &walker{
		o:   o,
		ctx: ctx,
		folder: &folder{
			draft:    newDraft(root),
			pass:     newPass(run),
			settings: settings,
			logger:   logger,
		},
		result: &Result{},
	}

	if err := w.mergeFiles(settings.Include, false); err != nil {
		return fail(err)
	}
	if err := w.mergeFiles(settings.Require, true); err != nil {
		return fail(err)
	}

	w.result.Committed = w.folder.draft.commit(root, logger)
	w.folder.pass.commit()

	duration := time.Since(start)
	o.recorder.RecordPass(mode, true, duration)
	span.SetAttributes(attribute.Int("merge.files", len(w.result.Files)))
	span.SetStatus(codes.Ok, "merged")
	logger.Debug().
		Int("files", len(w.result.Files)).
		Int("sections", len(w.result.Committed)).
		Dur("duration", duration).
		Msg("Merge pass completed")

	return w.result, nil
}

// Expand resolves pattern against the base directory and returns its matches
// in lexicographic order.
func (o *Orchestrator) Expand(pattern string) ([]string, error) {
	full := pattern
	if !filepath.IsAbs(full) {
		full = filepath.Join(o.baseDir, pattern)
	}
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, NewInvalidSettingsError(fmt.Errorf("bad pattern %q: %w", pattern, err))
	}
	sort.Strings(matches)
	return matches, nil
}

// walker carries the state of one pass through the recursive file walk.
type walker struct {
	o      *Orchestrator
	ctx    context.Context
	folder *folder
	result *Result
}

func (w *walker) mergeFiles(patterns []string, required bool) error {
	for _, pattern := range patterns {
		matches, err := w.o.Expand(pattern)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			if required {
				return NewMissingFileError(pattern)
			}
			w.folder.logger.Debug().Str("pattern", pattern).Msg("Pattern matched no files")
			continue
		}
		for _, path := range matches {
			if err := w.mergeFile(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) mergeFile(path string) error {
	path = filepath.Clean(path)
	p := w.folder.pass
	logger := w.folder.logger.With().Str("path", path).Logger()

	if p.alreadyMerged(path) {
		logger.Debug().Msg("Already merged, skipping")
		w.o.recorder.RecordFile(OutcomeAlreadyDone)
		w.result.record(path, "", OutcomeAlreadyDone)
		return nil
	}

	_, span := w.o.tracer.Start(w.ctx, "merge.file",
		trace.WithAttributes(attribute.String("merge.path", path)))
	defer span.End()

	m, err := w.o.loader.Load(path)
	if err != nil {
		perr := NewManifestParseError(path, err)
		span.RecordError(perr)
		span.SetStatus(codes.Error, perr.Error())
		return perr
	}
	sat := NewSatellite(path, w.o.baseDir, m)

	if w.folder.draft.m.Requires.Has(sat.Name()) {
		logger.Info().Str("package", sat.Name()).Msg("Root already requires satellite package, skipping")
		w.o.recorder.RecordFile(OutcomeRootRequires)
		w.result.Skipped = append(w.result.Skipped, path)
		w.result.record(path, sat.Name(), OutcomeRootRequires)
		return nil
	}

	outcome := OutcomeMerged
	if p.isPartiallyMerged(path) {
		logger.Info().Msg("Loading dev sections")
		w.folder.mergeDevInto(sat)
		outcome = OutcomeDevMerged
	} else {
		logger.Info().Msg("Loading satellite manifest")
		w.folder.mergeInto(sat)
	}
	w.o.recorder.RecordFile(outcome)
	w.result.record(path, sat.Name(), outcome)
	p.markMerged(path)
	w.result.Files = append(w.result.Files, path)

	if !w.folder.settings.Recurse {
		return nil
	}
	if err := w.mergeFiles(sat.Include, false); err != nil {
		return err
	}
	return w.mergeFiles(sat.Require, true)
}
