package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openfroyo/froyo-merge/pkg/manifest"
	"github.com/openfroyo/froyo-merge/pkg/merge"
	"github.com/openfroyo/froyo-merge/pkg/plugin"
	"github.com/openfroyo/froyo-merge/pkg/telemetry"
	"github.com/openfroyo/froyo-merge/pkg/value"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// project is the host runtime of one CLI invocation: configuration,
// telemetry and the project directory.
type project struct {
	cfg *Config
	dir string
	tel *telemetry.Telemetry
}

// openProject loads the configuration, applies the global flags and any
// command overrides, and sets up telemetry. The returned context carries the
// telemetry instance.
func openProject(ctx context.Context, overrides ...func(*Config)) (*project, context.Context, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, ctx, err
	}
	if manifestFile != "" {
		cfg.Host.Manifest = manifestFile
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, ctx, err
	}

	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, ctx, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	tel, err := telemetry.NewTelemetry(&cfg.Telemetry)
	if err != nil {
		return nil, ctx, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return &project{cfg: cfg, dir: dir, tel: tel}, tel.WithContext(ctx), nil
}

// Close flushes telemetry.
func (p *project) Close(ctx context.Context) {
	if err := p.tel.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to shut down telemetry")
	}
}

func (p *project) manifestPath() string {
	return filepath.Join(p.dir, p.cfg.Host.Manifest)
}

func (p *project) lockPath() string {
	return filepath.Join(p.dir, p.cfg.Host.LockFile)
}

// loadRoot reads the root manifest fresh from disk. The stability flags of
// the root's own requirements are resolved the way the host does before any
// satellite is merged.
func (p *project) loadRoot() (*manifest.MemoryRoot, error) {
	m, err := manifest.Load(p.manifestPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load root manifest: %w", err)
	}
	m.StabilityFlags = merge.NewStabilityResolver(m.MinimumStability, nil).
		ResolveLinks(m.Requires, m.DevRequires)
	return manifest.NewMemoryRoot(m), nil
}

// componentLogger returns the zerolog logger handed to a package, tagged
// with the component name.
func (p *project) componentLogger(component string) zerolog.Logger {
	return p.tel.Logger.NewComponentLogger(component).Zerolog()
}

func (p *project) orchestrator() *merge.Orchestrator {
	return merge.NewOrchestrator(p.dir,
		merge.WithLogger(p.componentLogger("merge-orchestrator")),
		merge.WithTracer(p.tel.Tracer),
		merge.WithRecorder(p.tel.Metrics),
	)
}

func (p *project) plugin(root manifest.RootPackage, opts ...plugin.Option) *plugin.Plugin {
	base := []plugin.Option{
		plugin.WithLogger(p.componentLogger("merge-plugin")),
		plugin.WithTracer(p.tel.Tracer),
		plugin.WithRecorder(p.tel.Metrics),
	}
	return plugin.New(root, p.orchestrator(), append(base, opts...)...)
}

// mergeRoot runs the init and pre-command passes a host performs before
// resolving, and returns the merged root.
func (p *project) mergeRoot(ctx context.Context, devMode bool) (*manifest.MemoryRoot, *plugin.Plugin, error) {
	root, err := p.loadRoot()
	if err != nil {
		return nil, nil, err
	}
	pl := p.plugin(root)
	if err := pl.OnInit(ctx); err != nil {
		return nil, nil, err
	}
	if err := pl.OnPreCommand(ctx, devMode, false, plugin.DumpFlags{}); err != nil {
		return nil, nil, err
	}
	return root, pl, nil
}

// logMergeFailure logs err with the include pattern or satellite path it
// concerns.
func (p *project) logMergeFailure(logger *telemetry.Logger, err error, msg string) {
	var merr *merge.Error
	if errors.As(err, &merr) {
		if merr.Pattern != "" {
			logger = logger.WithPattern(merr.Pattern)
		}
		if merr.Path != "" {
			logger = logger.WithPath(p.relPath(merr.Path))
		}
	}
	logger.WithError(err).Error(msg)
}

// renderManifest encodes m as indented JSON.
func renderManifest(m *manifest.Manifest) ([]byte, error) {
	data, err := value.MarshalIndent(manifest.Encode(m), "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}

// writeManifest writes the merged manifest to path.
func writeManifest(path string, m *manifest.Manifest) error {
	data, err := renderManifest(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// relPath shortens path for display.
func (p *project) relPath(path string) string {
	if rel, err := filepath.Rel(p.dir, path); err == nil {
		return rel
	}
	return path
}
