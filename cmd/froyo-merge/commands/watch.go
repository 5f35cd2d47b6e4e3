package commands

import (
	"context"
	"time"

	"github.com/openfroyo/froyo-merge/pkg/telemetry"
	"github.com/openfroyo/froyo-merge/pkg/watch"
	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	var (
		noDev   bool
		output  string
		delay   time.Duration
		metrics string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-merge whenever a manifest changes",
		Long: `Watch the project directory and re-run the merge whenever a .json file
changes. Every merge starts from the root manifest on disk with a fresh run,
so removed satellites disappear from the result.

The merged manifest is written to --output. With --metrics the Prometheus
endpoint is served for the lifetime of the watch.`,
		Example: `  # Keep merged.json up to date
  froyo-merge watch --output merged.json

  # Expose metrics on :9090/metrics
  froyo-merge watch --output merged.json --metrics :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, ctx, err := openProject(cmd.Context(), func(cfg *Config) {
				if metrics != "" {
					cfg.Telemetry.Metrics.Enabled = true
					cfg.Telemetry.Metrics.ListenAddress = metrics
				}
			})
			if err != nil {
				return err
			}
			defer proj.Close(context.Background())

			if err := proj.tel.StartMetricsServer(); err != nil {
				return err
			}

			reload := func(ctx context.Context) (err error) {
				op := telemetry.StartOperation(ctx, "cli.watch.merge")
				defer func() { op.End(err) }()

				root, _, err := proj.mergeRoot(op.Ctx, !noDev)
				if err != nil {
					return err
				}
				if err := writeManifest(output, root.Manifest()); err != nil {
					return err
				}
				op.Logger.WithField("output", output).
					WithField("duration", op.Timer.Duration().String()).
					Info("Merged manifest written")
				return nil
			}

			if err := reload(ctx); err != nil {
				proj.logMergeFailure(proj.tel.Logger, err, "Initial merge failed")
			}

			w := watch.New(proj.componentLogger("manifest-watcher"),
				watch.WithDelay(delay),
				watch.WithIgnoreFiles(output),
			)
			return w.Watch(ctx, proj.dir, reload)
		},
	}

	cmd.Flags().BoolVar(&noDev, "no-dev", false, "skip require-dev and autoload-dev sections")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file the merged manifest is written to")
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "quiet period before re-merging")
	cmd.Flags().StringVar(&metrics, "metrics", "", "serve Prometheus metrics on this address")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
