package commands

import (
	"fmt"
	"io"

	"github.com/openfroyo/froyo-merge/pkg/merge"
	"github.com/openfroyo/froyo-merge/pkg/plugin"
	"github.com/openfroyo/froyo-merge/pkg/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

func newInstallCommand() *cobra.Command {
	var (
		noDev        bool
		optimize     bool
		firstInstall bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Run the merge lifecycle of a host install command",
		Long: `Drive the merge plugin through the hooks a host fires during an install:
startup, pre-install, the autoload dump and post-install.

With --first-install the plugin behaves as if it had just been installed
itself. Packages introduced by satellites were unknown to the host's first
resolution, so a follow-up update restricted to them is run with the
configured resolver command. The lock file is backed up first and restored
if that update fails.`,
		Example: `  # Simulate an install
  froyo-merge install

  # First install of the plugin with an optimized autoloader
  froyo-merge install --first-install --optimize-autoloader`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			proj, ctx, err := openProject(cmd.Context())
			if err != nil {
				return err
			}
			defer proj.Close(ctx)

			op := telemetry.StartOperation(ctx, "cli.install",
				attribute.Bool("merge.dev", !noDev),
				attribute.Bool("merge.first_install", firstInstall),
			)
			defer func() { op.End(err) }()

			root, err := proj.loadRoot()
			if err != nil {
				return err
			}
			resolver, err := newCommandResolver(proj.cfg.Host.Resolver, proj.dir,
				proj.cfg.Host.ResolverTimeout, proj.tel.Tracer)
			if err != nil {
				return err
			}
			locks := &fileLockStore{path: proj.lockPath()}

			pl := proj.plugin(root,
				plugin.WithResolver(resolver),
				plugin.WithLockStore(locks),
			)

			if err := pl.OnInit(op.Ctx); err != nil {
				return err
			}
			if err := pl.OnPreCommand(op.Ctx, !noDev, false, plugin.DumpFlags{}); err != nil {
				return err
			}
			if firstInstall {
				pl.OnPostPackageInstalled(plugin.PackageName)
			}
			if err := pl.OnPreCommand(op.Ctx, !noDev, true, plugin.DumpFlags{Optimize: optimize}); err != nil {
				return err
			}
			if err := pl.OnPostCommand(op.Ctx); err != nil {
				return err
			}

			op.Logger.WithRunID(pl.Run().ID).Infof("Install lifecycle completed in %s", op.Timer.Duration())

			printRunSummary(cmd.OutOrStdout(), proj, pl.Run())
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDev, "no-dev", false, "skip require-dev and autoload-dev sections")
	cmd.Flags().BoolVar(&optimize, "optimize-autoloader", false, "request an optimized autoloader")
	cmd.Flags().BoolVar(&firstInstall, "first-install", false, "treat the merge plugin as freshly installed")

	return cmd
}

func printRunSummary(out io.Writer, proj *project, run *merge.Run) {
	full, partial := run.MergedFiles()
	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "  Merged:           %d file(s)\n", len(full))
	for _, path := range full {
		fmt.Fprintf(out, "    %s\n", proj.relPath(path))
	}
	if len(partial) > 0 {
		fmt.Fprintf(out, "  Merged (no-dev):  %d file(s)\n", len(partial))
		for _, path := range partial {
			fmt.Fprintf(out, "    %s\n", proj.relPath(path))
		}
	}
	fmt.Fprintf(out, "  Allow list:       %v\n", run.AllowList())
}
