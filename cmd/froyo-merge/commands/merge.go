package commands

import (
	"github.com/openfroyo/froyo-merge/pkg/manifest"
	"github.com/openfroyo/froyo-merge/pkg/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

func newMergeCommand() *cobra.Command {
	var (
		noDev  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Print the root manifest with all satellites merged",
		Long: `Merge satellite manifests into the root manifest and print the result.

The merge runs the same passes a host runs before resolving: one pass at
startup without dev sections, then one pass in the requested mode. The
result includes the derived stability flags, references and aliases.`,
		Example: `  # Print the merged manifest of the current project
  froyo-merge merge

  # Merge without dev sections into a file
  froyo-merge merge --no-dev --output merged.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			proj, ctx, err := openProject(cmd.Context())
			if err != nil {
				return err
			}
			defer proj.Close(ctx)

			op := telemetry.StartOperation(ctx, "cli.merge", attribute.Bool("merge.dev", !noDev))
			defer func() { op.End(err) }()

			root, pl, err := proj.mergeRoot(op.Ctx, !noDev)
			if err != nil {
				return err
			}

			logger := op.Logger.WithRunID(pl.Run().ID)
			for _, section := range []manifest.Section{manifest.SectionRequires, manifest.SectionDevRequires} {
				for _, link := range pl.Run().DuplicateLinks(section) {
					logger.WithPath(proj.relPath(link.Origin)).
						Warnf("Duplicate %s on %s (%s) left to the solver", section, link.Target, link.PrettyConstraint)
				}
			}

			if output != "" {
				if err := writeManifest(output, root.Manifest()); err != nil {
					return err
				}
				logger.WithField("output", output).Infof("Merged manifest written in %s", op.Timer.Duration())
				return nil
			}

			data, err := renderManifest(root.Manifest())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&noDev, "no-dev", false, "skip require-dev and autoload-dev sections")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the merged manifest to a file")

	return cmd
}
