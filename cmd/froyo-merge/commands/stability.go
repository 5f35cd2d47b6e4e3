package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/openfroyo/froyo-merge/pkg/manifest"
	"github.com/openfroyo/froyo-merge/pkg/telemetry"
	"github.com/openfroyo/froyo-merge/pkg/value"
	"github.com/spf13/cobra"
)

func newStabilityCommand() *cobra.Command {
	var noDev bool

	cmd := &cobra.Command{
		Use:   "stability",
		Short: "Show the resolved per-package stability flags",
		Long: `Merge the project and print the stability flags of every package whose
constraint asks for a stability looser than the root's minimum-stability.

Flags come from explicit @flags (for example ^1.0@beta) and from version
spellings such as dev-main or 1.0.x-dev.`,
		Example: `  # Show stability flags
  froyo-merge stability

  # Without dev requirements
  froyo-merge stability --no-dev --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			proj, ctx, err := openProject(cmd.Context())
			if err != nil {
				return err
			}
			defer proj.Close(ctx)

			op := telemetry.StartOperation(ctx, "cli.stability")
			defer func() { op.End(err) }()

			root, _, err := proj.mergeRoot(op.Ctx, !noDev)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printStabilityJSON(cmd.OutOrStdout(), root.Manifest())
			}
			printStabilityTable(cmd.OutOrStdout(), root.Manifest())
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDev, "no-dev", false, "skip require-dev sections")

	return cmd
}

// constraintOf finds the constraint that produced a stability flag.
func constraintOf(m *manifest.Manifest, name string) string {
	for _, links := range []*manifest.Links{m.Requires, m.DevRequires} {
		if link, ok := links.Get(name); ok {
			return link.PrettyConstraint
		}
	}
	return ""
}

func printStabilityTable(out io.Writer, m *manifest.Manifest) {
	flags := m.StabilityFlags
	if len(flags) == 0 {
		fmt.Fprintf(out, "All packages use the minimum stability (%s).\n", m.MinimumStability)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Package", "Stability", "Constraint"})
	for _, name := range flags.Names() {
		t.AppendRow(table.Row{name, flags[name].String(), constraintOf(m, name)})
	}
	t.AppendFooter(table.Row{"minimum-stability", m.MinimumStability.String(), ""})
	t.Render()
}

func printStabilityJSON(out io.Writer, m *manifest.Manifest) error {
	doc := value.NewMap()
	doc.Set("minimum-stability", value.String(m.MinimumStability.String()))
	flags := value.NewMap()
	for _, name := range m.StabilityFlags.Names() {
		flags.Set(name, value.String(m.StabilityFlags[name].String()))
	}
	doc.Set("stability-flags", flags)
	data, err := value.MarshalIndent(doc, "  ")
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
