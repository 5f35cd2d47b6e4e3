package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/openfroyo/froyo-merge/pkg/merge"
	"github.com/openfroyo/froyo-merge/pkg/telemetry"
	"github.com/openfroyo/froyo-merge/pkg/value"
	"github.com/spf13/cobra"
)

// passEntry is one visited file of one pass.
type passEntry struct {
	mode  string
	entry merge.Entry
}

func newFilesCommand() *cobra.Command {
	var noDev bool

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the satellite manifests in merge order",
		Long: `List every satellite manifest the merge visits, in the order it is folded
into the root, with the outcome of each visit.

Files are listed for the startup pass and for the pass in the requested
mode, so files whose dev sections are merged on the second pass show up
twice.`,
		Example: `  # Show merge order
  froyo-merge files

  # Machine-readable output
  froyo-merge files --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			proj, ctx, err := openProject(cmd.Context())
			if err != nil {
				return err
			}
			defer proj.Close(ctx)

			op := telemetry.StartOperation(ctx, "cli.files")
			defer func() { op.End(err) }()

			root, err := proj.loadRoot()
			if err != nil {
				return err
			}
			orch := proj.orchestrator()
			run := merge.NewRun()

			var entries []passEntry
			for _, dev := range []bool{false, !noDev} {
				run.DevMode = dev
				result, err := orch.Merge(op.Ctx, root, run)
				if err != nil {
					return err
				}
				mode := "no-dev"
				if dev {
					mode = "dev"
				}
				for _, e := range result.Entries {
					op.Logger.WithRunID(run.ID).WithPath(proj.relPath(e.Path)).
						Debugf("%s pass: %s", mode, e.Outcome)
					entries = append(entries, passEntry{mode: mode, entry: e})
				}
			}

			if jsonOutput {
				return printFilesJSON(cmd.OutOrStdout(), proj, entries)
			}
			printFilesTable(cmd.OutOrStdout(), proj, entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDev, "no-dev", false, "skip the dev pass")

	return cmd
}

func printFilesTable(out io.Writer, proj *project, entries []passEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No satellite manifests matched.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Pass", "File", "Package", "Outcome"})
	for i, pe := range entries {
		t.AppendRow(table.Row{i + 1, pe.mode, proj.relPath(pe.entry.Path), pe.entry.Package, colorOutcome(pe.entry.Outcome)})
	}
	t.Render()
}

func printFilesJSON(out io.Writer, proj *project, entries []passEntry) error {
	list := make(value.List, 0, len(entries))
	for _, pe := range entries {
		item := value.NewMap()
		item.Set("pass", value.String(pe.mode))
		item.Set("path", value.String(proj.relPath(pe.entry.Path)))
		item.Set("package", value.String(pe.entry.Package))
		item.Set("outcome", value.String(pe.entry.Outcome))
		list = append(list, item)
	}
	data, err := value.MarshalIndent(list, "  ")
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func colorOutcome(outcome string) string {
	switch outcome {
	case merge.OutcomeMerged, merge.OutcomeDevMerged:
		return text.FgGreen.Sprint(outcome)
	case merge.OutcomeRootRequires:
		return text.FgYellow.Sprint(outcome)
	default:
		return text.FgHiBlack.Sprint(outcome)
	}
}
