package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"vpdkit/internal/organize"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var mediaRoot string
	var dryRun bool
	var noBackup bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "organize <project> <target-dir>",
		Short: "Renumber media by timeline order and rewrite the manifest",
		Long: "Organize copies (or moves) every media file the timeline uses into a\n" +
			"fresh target layout, named by playback order, and rewrites the project\n" +
			"manifest to point at the new locations. The original project folder is\n" +
			"backed up first.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			project, doc, err := ctx.loadProject(args[0])
			if err != nil {
				return err
			}

			opts := organize.Options{
				TargetDir: args[1],
				MediaRoot: mediaRoot,
				DryRun:    dryRun,
				NoBackup:  noBackup,
			}
			org := organize.New(cfg, logger)

			var summary *organize.Summary
			var plan *organize.Plan
			run := func() error {
				var runErr error
				summary, plan, runErr = org.Run(cmd.Context(), project, doc, opts)
				return runErr
			}
			if dryRun {
				err = run()
			} else {
				err = ctx.withProjectLock(project, run)
			}
			if err != nil {
				return err
			}

			printPlan(cmd, plan)
			printOrganizeSummary(cmd, summary)

			if strict && (summary.Errored > 0 || summary.Collisions > 0) {
				return fmt.Errorf("organize completed with %d failed relocations", summary.Errored+summary.Collisions)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mediaRoot, "media-root", "", "Directory prefix written into the manifest instead of the target dir")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Plan only; touch nothing on disk")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip the project folder backup")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any relocation fails")

	return cmd
}

func printPlan(cmd *cobra.Command, plan *organize.Plan) {
	if len(plan.Entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No media referenced by the timeline.")
		return
	}

	rows := make([][]string, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		rows = append(rows, []string{
			strconv.Itoa(entry.Seq),
			string(entry.Resource.Kind),
			entry.Track,
			filepath.Base(entry.Dest),
			string(entry.Status),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"SEQ", "KIND", "TRACK", "DESTINATION", "STATUS"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}

func printOrganizeSummary(cmd *cobra.Command, summary *organize.Summary) {
	out := cmd.OutOrStdout()
	mode := "organized"
	if summary.DryRun {
		mode = "planned (dry run)"
	}
	fmt.Fprintf(out, "%d of %d resources %s", summary.Used, summary.TotalResources, mode)
	if summary.Unused > 0 {
		fmt.Fprintf(out, ", %d unused", summary.Unused)
	}
	if summary.Orphaned > 0 {
		fmt.Fprintf(out, ", %d orphaned blocks", summary.Orphaned)
	}
	fmt.Fprintln(out)

	if !summary.DryRun {
		fmt.Fprintf(out, "copied %d, moved %d, errored %d, unused set aside %d\n",
			summary.Copied, summary.Moved, summary.Errored, summary.UnusedCopied)
		if summary.BackupPath != "" {
			fmt.Fprintf(out, "backup: %s\n", summary.BackupPath)
		}
		if summary.ManifestPath != "" {
			fmt.Fprintf(out, "manifest: %s\n", summary.ManifestPath)
		}
	}
}
