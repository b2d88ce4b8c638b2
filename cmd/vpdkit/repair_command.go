package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vpdkit/internal/repair"
	"vpdkit/internal/searchindex"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var searchRoots []string
	var dryRun bool
	var noBackup bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "repair <project>",
		Short: "Find moved media files and patch the manifest",
		Long: "Repair checks every resource the manifest references, searches the\n" +
			"given roots for files that moved, and rewrites the manifest when exactly\n" +
			"one candidate matches. Multiple matches are reported, never guessed among.",
		Args: cobra.ExactArgs(1),
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

			if len(searchRoots) == 0 {
				// Files usually move within the tree the project lives in.
				searchRoots = []string{filepath.Dir(project.BackupRoot())}
			}

			var searcher repair.Searcher
			if cfg.Repair.UseIndex {
				path, err := ctx.indexPath()
				if err != nil {
					return err
				}
				index, err := searchindex.Open(path, logger)
				if err != nil {
					return err
				}
				defer index.Close()
				if n, err := index.Count(cmd.Context()); err == nil && n == 0 {
					return fmt.Errorf("search index is empty; run `vpdkit index build` first")
				}
				searcher = index
			} else {
				searcher = repair.NewFSSearch(searchRoots, logger)
			}

			opts := repair.Options{
				SearchRoots: searchRoots,
				DryRun:      dryRun,
				NoBackup:    noBackup,
			}
			rep := repair.New(cfg, logger)

			var summary *repair.Summary
			var findings []repair.Finding
			run := func() error {
				var runErr error
				summary, findings, runErr = rep.Run(cmd.Context(), project, doc, searcher, opts)
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

			printFindings(cmd, findings, false)
			printRepairSummary(cmd, summary)

			if strict && (summary.Missing > 0 || summary.Ambiguous > 0) {
				return fmt.Errorf("repair left %d resources unresolved", summary.Missing+summary.Ambiguous)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&searchRoots, "search-root", nil, "Directory to search for moved files (repeatable)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would be repaired without rewriting the manifest")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip the project folder backup")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when resources stay missing or ambiguous")

	return cmd
}

func printFindings(cmd *cobra.Command, findings []repair.Finding, includeIntact bool) {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		if !includeIntact && f.Resolution.Outcome == repair.OutcomeIntact {
			continue
		}
		detail := f.Resolution.Path
		switch f.Resolution.Outcome {
		case repair.OutcomeAmbiguous:
			detail = strings.Join(f.Resolution.Candidates, ", ")
		case repair.OutcomeMissing:
			detail = f.Resource.Path
		}
		rows = append(rows, []string{
			f.Resource.UUID.Short(),
			string(f.Resource.Kind),
			filepath.Base(f.Resource.Path),
			string(f.Resolution.Outcome),
			detail,
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "All resources are where the manifest says.")
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"UUID", "KIND", "FILE", "OUTCOME", "DETAIL"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}

func printRepairSummary(cmd *cobra.Command, summary *repair.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d resources: %d intact, %d repaired, %d missing, %d ambiguous\n",
		summary.Total, summary.Intact, summary.Repaired, summary.Missing, summary.Ambiguous)
	if summary.DryRun && summary.Repaired > 0 {
		fmt.Fprintln(out, "dry run: manifest not rewritten")
	}
	if summary.BackupPath != "" {
		fmt.Fprintf(out, "backup: %s\n", summary.BackupPath)
	}
}
