package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"vpdkit/internal/catalog"
	"vpdkit/internal/timeline"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var showUnused bool

	cmd := &cobra.Command{
		Use:   "inspect <project>",
		Short: "Show the project's resources in timeline order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			_, doc, err := ctx.loadProject(args[0])
			if err != nil {
				return err
			}

			cat := catalog.FromDocument(doc, logger)
			blocks, stats := timeline.Extract(doc, logger)
			resolveStats := cat.Resolve(blocks)
			sequenced := cat.Sequence()

			rows := make([][]string, 0, cat.Len())
			for _, res := range sequenced {
				rows = append(rows, []string{
					strconv.Itoa(res.Seq),
					res.UUID.Short(),
					string(res.Kind),
					res.TrackName(),
					fmt.Sprintf("%.2f", res.EarliestStart()),
					strconv.Itoa(len(res.Uses)),
					filepath.Base(res.Path),
				})
			}
			if showUnused {
				for _, res := range cat.Resources() {
					if res.Used() {
						continue
					}
					rows = append(rows, []string{
						"-", res.UUID.Short(), string(res.Kind), "-", "-", "0",
						filepath.Base(res.Path),
					})
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"SEQ", "UUID", "KIND", "TRACK", "START", "USES", "FILE"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d resources (%d used, %d unused), %d tracks, %d blocks",
				cat.Len(), len(sequenced), cat.Len()-len(sequenced), stats.Tracks, stats.Blocks)
			if resolveStats.Orphaned > 0 {
				fmt.Fprintf(out, ", %d orphaned blocks", resolveStats.Orphaned)
			}
			if stats.Skipped > 0 {
				fmt.Fprintf(out, ", %d malformed blocks skipped", stats.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showUnused, "unused", false, "Also list resources no timeline block references")

	return cmd
}
