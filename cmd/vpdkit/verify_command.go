package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vpdkit/internal/repair"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "verify <project>",
		Short: "Check that every referenced media file exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			_, doc, err := ctx.loadProject(args[0])
			if err != nil {
				return err
			}

			rep := repair.New(cfg, logger)
			summary, findings, err := rep.Verify(cmd.Context(), doc)
			if err != nil {
				return err
			}

			printFindings(cmd, findings, false)
			fmt.Fprintf(cmd.OutOrStdout(), "%d resources: %d intact, %d missing\n",
				summary.Total, summary.Intact, summary.Missing)

			if strict && summary.Missing > 0 {
				return fmt.Errorf("%d resources are missing", summary.Missing)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any resource is missing")

	return cmd
}
