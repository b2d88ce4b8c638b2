package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vpdkit/internal/searchindex"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Maintain the filename index used by repair",
	}

	indexCmd.AddCommand(newIndexBuildCommand(ctx))
	indexCmd.AddCommand(newIndexStatusCommand(ctx))

	return indexCmd
}

func newIndexBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build <root>...",
		Short: "Reindex every file under the given roots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			path, err := ctx.indexPath()
			if err != nil {
				return err
			}

			index, err := searchindex.Open(path, logger)
			if err != nil {
				return err
			}
			defer index.Close()

			total, err := index.Build(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files under %d roots\n", total, len(args))
			return nil
		},
	}
}

func newIndexStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how many files the index holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			path, err := ctx.indexPath()
			if err != nil {
				return err
			}

			index, err := searchindex.Open(path, logger)
			if err != nil {
				return err
			}
			defer index.Close()

			n, err := index.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files indexed\n", path, n)
			return nil
		},
	}
}
