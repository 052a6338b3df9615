package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, conversations, err := opts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conversations.Close()

			printResult(cmd.OutOrStdout(), svc.Ask(cmd.Context(), cliSession, strings.Join(args, " ")))
			return nil
		},
	}
}
