package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation (type exit to quit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, conversations, err := opts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conversations.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Ask anything about our products. Type exit to quit.")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch strings.ToLower(line) {
				case "":
					continue
				case "exit", "quit":
					return nil
				}
				printResult(out, svc.Ask(cmd.Context(), cliSession, line))
			}
		},
	}
}
