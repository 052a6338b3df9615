package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shopbot-backend/internal/app"
	"shopbot-backend/internal/assistant"
	"shopbot-backend/internal/catalog"
	"shopbot-backend/internal/config"
	"shopbot-backend/internal/observability"
	"shopbot-backend/internal/store"
)

const cliSession = "cli"

type cliOptions struct {
	catalogFile string
	rulesFile   string
	memoryFile  string
	verbose     bool
	noColor     bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:   "shopbot",
		Short: "Ask the shopping assistant about the product catalog",
		Long: `shopbot answers questions such as "price of Airdopes Pro",
"best earbuds under 3000" or "compare Airdopes Lite and PulseBuds"
against the product catalog, from the terminal.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.catalogFile, "catalog", "", "catalog file (.json or .yaml); defaults to the built-in catalog")
	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "YAML file overriding intent keywords")
	root.PersistentFlags().StringVar(&opts.memoryFile, "memory-file", "", "keep follow-up context across runs in this JSON file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log classification details to stderr")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newAskCmd(opts), newChatCmd(opts))
	return root
}

func (o *cliOptions) service(ctx context.Context, stderr io.Writer) (*assistant.Service, store.Store, error) {
	cfg := config.Load()
	cfg.IntentRulesFile = o.rulesFile
	if o.catalogFile != "" {
		cfg.CatalogSource = string(catalog.SourceFile)
		cfg.CatalogFile = o.catalogFile
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	log := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      stderr,
		ServiceName: "shopbot-cli",
	})

	engine, err := app.NewEngine(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	var conversations store.Store
	if o.memoryFile != "" {
		conversations, err = store.NewStore(store.StoreTypeFile, store.WithPath(o.memoryFile))
	} else {
		conversations, err = store.NewStore(store.StoreTypeMemory, store.WithTTL(0))
	}
	if err != nil {
		return nil, nil, err
	}
	return assistant.NewService(engine, conversations, log), conversations, nil
}

func printResult(w io.Writer, res assistant.QueryResult) {
	fmt.Fprintln(w, res.Reply)
	if len(res.Products) == 0 {
		return
	}
	names := make([]string, len(res.Products))
	for i, p := range res.Products {
		names[i] = p.Name
	}
	color.New(color.FgCyan, color.Bold).Fprint(w, "Products:")
	fmt.Fprintf(w, " %s\n", strings.Join(names, ", "))
}
