// Package main provides the CLI entrypoint for ratebridge.
//
// ratebridge reshapes insurance rate spreadsheets into a destination layout:
//   - Analyzes the source sheet and maps its columns to canonical fields
//   - Lets humans review mappings in a YAML file or at the terminal
//   - Pivots rate-by-deductible rows into Deduct<N> columns
//   - Merges the result into a template workbook and remembers the mapping
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"ratebridge/internal/config"
	"ratebridge/internal/logging"
)

const usage = `ratebridge - reshape rate spreadsheets into a template layout

Commands:
  run        convert a source sheet into the template
  analyze    profile the source sheet
  suggest    resolve a mapping and optionally write it for review
  templates  list | delete <name>   manage named mappings
  recent     list recently used mappings

Run "ratebridge <command> -h" for flags.
`

// deps are external seams for testability.
type deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	os.Exit(run(context.Background(), os.Args[1:], deps{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}))
}

func run(ctx context.Context, args []string, d deps) int {
	if len(args) == 0 {
		fmt.Fprint(d.Stderr, usage)

		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(d.Stderr, err)

		return 1
	}

	logging.Setup(d.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "run":
		err = runConvert(ctx, cfg, rest, d)
	case "analyze":
		err = runAnalyze(ctx, cfg, rest, d)
	case "suggest":
		err = runSuggest(ctx, cfg, rest, d)
	case "templates":
		err = runTemplates(ctx, cfg, rest, d)
	case "recent":
		err = runRecent(ctx, cfg, rest, d)
	case "help", "-h", "--help":
		fmt.Fprint(d.Stdout, usage)

		return 0
	default:
		fmt.Fprintf(d.Stderr, "unknown command %q\n\n%s", cmd, usage)

		return 2
	}

	if err != nil {
		fmt.Fprintf(d.Stderr, "%s: %v\n", cmd, err)

		return 1
	}

	return 0
}
