package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/settle"
	"github.com/etnz/settle/renderer"
	"github.com/google/subcommands"
)

// balancesCmd holds the flags for the 'balances' subcommand.
type balancesCmd struct {
	scopeFlags
	includeZero bool
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "display who owes whom" }
func (*balancesCmd) Usage() string {
	return `spl balances [-group <id> | -friend <name> | -personal] [-zero] [<participant>]

  Displays the balances of a participant with each counterparty, per currency.
  Without a participant, displays the net balance of every participant.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	c.scopeFlags.SetFlags(f)
	f.BoolVar(&c.includeZero, "zero", false, "Also list counterparties whose balance nets to zero. Defaults to include_zero.")
}

func (c *balancesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: at most one participant expected, got %d\n", f.NArg())
		return subcommands.ExitUsageError
	}
	subject := f.Arg(0)
	scope, err := c.scope(subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	records, entries, err := loadEntries(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding records %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}
	logger.Debug("records loaded", "file", cfg.RecordsFile, "records", len(records), "entries", len(entries), "scope", scope.String())

	if subject == "" {
		tables, err := settle.NetBalances(entries, scope)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.Net(scope, tables))
		return subcommands.ExitSuccess
	}
	opts := settle.AggregateOptions{IncludeZeroBalancePairs: c.includeZero || cfg.IncludeZero}
	tables, err := settle.Aggregate(entries, subject, scope, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Balances(subject, scope, tables))
	return subcommands.ExitSuccess
}
