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

// simplifyCmd holds the flags for the 'simplify' subcommand.
type simplifyCmd struct {
	scopeFlags
}

func (*simplifyCmd) Name() string     { return "simplify" }
func (*simplifyCmd) Synopsis() string { return "compute the transfers that settle every balance" }
func (*simplifyCmd) Usage() string {
	return `spl simplify [-group <id> | -personal]

  Computes, per currency, a short list of transfers that brings every balance
  of the scope to zero.
`
}

func (c *simplifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.group, "group", "", "Only settle the records of that group")
	f.BoolVar(&c.personal, "personal", false, "Only settle the records made outside any group")
}

func (c *simplifyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	scope, err := c.scope("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	_, entries, err := loadEntries(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding records %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}

	var transfers []settle.Transfer
	tables, err := settle.NetBalances(entries, scope)
	if err == nil {
		transfers, err = settle.SimplifyAll(tables)
	}
	if err != nil {
		logger.Error("simplify failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Transfers(transfers))
	return subcommands.ExitSuccess
}
