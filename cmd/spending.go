package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/settle"
	"github.com/etnz/settle/date"
	"github.com/etnz/settle/renderer"
	"github.com/google/subcommands"
)

type spendingCmd struct {
	currency string
	group    string
	from, to string
}

func (*spendingCmd) Name() string     { return "spending" }
func (*spendingCmd) Synopsis() string { return "display a participant spending per category" }
func (*spendingCmd) Usage() string {
	return `spl spending [-c <currency>] [-group <id>] [-from <date>] [-to <date>] <participant>

  Sums the share a participant owes on expenses, per category. With -from or
  -to, only dated expenses within the range are counted.
`
}

func (c *spendingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Currency of the expenses. Defaults to the configured currency.")
	f.StringVar(&c.group, "group", "", "Only count the expenses of that group")
	f.StringVar(&c.from, "from", "", "First day of the expenses to count")
	f.StringVar(&c.to, "to", "", "Last day of the expenses to count")
}

func (c *spendingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: a participant is required\n")
		return subcommands.ExitUsageError
	}
	period, err := date.ParseRange(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, _, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	currency := c.currency
	if currency == "" {
		currency = cfg.Currency
	}
	if err := settle.ValidateCurrency(currency); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	records, err := DecodeRecords(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding records %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}
	var expenses []settle.Expense
	for _, r := range records {
		e, ok := r.(settle.Expense)
		if ok && (c.group == "" || e.Group == c.group) && period.Contains(e.Date) {
			expenses = append(expenses, e)
		}
	}
	participant := f.Arg(0)
	md := renderer.Spending(participant, currency, settle.SpendingByCategory(expenses, participant, currency))
	if !period.IsOpen() {
		md += fmt.Sprintf("\nPeriod: %s\n", period)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
