package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/etnz/settle"
	"github.com/etnz/settle/date"
	"github.com/etnz/settle/renderer"
	"github.com/google/subcommands"
)

var errNoSuchLoan = errors.New("no such loan")

// findLoan returns the position of the loan id in records.
func findLoan(records []settle.Record, id string) (int, settle.Loan, error) {
	for i, r := range records {
		if l, ok := r.(settle.Loan); ok && l.ID == id {
			return i, l, nil
		}
	}
	return -1, settle.Loan{}, fmt.Errorf("%w: %q", errNoSuchLoan, id)
}

// repayIn returns records with the loan id repaid of amount, a major-unit
// decimal string in the loan currency.
func repayIn(records []settle.Record, id, amount, note string, opts settle.RepaymentOptions) ([]settle.Record, settle.Loan, error) {
	i, l, err := findLoan(records, id)
	if err != nil {
		return nil, settle.Loan{}, err
	}
	m, err := settle.ParseMoney(amount, l.Currency)
	if err != nil {
		return nil, settle.Loan{}, err
	}
	next, err := settle.AddRepayment(l, m.Minor(), note, opts)
	if err != nil {
		return nil, settle.Loan{}, err
	}
	out := append([]settle.Record(nil), records...)
	out[i] = next
	return out, next, nil
}

// closeIn returns records with the loan id closed.
func closeIn(records []settle.Record, id string, at time.Time, note string) ([]settle.Record, settle.Loan, error) {
	i, l, err := findLoan(records, id)
	if err != nil {
		return nil, settle.Loan{}, err
	}
	if l.Status == settle.LoanClosed {
		return nil, settle.Loan{}, fmt.Errorf("loan %q: %w", id, settle.ErrLoanClosed)
	}
	next := settle.CloseLoan(l, at, note)
	out := append([]settle.Record(nil), records...)
	out[i] = next
	return out, next, nil
}

// parseAt parses a day flag, now when empty.
func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time(), nil
}

// loansCmd holds the flags for the 'loans' subcommand.
type loansCmd struct {
	all bool
}

func (*loansCmd) Name() string     { return "loans" }
func (*loansCmd) Synopsis() string { return "display loans and their outstanding" }
func (*loansCmd) Usage() string {
	return `spl loans [-all] [<participant>]

  Displays the loans of a participant, or every loan. Closed loans are only
  displayed with -all.
`
}

func (c *loansCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "Also display closed loans")
}

func (c *loansCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	records, err := DecodeRecords(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding records %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}
	who := f.Arg(0)
	var loans []settle.Loan
	for _, r := range records {
		l, ok := r.(settle.Loan)
		if !ok || (!c.all && l.Status == settle.LoanClosed) {
			continue
		}
		if who == "" || l.Lender == who || l.Borrower == who {
			loans = append(loans, l)
		}
	}

	md := renderer.Loans(loans, date.Today())
	if who != "" {
		lent, borrowed := settle.LoanTotals(loans, who)
		for _, cur := range slices.Sorted(maps.Keys(lent)) {
			md += fmt.Sprintf("\n%s lent %s in %s.\n", who, lent[cur], cur)
		}
		for _, cur := range slices.Sorted(maps.Keys(borrowed)) {
			md += fmt.Sprintf("\n%s borrowed %s in %s.\n", who, borrowed[cur], cur)
		}
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// lendCmd holds the flags for the 'lend' subcommand.
type lendCmd struct {
	id   string
	on   string
	due  string
	memo string
}

func (*lendCmd) Name() string     { return "lend" }
func (*lendCmd) Synopsis() string { return "record a loan" }
func (*lendCmd) Usage() string {
	return `spl lend [-id <id>] [-d <date>] [-due <date>] [-memo <text>] <lender> <borrower> <amount> [<currency>]

  Appends a loan to the records file. The currency defaults to the configured currency.
`
}

func (c *lendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Loan id. Defaults to a generated id.")
	f.StringVar(&c.on, "d", date.Today().String(), "Day the money was lent")
	f.StringVar(&c.due, "due", "", "Estimated return day")
	f.StringVar(&c.memo, "memo", "", "Free text memo")
}

func (c *lendCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 3 || f.NArg() > 4 {
		fmt.Fprintf(os.Stderr, "Error: expected <lender> <borrower> <amount> [<currency>]\n")
		return subcommands.ExitUsageError
	}
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	currency := cfg.Currency
	if f.NArg() == 4 {
		currency = f.Arg(3)
	}
	principal, err := settle.ParseMoney(f.Arg(2), currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	opts := []settle.LoanOption{settle.LoanMemo(c.memo)}
	if c.id != "" {
		opts = append(opts, settle.WithLoanID(c.id))
	}
	if c.due != "" {
		due, err := date.Parse(c.due)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing due date: %v\n", err)
			return subcommands.ExitUsageError
		}
		opts = append(opts, settle.DueOn(due))
	}

	loan, err := settle.NewLoan(on, f.Arg(0), f.Arg(1), principal, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := AppendRecord(cfg.RecordsFile, loan); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to records file %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}
	logger.Info("loan recorded", "id", loan.ID, "lender", loan.Lender, "borrower", loan.Borrower, "principal", principal.String())
	fmt.Printf("Successfully appended loan %s to %s\n", loan.ID, cfg.RecordsFile)
	return subcommands.ExitSuccess
}

// repayCmd holds the flags for the 'repay' subcommand.
type repayCmd struct {
	note      string
	at        string
	autoClose bool
}

func (*repayCmd) Name() string     { return "repay" }
func (*repayCmd) Synopsis() string { return "record a loan repayment" }
func (*repayCmd) Usage() string {
	return `spl repay [-note <text>] [-at <date>] [-close] <loan-id> <amount>

  Records a repayment of a loan, in the loan currency. The repayment cannot
  exceed the outstanding amount. With -close, a repayment clearing the loan
  also closes it.
`
}

func (c *repayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.note, "note", "", "Note attached to the repayment")
	f.StringVar(&c.at, "at", "", "Day of the repayment. Defaults to now.")
	f.BoolVar(&c.autoClose, "close", false, "Close the loan when the repayment clears it")
}

func (c *repayCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Error: expected <loan-id> <amount>\n")
		return subcommands.ExitUsageError
	}
	at, err := parseAt(c.at)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	records, err := DecodeRecords(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding records %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}
	records, loan, err := repayIn(records, f.Arg(0), f.Arg(1), c.note, settle.RepaymentOptions{At: at, AutoCloseIfFull: c.autoClose})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodeRecords(cfg.RecordsFile, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing records file %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}
	logger.Info("loan repaid", "id", loan.ID, "outstanding", settle.Outstanding(loan).String(), "status", loan.Status)
	fmt.Printf("Loan %s: outstanding %s, %s\n", loan.ID, settle.Outstanding(loan), loan.Status)
	return subcommands.ExitSuccess
}

// closeLoanCmd holds the flags for the 'close-loan' subcommand.
type closeLoanCmd struct {
	note string
	at   string
}

func (*closeLoanCmd) Name() string     { return "close-loan" }
func (*closeLoanCmd) Synopsis() string { return "close a loan, whatever its outstanding" }
func (*closeLoanCmd) Usage() string {
	return `spl close-loan [-note <text>] [-at <date>] <loan-id>

  Closes a loan. An outstanding amount is forgiven.
`
}

func (c *closeLoanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.note, "note", "", "Note explaining the closing")
	f.StringVar(&c.at, "at", "", "Day of the closing. Defaults to now.")
}

func (c *closeLoanCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected <loan-id>\n")
		return subcommands.ExitUsageError
	}
	at, err := parseAt(c.at)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	records, err := DecodeRecords(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding records %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}
	records, loan, err := closeIn(records, f.Arg(0), at, c.note)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodeRecords(cfg.RecordsFile, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing records file %q: %v\n", cfg.RecordsFile, err)
		return subcommands.ExitFailure
	}
	if !settle.Outstanding(loan).IsZero() {
		logger.Warn("loan closed with an outstanding amount", "id", loan.ID, "outstanding", settle.Outstanding(loan).String())
	}
	fmt.Printf("Loan %s closed\n", loan.ID)
	return subcommands.ExitSuccess
}
