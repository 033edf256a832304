package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/settle/renderer"
	"github.com/etnz/settle/wallet"
	"github.com/google/subcommands"
)

// operationLine is a line of an operations file. The payment method is
// created the first time its account id appears.
type operationLine struct {
	Account         string `json:"account"`
	Owner           string `json:"owner,omitempty"`
	DefaultCurrency string `json:"defaultCurrency,omitempty"`
	wallet.Operation
}

// rejection is an operation that failed.
type rejection struct {
	Line int
	Op   wallet.Operation
	Err  error
}

// replayOperations applies every operation of the JSONL stream r to l. Failed
// operations are collected and do not stop the replay.
func replayOperations(r io.Reader, l *wallet.Ledger) ([]rejection, error) {
	var rejected []rejection
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var op operationLine
		if err := json.Unmarshal(line, &op); err != nil {
			return rejected, fmt.Errorf("line %d: %w", n, err)
		}
		if op.Account == "" {
			return rejected, fmt.Errorf("line %d: missing account", n)
		}
		if _, err := l.Get(op.Account); errors.Is(err, wallet.ErrUnknownAccount) {
			cur := op.DefaultCurrency
			if cur == "" {
				cur = op.Currency
			}
			if _, err := l.CreateWithID(op.Account, op.Owner, cur); err != nil {
				return rejected, fmt.Errorf("line %d: %w", n, err)
			}
		}
		if op.Action == "" {
			continue
		}
		if _, err := l.Apply(op.Account, op.Operation); err != nil {
			rejected = append(rejected, rejection{Line: n, Op: op.Operation, Err: err})
		}
	}
	if err := scanner.Err(); err != nil {
		return rejected, fmt.Errorf("error reading operations: %w", err)
	}
	return rejected, nil
}

// walletCmd holds the flags for the 'wallet' subcommand.
type walletCmd struct{}

func (*walletCmd) Name() string     { return "wallet" }
func (*walletCmd) Synopsis() string { return "replay payment method operations and display balances" }
func (*walletCmd) Usage() string {
	return `spl wallet <operations.jsonl>

  Replays a file of balance operations, one JSON object per line, and displays
  the resulting payment method balances. For instance:

  {"account":"pm1","owner":"ann","defaultCurrency":"INR"}
  {"account":"pm1","action":"credit","currency":"INR","amount":100000}
  {"account":"pm1","action":"hold","currency":"INR","amount":40000,"token":"t1"}

  Amounts are in minor units. Rejected operations are listed after the balances.
`
}

func (c *walletCmd) SetFlags(f *flag.FlagSet) {}

func (c *walletCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected an operations file\n")
		return subcommands.ExitUsageError
	}
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening operations file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	ledger := wallet.NewLedger(wallet.WithRetention(cfg.Wallet.IdempotencyRetention.Duration))
	rejected, err := replayOperations(file, ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	b.WriteString(renderer.Accounts(ledger.List()))
	if len(rejected) > 0 {
		b.WriteString("\n## Rejected operations\n\n")
		for _, r := range rejected {
			logger.Warn("operation rejected", "line", r.Line, "op", r.Op.String(), "error", r.Err)
			fmt.Fprintf(&b, "* line %d: %s: %v\n", r.Line, r.Op, r.Err)
		}
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
