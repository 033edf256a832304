package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/settle"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	outputFile string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the records file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `spl fmt [-o <file>]

  Validates the records file, sorts the records by date, and writes them back
  in a canonical JSONL format. Records of the same day keep their order.

Usage Examples:
# Formats the configured records file in-place.
$ spl fmt

# Converts a JSON export into a records file.
$ spl -records export.json -select '$.expenses[*]' fmt -o records.jsonl
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.outputFile, "o", "", "Write the formatted records to that file instead of the records file")
}

// canonical returns records sorted by date, stable.
func canonical(records []settle.Record) []settle.Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b settle.Record) int {
		x, y := a.When(), b.When()
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
		return 0
	})
	return out
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	records, err := DecodeRecords(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load records: %v\n", err)
		return subcommands.ExitFailure
	}
	if _, err := settle.Normalize(records); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid records: %v\n", err)
		return subcommands.ExitFailure
	}

	output := cfg.RecordsFile
	if p.outputFile != "" {
		output = p.outputFile
		if err := writeRecordsFile(output, canonical(records)); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving formatted records %q: %v\n", output, err)
			return subcommands.ExitFailure
		}
	} else if err := EncodeRecords(output, canonical(records)); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving formatted records %q: %v\n", output, err)
		return subcommands.ExitFailure
	}
	logger.Info("records formatted", "file", output, "records", len(records))
	fmt.Fprintf(os.Stderr, "✅ Successfully formatted %d records.\n", len(records))
	return subcommands.ExitSuccess
}

// writeRecordsFile creates or truncates path with records.
func writeRecordsFile(path string, records []settle.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := settle.EncodeRecords(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
