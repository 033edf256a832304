// Package cmd implements the spl command line application.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/settle"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&balancesCmd{}, "balances")
	c.Register(&simplifyCmd{}, "balances")
	c.Register(&spendingCmd{}, "balances")

	c.Register(&loansCmd{}, "loans")
	c.Register(&lendCmd{}, "loans")
	c.Register(&repayCmd{}, "loans")
	c.Register(&closeLoanCmd{}, "loans")

	c.Register(&walletCmd{}, "wallet")
	c.Register(&serveCmd{}, "wallet")

	c.Register(&fmtCmd{}, "records")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile  = flag.String("config", "spl.toml", "Path to the TOML configuration file")
	recordsFile = flag.String("records", "", "Path to the records file (JSONL format), overrides records_file")
	selectPath  = flag.String("select", "", "jsonpath expression selecting the records in a single JSON document, instead of JSONL")
	logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides log.level")
	rawOutput   = flag.Bool("raw", false, "Print raw markdown instead of rendering it for the terminal")
)

// settings loads the configuration once, with the global flags applied on top.
var settings = sync.OnceValues(func() (Config, error) {
	required := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			required = true
		}
	})
	cfg, err := LoadConfig(*configFile, required, os.Getenv)
	if err != nil {
		return Config{}, err
	}
	if *recordsFile != "" {
		cfg.RecordsFile = *recordsFile
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	return cfg, nil
})

// setup returns the configuration and a logger, or reports the error on stderr.
func setup() (Config, *slog.Logger, bool) {
	cfg, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return Config{}, nil, false
	}
	return cfg, newLogger(cfg.Log, os.Stderr), true
}

// DecodeRecords reads the records of the configured records file.
func DecodeRecords(cfg Config) ([]settle.Record, error) {
	f, err := os.Open(cfg.RecordsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if *selectPath != "" {
		return settle.DecodeRecordsAt(f, *selectPath)
	}
	return settle.DecodeRecords(f)
}

// EncodeRecords replaces the content of the records file with records.
// The file is written next to the original then renamed over it.
func EncodeRecords(path string, records []settle.Record) error {
	if *selectPath != "" {
		return errors.New("records selected with -select cannot be rewritten")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := settle.EncodeRecords(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// AppendRecord appends a single record to the records file, creating it if needed.
func AppendRecord(path string, rec settle.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := settle.EncodeRecord(f, rec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printMarkdown renders md for the terminal, or prints it raw when -raw is set
// or the terminal renderer is unavailable.
func printMarkdown(md string) {
	if !*rawOutput {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Print(out)
				return
			}
		}
	}
	fmt.Print(md)
}
