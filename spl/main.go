package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/settle/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the spl command line for shell completion.
func completion() *complete.Command {
	records := predict.Files("*.jsonl")
	scope := map[string]complete.Predictor{
		"group":    predict.Something,
		"friend":   predict.Something,
		"personal": predict.Nothing,
	}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":    predict.Files("*.toml"),
			"records":   predict.Or(records, predict.Files("*.json")),
			"select":    predict.Something,
			"log-level": predict.Set{"debug", "info", "warn", "error"},
			"raw":       predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"balances": {Flags: merge(scope, map[string]complete.Predictor{"zero": predict.Nothing})},
			"simplify": {Flags: map[string]complete.Predictor{"group": predict.Something, "personal": predict.Nothing}},
			"spending": {Flags: map[string]complete.Predictor{
				"c": predict.Something, "group": predict.Something, "from": predict.Something, "to": predict.Something,
			}},
			"loans":    {Flags: map[string]complete.Predictor{"all": predict.Nothing}},
			"lend": {Flags: map[string]complete.Predictor{
				"id": predict.Something, "d": predict.Something, "due": predict.Something, "memo": predict.Something,
			}},
			"repay":      {Flags: map[string]complete.Predictor{"note": predict.Something, "at": predict.Something, "close": predict.Nothing}},
			"close-loan": {Flags: map[string]complete.Predictor{"note": predict.Something, "at": predict.Something}},
			"wallet":     {Args: records},
			"serve":      {Flags: map[string]complete.Predictor{"addr": predict.Something}},
			"fmt":        {Flags: map[string]complete.Predictor{"o": records}},
			"topic":      {Flags: map[string]complete.Predictor{"list": predict.Nothing}, Args: predict.Set{"records", "splitting", "simplify", "loans", "wallet", "config", "*"}},
		},
	}
}

func merge(a, b map[string]complete.Predictor) map[string]complete.Predictor {
	out := make(map[string]complete.Predictor, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func main() {
	// Answers shell completion requests, and exits, when run by the shell.
	completion().Complete("spl")

	commander := subcommands.NewCommander(flag.CommandLine, "spl")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	// Unknown subcommands may be extensions found in the PATH.
	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// registered reports whether name is a subcommand of c.
func registered(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}
