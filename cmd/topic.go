package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/settle/docs"
	"github.com/google/subcommands"
)

// topicCmd prints the help topics embedded in the docs package.
type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read about records, splitting, loans and wallets" }
func (*topicCmd) Usage() string {
	return `spl topic [-list] [<topic>...]

  Prints the spl documentation. Without a topic, prints the overview and the
  list of topics: records (the JSONL records file), splitting (how an expense
  becomes debts), simplify (the settlement plan), loans, wallet (payment
  methods and idempotent operations) and config (spl.toml and SPL_* variables).
  "*" prints every topic.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "Only print the topic names, one per line")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		names, err := docs.GetAllTopics()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing topics: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(strings.Join(names, "\n"))
		return subcommands.ExitSuccess
	}

	doc, err := topicDoc(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}

// topicDoc returns the markdown of the topics, the readme when there is none.
// Unknown topics are reported with the list of known ones.
func topicDoc(topics []string) (string, error) {
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	doc, err := docs.GetTopics(topics...)
	if err != nil {
		names, _ := docs.GetAllTopics()
		return "", fmt.Errorf("%w (topics are %s)", err, strings.Join(names, ", "))
	}
	return doc, nil
}
