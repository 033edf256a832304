package cmd

import (
	"errors"
	"flag"

	"github.com/etnz/settle"
)

// scopeFlags are the flags shared by the commands working on a scope.
type scopeFlags struct {
	group    string
	friend   string
	personal bool
}

func (s *scopeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.group, "group", "", "Only take the records of that group into account")
	f.StringVar(&s.friend, "friend", "", "Only take the debts between the participant and that friend into account")
	f.BoolVar(&s.personal, "personal", false, "Only take the records made outside any group into account")
}

// scope returns the selected scope. A friend scope needs a subject.
func (s *scopeFlags) scope(subject string) (settle.Scope, error) {
	n := 0
	for _, set := range []bool{s.group != "", s.friend != "", s.personal} {
		if set {
			n++
		}
	}
	switch {
	case n > 1:
		return settle.Scope{}, errors.New("-group, -friend and -personal are exclusive")
	case s.group != "":
		return settle.GroupScope(s.group), nil
	case s.friend != "":
		if subject == "" {
			return settle.Scope{}, errors.New("-friend needs a participant")
		}
		return settle.FriendScope(subject, s.friend), nil
	case s.personal:
		return settle.PersonalScope(), nil
	default:
		return settle.AllScope(), nil
	}
}

// loadEntries decodes and normalizes the records file.
func loadEntries(cfg Config) ([]settle.Record, []settle.Entry, error) {
	records, err := DecodeRecords(cfg)
	if err != nil {
		return nil, nil, err
	}
	entries, err := settle.Normalize(records)
	if err != nil {
		return nil, nil, err
	}
	return records, entries, nil
}
