package api

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/etnz/settle"
	"github.com/shopspring/decimal"
)

// scopeRequest selects the entries of a request. At most one field is set.
type scopeRequest struct {
	Group    string `json:"group,omitempty"`
	Friend   string `json:"friend,omitempty"`
	Personal bool   `json:"personal,omitempty"`
}

func (q scopeRequest) scope(subject string) (settle.Scope, error) {
	set := 0
	for _, ok := range []bool{q.Group != "", q.Friend != "", q.Personal} {
		if ok {
			set++
		}
	}
	switch {
	case set > 1:
		return settle.Scope{}, fmt.Errorf("%w: only one of group, friend and personal may be set", settle.ErrInvalidRecord)
	case q.Group != "":
		return settle.GroupScope(q.Group), nil
	case q.Friend != "":
		if subject == "" {
			return settle.Scope{}, fmt.Errorf("%w: a friend scope needs a subject", settle.ErrInvalidRecord)
		}
		return settle.FriendScope(subject, q.Friend), nil
	case q.Personal:
		return settle.PersonalScope(), nil
	default:
		return settle.AllScope(), nil
	}
}

type recordsRequest struct {
	Records []json.RawMessage `json:"records"`
	Subject string            `json:"subject,omitempty"`
	Scope   scopeRequest      `json:"scope"`
}

// entries decodes, validates and normalizes the request records.
func (q recordsRequest) entries() ([]settle.Entry, settle.Scope, error) {
	scope, err := q.Scope.scope(q.Subject)
	if err != nil {
		return nil, scope, err
	}
	records := make([]settle.Record, 0, len(q.Records))
	for i, raw := range q.Records {
		rec, err := settle.UnmarshalRecord(raw)
		if err != nil {
			return nil, scope, fmt.Errorf("records[%d]: %w", i, err)
		}
		records = append(records, rec)
	}
	entries, err := settle.Normalize(records)
	return entries, scope, err
}

// majors converts the tables to major units.
func majors(tables map[string]settle.Net) map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal, len(tables))
	for cur, n := range tables {
		m := make(map[string]decimal.Decimal, len(n))
		for who, v := range n {
			m[who] = settle.M(v, cur).Major()
		}
		out[cur] = m
	}
	return out
}

type balancesRequest struct {
	recordsRequest
	IncludeZero bool `json:"includeZero,omitempty"`
}

type balancesResponse struct {
	Subject  string                                `json:"subject,omitempty"`
	Scope    string                                `json:"scope"`
	Balances map[string]map[string]decimal.Decimal `json:"balances"`
}

// handleBalances returns the subject balances with each counterparty, or
// every participant net balance when no subject is given.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	var req balancesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entries, scope, err := req.entries()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var tables map[string]settle.Net
	if req.Subject == "" {
		tables, err = settle.NetBalances(entries, scope)
	} else {
		tables, err = settle.Aggregate(entries, req.Subject, scope, settle.AggregateOptions{IncludeZeroBalancePairs: req.IncludeZero})
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balancesResponse{
		Subject:  req.Subject,
		Scope:    scope.String(),
		Balances: majors(tables),
	})
}

type transferResponse struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// handleSimplify returns the settlement plan of the request records.
func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	var req recordsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entries, scope, err := req.entries()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tables, err := settle.NetBalances(entries, scope)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	transfers, err := settle.SimplifyAll(tables)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]transferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, transferResponse{From: t.From, To: t.To, Currency: t.Amount.Currency(), Amount: t.Amount.Major()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":      scope.String(),
		"currencies": slices.Sorted(maps.Keys(tables)),
		"transfers":  out,
	})
}

type repayRequest struct {
	Loan      json.RawMessage `json:"loan"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	At        time.Time       `json:"at"`
	AutoClose bool            `json:"autoClose,omitempty"`
}

// handleRepay returns the loan with one more repayment.
func (s *Server) handleRepay(w http.ResponseWriter, r *http.Request) {
	var req repayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := settle.UnmarshalRecord(req.Loan)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	loan, ok := rec.(settle.Loan)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: %q is a %s, not a loan", settle.ErrInvalidRecord, rec.Ident(), rec.What()))
		return
	}
	amount, err := settle.FromMajor(req.Amount, loan.Currency)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	at := req.At
	if at.IsZero() {
		at = s.now()
	}
	next, err := settle.AddRepayment(loan, amount.Minor(), req.Note, settle.RepaymentOptions{At: at, AutoCloseIfFull: req.AutoClose})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "loan repaid", "loan", next.ID, "amount", amount.String(), "status", next.Status)
	writeJSON(w, http.StatusOK, map[string]any{
		"loan":        next,
		"outstanding": settle.Outstanding(next).Major(),
	})
}
