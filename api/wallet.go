package api

import (
	"maps"
	"net/http"
	"slices"

	"github.com/etnz/settle/wallet"
	"github.com/go-chi/chi/v5"
)

// IdempotencyHeader carries the idempotency token of an operation.
const IdempotencyHeader = "Idempotency-Key"

type paymentMethodResponse struct {
	ID              string                    `json:"id"`
	Owner           string                    `json:"owner"`
	DefaultCurrency string                    `json:"defaultCurrency"`
	Currencies      []string                  `json:"currencies"`
	Balances        map[string]wallet.Balance `json:"balances"`
}

func paymentMethodOf(pm *wallet.PaymentMethod) paymentMethodResponse {
	balances := pm.Balances()
	return paymentMethodResponse{
		ID:              pm.ID(),
		Owner:           pm.Owner(),
		DefaultCurrency: pm.DefaultCurrency(),
		Currencies:      slices.Sorted(maps.Keys(balances)),
		Balances:        balances,
	}
}

func (s *Server) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	list := s.ledger.List()
	out := make([]paymentMethodResponse, 0, len(list))
	for _, pm := range list {
		out = append(out, paymentMethodOf(pm))
	}
	writeJSON(w, http.StatusOK, map[string]any{"paymentMethods": out})
}

func (s *Server) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner           string `json:"owner"`
		DefaultCurrency string `json:"defaultCurrency"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Owner == "" {
		writeError(w, http.StatusUnprocessableEntity, "owner is required")
		return
	}
	pm, err := s.ledger.Create(req.Owner, req.DefaultCurrency)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "payment method created", "id", pm.ID(), "owner", pm.Owner())
	writeJSON(w, http.StatusCreated, paymentMethodOf(pm))
}

func (s *Server) handleGetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	pm, err := s.ledger.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentMethodOf(pm))
}

func (s *Server) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ledger.Delete(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "payment method deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleOperation applies a balance operation. The Idempotency-Key header,
// when present, takes precedence over the token of the body.
func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	var op wallet.Operation
	if !decodeBody(w, r, &op) {
		return
	}
	if key := r.Header.Get(IdempotencyHeader); key != "" {
		op.Token = key
	}
	id := chi.URLParam(r, "id")
	b, err := s.ledger.Apply(id, op)
	if err != nil {
		s.logger.DebugContext(r.Context(), "operation rejected", "id", id, "op", op.String(), "error", err)
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"currency": op.Currency,
		"balance":  b,
	})
}
