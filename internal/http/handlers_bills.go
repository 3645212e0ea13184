package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/log"
)

type billRequest struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Frequency   core.Frequency  `json:"frequency"`
	NextDueDate *Date           `json:"nextDueDate"`
}

type billPatch struct {
	Name        *string          `json:"name"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Frequency   *core.Frequency  `json:"frequency"`
	NextDueDate *Date            `json:"nextDueDate"`
	IsPaid      *bool            `json:"isPaid"`
}

func (p billPatch) update() ledger.BillUpdate {
	return ledger.BillUpdate{
		Name:        sanitizePtr(p.Name),
		Amount:      p.Amount,
		Category:    sanitizePtr(p.Category),
		Frequency:   p.Frequency,
		NextDueDate: timePtrOf(p.NextDueDate),
		IsPaid:      p.IsPaid,
	}
}

type budgetRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type budgetPatch struct {
	Category *string          `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.ledger.Snapshot().Bills).Write(w)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	bill, err := s.ledger.AddBill(r.Context(), ledger.BillInput{
		Name:        sanitizeInput(req.Name),
		Amount:      req.Amount,
		Category:    sanitizeInput(req.Category),
		Frequency:   req.Frequency,
		NextDueDate: timeOf(req.NextDueDate),
	})
	respond(w, r, log.OpCreate, http.StatusCreated, bill, err)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	var req billPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	bill, err := s.ledger.UpdateBill(r.Context(), id, req.update())
	respond(w, r, log.OpUpdate, http.StatusOK, bill, err)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	err = s.ledger.DeleteBill(r.Context(), id)
	respond(w, r, log.OpDelete, http.StatusNoContent, nil, err)
}

// handlePayBill charges the bill and advances its due date. An unknown bill
// is a 404 here even though the ledger treats it as a no-op.
func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	bill, err := s.ledger.MarkBillAsPaid(r.Context(), id)
	if err == nil && bill == nil {
		NotFoundError("bill " + id.String() + " not found").Write(w)
		return
	}
	respond(w, r, log.OpPay, http.StatusOK, bill, err)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.ledger.Snapshot().Budgets).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	budget, err := s.ledger.AddBudget(r.Context(), ledger.BudgetInput{
		Category: sanitizeInput(req.Category),
		Amount:   req.Amount,
	})
	respond(w, r, log.OpCreate, http.StatusCreated, budget, err)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	var req budgetPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	budget, err := s.ledger.UpdateBudget(r.Context(), id, ledger.BudgetUpdate{
		Category: sanitizePtr(req.Category),
		Amount:   req.Amount,
	})
	respond(w, r, log.OpUpdate, http.StatusOK, budget, err)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	err = s.ledger.DeleteBudget(r.Context(), id)
	respond(w, r, log.OpDelete, http.StatusNoContent, nil, err)
}
