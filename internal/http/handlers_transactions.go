package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/log"
)

type transactionRequest struct {
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
	Type        core.TransactionType `json:"type"`
	Category    string               `json:"category"`
	Date        *Date                `json:"date"`
}

func (req transactionRequest) input() ledger.TransactionInput {
	return ledger.TransactionInput{
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    sanitizeInput(req.Category),
		Date:        timeOf(req.Date),
	}
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type savingsGoalRequest struct {
	Name   string          `json:"name"`
	Target decimal.Decimal `json:"target"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.ledger.Transactions()).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	tx, err := s.ledger.AddTransaction(r.Context(), req.input())
	respond(w, r, log.OpCreate, http.StatusCreated, tx, err)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	err = s.ledger.DeleteTransaction(r.Context(), id)
	respond(w, r, log.OpDelete, http.StatusNoContent, nil, err)
}

func (s *Server) handleGetSavings(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.ledger.Snapshot().Savings).Write(w)
}

func (s *Server) handleSavingsDeposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "savings_deposit", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, "savings_deposit", err)
		return
	}
	sv, err := s.ledger.AddToSavings(r.Context(), req.Amount)
	respond(w, r, "savings_deposit", http.StatusOK, sv, err)
}

func (s *Server) handleSavingsWithdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "savings_withdraw", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, "savings_withdraw", err)
		return
	}
	sv, err := s.ledger.WithdrawFromSavings(r.Context(), req.Amount)
	respond(w, r, "savings_withdraw", http.StatusOK, sv, err)
}

func (s *Server) handleSetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "savings_goal", err)
		return
	}
	err := s.ledger.SetSavingsGoal(r.Context(), req.Amount)
	if err != nil && !core.IsWarning(err) {
		writeError(w, r, "savings_goal", err)
		return
	}
	respond(w, r, "savings_goal", http.StatusOK, s.ledger.Snapshot().Savings, err)
}

func (s *Server) handleAddSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req savingsGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	goal, err := s.ledger.AddSavingsGoal(r.Context(), ledger.SavingsGoalInput{
		Name:   sanitizeInput(req.Name),
		Target: req.Target,
	})
	respond(w, r, log.OpCreate, http.StatusCreated, goal, err)
}
