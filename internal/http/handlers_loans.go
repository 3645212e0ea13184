package http

import (
	"net/http"
	"slices"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/log"
)

type loanRequest struct {
	Name              string          `json:"name"`
	Type              string          `json:"type"`
	Lender            string          `json:"lender"`
	PrincipalAmount   decimal.Decimal `json:"principalAmount"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	TermMonths        int             `json:"termMonths"`
	StartDate         *Date           `json:"startDate"`
	GracePeriodMonths int             `json:"gracePeriodMonths"`
	Status            core.LoanStatus `json:"status"`
	Notes             string          `json:"notes"`
}

type loanPatch struct {
	Name               *string          `json:"name"`
	Type               *string          `json:"type"`
	Lender             *string          `json:"lender"`
	PrincipalAmount    *decimal.Decimal `json:"principalAmount"`
	OutstandingBalance *decimal.Decimal `json:"outstandingBalance"`
	InterestRate       *decimal.Decimal `json:"interestRate"`
	TermMonths         *int             `json:"termMonths"`
	StartDate          *Date            `json:"startDate"`
	GracePeriodMonths  *int             `json:"gracePeriodMonths"`
	Status             *core.LoanStatus `json:"status"`
	Notes              *string          `json:"notes"`
}

type loanPaymentRequest struct {
	Amount      decimal.Decimal      `json:"amount"`
	PaymentType core.LoanPaymentType `json:"paymentType"`
	Method      string               `json:"method"`
	Reference   string               `json:"reference"`
	Notes       string               `json:"notes"`
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Snapshot()
	NewJSONResponse().Body(map[string]any{
		"loans":    snap.Loans,
		"payments": snap.LoanPayments,
	}).Write(w)
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	loan, err := s.ledger.AddLoan(r.Context(), ledger.LoanInput{
		Name:              sanitizeInput(req.Name),
		Type:              sanitizeInput(req.Type),
		Lender:            sanitizeInput(req.Lender),
		PrincipalAmount:   req.PrincipalAmount,
		InterestRate:      req.InterestRate,
		TermMonths:        req.TermMonths,
		StartDate:         timeOf(req.StartDate),
		GracePeriodMonths: req.GracePeriodMonths,
		Status:            req.Status,
		Notes:             sanitizeInput(req.Notes),
	})
	respond(w, r, log.OpCreate, http.StatusCreated, loan, err)
}

func (s *Server) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	var req loanPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	loan, err := s.ledger.UpdateLoan(r.Context(), id, ledger.LoanUpdate{
		Name:               sanitizePtr(req.Name),
		Type:               sanitizePtr(req.Type),
		Lender:             sanitizePtr(req.Lender),
		PrincipalAmount:    req.PrincipalAmount,
		OutstandingBalance: req.OutstandingBalance,
		InterestRate:       req.InterestRate,
		TermMonths:         req.TermMonths,
		StartDate:          timePtrOf(req.StartDate),
		GracePeriodMonths:  req.GracePeriodMonths,
		Status:             req.Status,
		Notes:              sanitizePtr(req.Notes),
	})
	respond(w, r, log.OpUpdate, http.StatusOK, loan, err)
}

func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	err = s.ledger.DeleteLoan(r.Context(), id)
	respond(w, r, log.OpDelete, http.StatusNoContent, nil, err)
}

func (s *Server) handleLoanPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	var req loanPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	p, err := s.ledger.MakeLoanPayment(r.Context(), id, ledger.LoanPaymentInput{
		Amount:      req.Amount,
		PaymentType: req.PaymentType,
		Method:      sanitizeInput(req.Method),
		Reference:   sanitizeInput(req.Reference),
		Notes:       sanitizeInput(req.Notes),
	})
	respond(w, r, log.OpPay, http.StatusCreated, p, err)
}

func (s *Server) handleLoanSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	loans := s.ledger.Snapshot().Loans
	i := slices.IndexFunc(loans, func(l core.Loan) bool { return l.ID == id })
	if i < 0 {
		NotFoundError("loan " + id.String() + " not found").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"loanId": id,
		"rows":   nonNil(s.engine.Schedule(loans[i])),
	}).Write(w)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
