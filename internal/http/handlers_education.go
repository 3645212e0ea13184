package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/log"
)

type tuitionFeeRequest struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *Date           `json:"dueDate"`
	Semester    string          `json:"semester"`
	Description string          `json:"description"`
}

type tuitionFeePatch struct {
	Name        *string          `json:"name"`
	Type        *string          `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *Date            `json:"dueDate"`
	Semester    *string          `json:"semester"`
	Description *string          `json:"description"`
}

type tuitionPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

type scholarshipRequest struct {
	Name             string                 `json:"name"`
	Type             string                 `json:"type"`
	Amount           decimal.Decimal        `json:"amount"`
	Provider         string                 `json:"provider"`
	Deadline         *Date                  `json:"deadline"`
	ExpectedResponse *Date                  `json:"expectedResponse"`
	Requirements     string                 `json:"requirements"`
	Website          string                 `json:"website"`
	Notes            string                 `json:"notes"`
	Status           core.ScholarshipStatus `json:"status"`
}

type scholarshipPatch struct {
	Name             *string                 `json:"name"`
	Type             *string                 `json:"type"`
	Amount           *decimal.Decimal        `json:"amount"`
	Provider         *string                 `json:"provider"`
	Deadline         *Date                   `json:"deadline"`
	ExpectedResponse *Date                   `json:"expectedResponse"`
	Requirements     *string                 `json:"requirements"`
	Website          *string                 `json:"website"`
	Notes            *string                 `json:"notes"`
	Status           *core.ScholarshipStatus `json:"status"`
}

func (p scholarshipPatch) update() ledger.ScholarshipUpdate {
	return ledger.ScholarshipUpdate{
		Name:             sanitizePtr(p.Name),
		Type:             sanitizePtr(p.Type),
		Amount:           p.Amount,
		Provider:         sanitizePtr(p.Provider),
		Deadline:         timePtrOf(p.Deadline),
		ExpectedResponse: timePtrOf(p.ExpectedResponse),
		Requirements:     sanitizePtr(p.Requirements),
		Website:          sanitizePtr(p.Website),
		Notes:            sanitizePtr(p.Notes),
		Status:           p.Status,
	}
}

// scholarshipStatusRequest carries the new status plus any fields that
// change with it, such as the expected response date.
type scholarshipStatusRequest struct {
	scholarshipPatch
	Status core.ScholarshipStatus `json:"status"`
}

func (s *Server) handleListTuitionFees(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Snapshot()
	NewJSONResponse().Body(map[string]any{
		"fees":     snap.TuitionFees,
		"payments": snap.TuitionPayments,
	}).Write(w)
}

func (s *Server) handleCreateTuitionFee(w http.ResponseWriter, r *http.Request) {
	var req tuitionFeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	fee, err := s.ledger.AddTuitionFee(r.Context(), ledger.TuitionFeeInput{
		Name:        sanitizeInput(req.Name),
		Type:        sanitizeInput(req.Type),
		Amount:      req.Amount,
		DueDate:     timeOf(req.DueDate),
		Semester:    sanitizeInput(req.Semester),
		Description: sanitizeInput(req.Description),
	})
	respond(w, r, log.OpCreate, http.StatusCreated, fee, err)
}

func (s *Server) handleUpdateTuitionFee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	var req tuitionFeePatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	fee, err := s.ledger.UpdateTuitionFee(r.Context(), id, ledger.TuitionFeeUpdate{
		Name:        sanitizePtr(req.Name),
		Type:        sanitizePtr(req.Type),
		Amount:      req.Amount,
		DueDate:     timePtrOf(req.DueDate),
		Semester:    sanitizePtr(req.Semester),
		Description: sanitizePtr(req.Description),
	})
	respond(w, r, log.OpUpdate, http.StatusOK, fee, err)
}

func (s *Server) handleDeleteTuitionFee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	err = s.ledger.DeleteTuitionFee(r.Context(), id)
	respond(w, r, log.OpDelete, http.StatusNoContent, nil, err)
}

func (s *Server) handleTuitionPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	var req tuitionPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, log.OpPay, err)
		return
	}
	p, err := s.ledger.MakeTuitionPayment(r.Context(), id, ledger.TuitionPaymentInput{
		Amount:    req.Amount,
		Method:    sanitizeInput(req.Method),
		Reference: sanitizeInput(req.Reference),
		Notes:     sanitizeInput(req.Notes),
	})
	respond(w, r, log.OpPay, http.StatusCreated, p, err)
}

func (s *Server) handleListScholarships(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.ledger.Snapshot().Scholarships).Write(w)
}

func (s *Server) handleCreateScholarship(w http.ResponseWriter, r *http.Request) {
	var req scholarshipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	sc, err := s.ledger.AddScholarship(r.Context(), ledger.ScholarshipInput{
		Name:             sanitizeInput(req.Name),
		Type:             sanitizeInput(req.Type),
		Amount:           req.Amount,
		Provider:         sanitizeInput(req.Provider),
		Deadline:         timeOf(req.Deadline),
		ExpectedResponse: timePtrOf(req.ExpectedResponse),
		Requirements:     sanitizeInput(req.Requirements),
		Website:          sanitizeInput(req.Website),
		Notes:            sanitizeInput(req.Notes),
		Status:           req.Status,
	})
	respond(w, r, log.OpCreate, http.StatusCreated, sc, err)
}

func (s *Server) handleUpdateScholarship(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	var req scholarshipPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	sc, err := s.ledger.UpdateScholarship(r.Context(), id, req.update())
	respond(w, r, log.OpUpdate, http.StatusOK, sc, err)
}

func (s *Server) handleUpdateScholarshipStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	var req scholarshipStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if req.Status == "" {
		writeError(w, r, log.OpUpdate, core.Invalid("status is required"))
		return
	}
	extra := req.scholarshipPatch.update()
	extra.Status = nil
	sc, err := s.ledger.UpdateScholarshipStatus(r.Context(), id, req.Status, extra)
	respond(w, r, log.OpUpdate, http.StatusOK, sc, err)
}

func (s *Server) handleDeleteScholarship(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	err = s.ledger.DeleteScholarship(r.Context(), id)
	respond(w, r, log.OpDelete, http.StatusNoContent, nil, err)
}
