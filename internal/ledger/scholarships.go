package ledger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

type ScholarshipInput struct {
	Name             string
	Type             string
	Amount           decimal.Decimal
	Provider         string
	Deadline         time.Time
	ExpectedResponse *time.Time
	Requirements     string
	Website          string
	Notes            string
	Status           core.ScholarshipStatus
}

type ScholarshipUpdate struct {
	Name             *string
	Type             *string
	Amount           *decimal.Decimal
	Provider         *string
	Deadline         *time.Time
	ExpectedResponse *time.Time
	Requirements     *string
	Website          *string
	Notes            *string
	Status           *core.ScholarshipStatus
}

func (u ScholarshipUpdate) apply(s *core.Scholarship) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&s.Name, u.Name)
	set(&s.Type, u.Type)
	set(&s.Provider, u.Provider)
	set(&s.Requirements, u.Requirements)
	set(&s.Website, u.Website)
	set(&s.Notes, u.Notes)
	if u.Amount != nil {
		s.Amount = *u.Amount
	}
	if u.Deadline != nil {
		s.Deadline = *u.Deadline
	}
	if u.ExpectedResponse != nil {
		s.ExpectedResponse = core.TimePtr(*u.ExpectedResponse)
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
}

// AddScholarship records a scholarship, available unless a status is given.
func (l *Ledger) AddScholarship(ctx context.Context, in ScholarshipInput) (core.Scholarship, error) {
	var out core.Scholarship
	err := l.mutate(ctx, "add_scholarship", func(now time.Time) (core.Event, error) {
		s := core.Scholarship{
			ID:           l.newID(),
			Name:         strings.TrimSpace(in.Name),
			Type:         strings.TrimSpace(in.Type),
			Amount:       in.Amount,
			Provider:     strings.TrimSpace(in.Provider),
			Deadline:     in.Deadline,
			Requirements: strings.TrimSpace(in.Requirements),
			Website:      strings.TrimSpace(in.Website),
			Notes:        strings.TrimSpace(in.Notes),
			Status:       in.Status,
			CreatedAt:    now,
		}
		if in.ExpectedResponse != nil {
			s.ExpectedResponse = core.TimePtr(*in.ExpectedResponse)
		}
		if s.Status == "" {
			s.Status = core.ScholarshipAvailable
		}
		if err := s.Validate(); err != nil {
			return core.Event{}, err
		}
		l.state.Scholarships = append(l.state.Scholarships, s)
		out = s
		return core.Event{Kind: core.EventScholarshipChanged, EntityID: s.ID, Amount: s.Amount}, nil
	})
	return out, err
}

// UpdateScholarship merges u into the scholarship.
func (l *Ledger) UpdateScholarship(ctx context.Context, id uuid.UUID, u ScholarshipUpdate) (core.Scholarship, error) {
	return l.updateScholarship(ctx, "update_scholarship", id, nil, u)
}

// UpdateScholarshipStatus sets status and then merges extra on top. Status is
// whatever the caller asserts; nothing is derived.
func (l *Ledger) UpdateScholarshipStatus(ctx context.Context, id uuid.UUID, status core.ScholarshipStatus, extra ScholarshipUpdate) (core.Scholarship, error) {
	return l.updateScholarship(ctx, "update_scholarship_status", id, &status, extra)
}

func (l *Ledger) updateScholarship(ctx context.Context, op string, id uuid.UUID, status *core.ScholarshipStatus, u ScholarshipUpdate) (core.Scholarship, error) {
	var out core.Scholarship
	err := l.mutate(ctx, op, func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Scholarships, id, func(s core.Scholarship) uuid.UUID { return s.ID })
		if i < 0 {
			return core.Event{}, notFound("scholarship", id)
		}
		s := l.state.Scholarships[i]
		if status != nil {
			s.Status = *status
		}
		u.apply(&s)
		if err := s.Validate(); err != nil {
			return core.Event{}, err
		}
		l.state.Scholarships[i] = s
		out = s
		return core.Event{Kind: core.EventScholarshipChanged, EntityID: s.ID, Amount: s.Amount, Message: string(s.Status)}, nil
	})
	return out, err
}

// DeleteScholarship removes the scholarship. A missing one is a no-op.
func (l *Ledger) DeleteScholarship(ctx context.Context, id uuid.UUID) error {
	return l.mutate(ctx, "delete_scholarship", func(time.Time) (core.Event, error) {
		i := indexByID(l.state.Scholarships, id, func(s core.Scholarship) uuid.UUID { return s.ID })
		if i < 0 {
			return core.Event{}, nil
		}
		s := l.state.Scholarships[i]
		l.state.Scholarships = slices.Delete(l.state.Scholarships, i, i+1)
		return core.Event{Kind: core.EventScholarshipDeleted, EntityID: s.ID, Amount: s.Amount}, nil
	})
}
