// Package http serves the ledger as a JSON API.
//
// This file implements utilities for parsing and validating HTTP request data:
// JSON bodies, path identifiers, report query parameters and the date format
// the API accepts.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"finledger/internal/core"
	"finledger/internal/dates"
	"finledger/internal/report"
	"finledger/internal/validation"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Date accepts either a calendar date (2006-01-02) or an RFC 3339 timestamp.
// Calendar dates are taken as midnight UTC.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.DateOnly))
}

// ParseDate parses a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	t, err := validation.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", strings.TrimSpace(s))
	}
	return t, nil
}

// timeOf returns the zero time for a nil date.
func timeOf(d *Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func timePtrOf(d *Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	return core.TimePtr(d.Time)
}

// decodeJSON reads one JSON object from r into dst. Unknown fields and
// trailing data are rejected. Errors wrap core.ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.Invalid("request body is empty")
		case errors.As(err, &maxErr):
			return core.Invalid(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		}
		return core.Invalid("malformed JSON body: " + err.Error())
	}
	if dec.More() {
		return core.Invalid("request body must contain a single JSON object")
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	return parseID(r.PathValue("id"))
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, core.Invalid(fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

// ReportParams are the query parameters of a report request.
type ReportParams struct {
	Kind   dates.RangeKind
	Start  *time.Time
	End    *time.Time
	Format report.Format
}

// ParseReportParams reads range, start, end and format. Custom windows need
// both bounds, in order.
func ParseReportParams(q url.Values) (ReportParams, error) {
	p := ReportParams{Kind: dates.ParseRangeKind(strings.TrimSpace(q.Get("range")))}

	f, err := report.ParseFormat(strings.TrimSpace(q.Get("format")))
	if err != nil {
		return ReportParams{}, err
	}
	p.Format = f

	if p.Kind != dates.Custom {
		return p, nil
	}
	start, err := ParseDate(q.Get("start"))
	if err != nil {
		return ReportParams{}, core.Invalid("custom range start: " + err.Error())
	}
	end, err := ParseDate(q.Get("end"))
	if err != nil {
		return ReportParams{}, core.Invalid("custom range end: " + err.Error())
	}
	if end.Before(start) {
		return ReportParams{}, core.Invalid("custom range end is before its start")
	}
	p.Start, p.End = &start, &end
	return p, nil
}

// Window resolves the parameters into a concrete range at now.
func (p ReportParams) Window(now time.Time) dates.Range {
	return dates.GetDateRange(p.Kind, p.Start, p.End, now)
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}
