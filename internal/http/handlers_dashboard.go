package http

import (
	"bytes"
	"net/http"

	"finledger/internal/cache"
	"finledger/internal/log"
	"finledger/internal/report"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := s.engine.Dashboard(s.ledger.Snapshot())
	NewJSONResponse().Body(d).Write(w)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"balance": s.ledger.Balance(),
		"version": s.ledger.Version(),
	}).Write(w)
}

// handleReport renders a report for the requested window. Payloads are
// cached per ledger version, so any mutation makes the next request render
// afresh.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	params, err := ParseReportParams(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	now := s.ledger.Now()
	window := params.Window(now)
	version := s.ledger.Version()
	key := cache.ReportKey(version, window.String(), string(params.Format))

	payload, hit, err := s.reports.Get(key, func() ([]byte, error) {
		data := report.Build(s.ledger.Snapshot(), window)
		var buf bytes.Buffer
		if err := report.Write(&buf, params.Format, data); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}

	log.FromContext(r.Context()).DebugContext(r.Context(), "Report served",
		log.FieldRange, window.String(),
		log.FieldVersion, version,
		"format", string(params.Format),
		"cache_hit", hit)

	w.Header().Set("Content-Type", params.Format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(params.Format, now)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
