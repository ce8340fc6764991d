package api

import (
	"context"
	"net/http"

	"github.com/okian/jobdb/internal/auth"
	"github.com/okian/jobdb/internal/domain/report"
)

// ReportDependencies defines the analytics read.
type ReportDependencies interface {
	Report(ctx context.Context) (*report.Report, error)
}

// ReportHandler serves the admin usage report.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleReport handles GET /admin/report.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	rep, err := h.deps.Report(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
