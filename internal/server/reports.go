package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"goalboard/internal/report"
)

func registerReports(api huma.API, h *handler) {
	huma.Register(api, huma.Operation{
		OperationID: "report-shaping-goals",
		Method:      http.MethodGet,
		Path:        "/reports/shaping-goals",
		Summary:     "Shaping Goals report",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ShapingGoalList `json:"body"`
	}, error) {
		rows := report.ShapingGoals(h.engine.Store.Snapshot())
		return &struct {
			Body ShapingGoalList `json:"body"`
		}{Body: ShapingGoalList{Items: orEmpty(rows)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "report-initiatives",
		Method:      http.MethodGet,
		Path:        "/reports/initiatives",
		Summary:     "Initiative report",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body InitiativeReportList `json:"body"`
	}, error) {
		rows := report.InitiativeReport(h.engine.Store.Snapshot(), h.report)
		return &struct {
			Body InitiativeReportList `json:"body"`
		}{Body: InitiativeReportList{Items: orEmpty(rows)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "report-projects",
		Method:      http.MethodGet,
		Path:        "/reports/projects",
		Summary:     "Project report",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ProjectReportList `json:"body"`
	}, error) {
		rows := report.ProjectReport(h.engine.Store.Snapshot())
		return &struct {
			Body ProjectReportList `json:"body"`
		}{Body: ProjectReportList{Items: orEmpty(rows)}}, nil
	})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// registerExport serves the workbook download outside huma since the body is
// binary.
func registerExport(r chi.Router, basePath string, h *handler) {
	r.Get(path.Join(basePath, "reports", "export"), func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := report.WriteXLSX(&buf, h.engine.Store.Snapshot(), h.report); err != nil {
			h.log.Error("export failed", "err", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(apiError{Body: apiErrorBody{Code: "internal_error", Message: "export failed"}})
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exportFile))
		w.Write(buf.Bytes())
	})
}
