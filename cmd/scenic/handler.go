package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/m-mizutani/scenic"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "report storage is not configured")
		return
	}

	pageSizeStr := r.URL.Query().Get("page_size")
	pageSize := scenic.DefaultReportPageSize
	if pageSizeStr != "" {
		n, err := strconv.Atoi(pageSizeStr)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid page_size parameter")
			return
		}
		pageSize = n
	}

	page, err := s.store.List(r.Context(), scenic.ReportQuery{
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
	})
	if err != nil {
		slog.Error("failed to list reports", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "report storage is not configured")
		return
	}

	runID := r.PathValue("id")
	report, err := s.store.Load(r.Context(), runID)
	if err != nil {
		if errors.Is(err, scenic.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		slog.Error("failed to get report", slog.Any("error", err), slog.String("run_id", runID))
		writeError(w, http.StatusInternalServerError, "failed to get report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

type createRunRequest struct {
	Goal     string `json:"goal"`
	MaxSteps *int   `json:"max_steps,omitempty"`
}

// runEvent is one line of the NDJSON stream returned by POST /api/runs.
type runEvent struct {
	Type   string         `json:"type"`
	Step   *scenic.Step   `json:"step,omitempty"`
	Report *scenic.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

const (
	runEventStep   = "step"
	runEventReport = "report"
	runEventError  = "error"
)

// handleCreateRun runs the goal while the client waits. Each completed step is streamed as
// a line of NDJSON and the report comes last. Closing the connection cancels the run
// between steps.
func (s *server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "agent is not configured")
		return
	}

	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Goal) == "" {
		writeError(w, http.StatusBadRequest, "goal is required")
		return
	}
	if req.MaxSteps != nil && *req.MaxSteps < 0 {
		writeError(w, http.StatusBadRequest, "max_steps must not be negative")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	emit := func(ev runEvent) error {
		if err := enc.Encode(ev); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	options := s.runOptions()
	if req.MaxSteps != nil {
		options = append(options, scenic.WithMaxSteps(*req.MaxSteps))
	}
	options = append(options, scenic.WithStepHook(func(ctx context.Context, step scenic.Step) error {
		return emit(runEvent{Type: runEventStep, Step: &step})
	}))

	report, err := s.runner.Run(r.Context(), req.Goal, options...)
	if err != nil {
		slog.Warn("run rejected", slog.Any("error", err))
		_ = emit(runEvent{Type: runEventError, Error: err.Error()})
		return
	}
	if err := emit(runEvent{Type: runEventReport, Report: report}); err != nil {
		slog.Warn("failed to write report event", slog.Any("error", err), slog.String("run_id", report.RunID))
	}
}
