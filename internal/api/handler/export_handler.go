package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-scout-export/internal/logging"
	"go-scout-export/internal/model"
	"go-scout-export/internal/pipeline"
	"go-scout-export/internal/store"
	"go-scout-export/pkg/utils"
)

const exportsPrefix = "/api/v1/exports/"

// maxWait caps how long CreateExport blocks when the caller asks to wait.
const maxWait = 10 * time.Minute

// JobReader reads recorded export jobs.
type JobReader interface {
	ListJobs(ctx context.Context) ([]store.JobRecord, error)
	GetJob(ctx context.Context, jobID string) (*store.JobRecord, error)
	GetJobErrors(ctx context.Context, jobID string) ([]store.JobError, error)
}

// ExportHandler serves the export API.
type ExportHandler struct {
	Service *pipeline.Service
	Jobs    JobReader
	Logger  *zap.Logger
}

// CreateExportRequest is the body of CreateExport.
type CreateExportRequest struct {
	// Teams to export; empty exports every team.
	Teams []model.Team `json:"teams"`
	// JSON selects the consolidated JSON document instead of spreadsheets.
	JSON bool `json:"json"`
}

// JobView is a recorded job plus whether it is still running. A job that is
// neither running nor finished was cut off by a restart.
type JobView struct {
	store.JobRecord
	Running  bool `json:"running"`
	Finished bool `json:"finished"`
}

// CreateExport submits a new export job
// @Summary Start an export
// @Description Start exporting the scouts of the given teams. The job runs in the background unless wait is set.
// @Tags exports
// @Accept json
// @Produce json
// @Param export body CreateExportRequest true "Teams to export"
// @Param wait query string false "Wait up to this duration for the job to finish, e.g. 30s"
// @Success 200 {object} pipeline.Result "Export finished within wait"
// @Success 202 {object} map[string]interface{} "Export started"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /exports [post]
func (h *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req CreateExportRequest
	// An empty body exports every team as spreadsheets.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	for _, t := range req.Teams {
		if t.ID == "" {
			http.Error(w, "Every team needs an id", http.StatusBadRequest)
			return
		}
	}

	handle, err := h.Service.Submit(r.Context(), pipeline.Request{Teams: req.Teams, JSON: req.JSON})
	if err != nil {
		logging.OrNop(h.Logger).Error("failed to submit export", zap.Error(err))
		http.Error(w, "Failed to start export", http.StatusInternalServerError)
		return
	}

	if wait := min(utils.ParseDuration(r.URL.Query().Get("wait"), 0), maxWait); wait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		defer cancel()
		res, err := handle.Wait(ctx)
		if ctx.Err() == nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"jobID":  handle.ID,
				"result": res,
				"error":  errorString(err),
			})
			return
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":   "Export started",
		"jobID":     handle.ID,
		"mode":      handle.Mode,
		"status":    model.StateIdle,
		"createdAt": time.Now().UTC(),
	})
}

// ListExports lists every recorded export job
// @Summary List exports
// @Description Get every export job with its current status, newest first
// @Tags exports
// @Produce json
// @Success 200 {array} store.JobRecord "List of exports"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /exports [get]
func (h *ExportHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.ListJobs(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch exports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetExport returns one export job
// @Summary Get export
// @Description Retrieve the status and progress of one export job
// @Tags exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} JobView "Export details"
// @Failure 400 {object} map[string]interface{} "Invalid export ID"
// @Failure 404 {object} map[string]interface{} "Export not found"
// @Router /exports/{id} [get]
func (h *ExportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "")
	if !ok {
		return
	}

	job, err := h.Jobs.GetJob(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Export not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch export", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, JobView{
		JobRecord: *job,
		Running:   h.running(jobID),
		Finished:  job.Status.Terminal(),
	})
}

// GetExportErrors returns the errors recorded for an export
// @Summary Get export errors
// @Description Retrieve every error recorded while the export ran
// @Tags exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} map[string]interface{} "Export errors"
// @Failure 400 {object} map[string]interface{} "Invalid export ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /exports/{id}/errors [get]
func (h *ExportHandler) GetExportErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/errors")
	if !ok {
		return
	}

	errs, err := h.Jobs.GetJobErrors(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"errors": errs,
		"count":  len(errs),
	})
}

// CancelExport stops a running export
// @Summary Stop export
// @Description Stop a running export. Nothing of a stopped export is published.
// @Tags exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} map[string]interface{} "Export stopping"
// @Failure 404 {object} map[string]interface{} "Export not found"
// @Failure 409 {object} map[string]interface{} "Export already finished"
// @Router /exports/{id} [delete]
func (h *ExportHandler) CancelExport(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "")
	if !ok {
		return
	}

	if h.Service.Cancel(jobID) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Export stopping",
			"job_id":  jobID,
		})
		return
	}

	job, err := h.Jobs.GetJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, "Export not found", http.StatusNotFound)
		return
	}
	if !job.Status.Terminal() {
		http.Error(w, "Export was interrupted while "+string(job.Status), http.StatusConflict)
		return
	}
	http.Error(w, "Export is already "+string(job.Status), http.StatusConflict)
}

func (h *ExportHandler) running(jobID string) bool {
	for _, id := range h.Service.Running() {
		if id == jobID {
			return true
		}
	}
	return false
}

// jobIDFromPath extracts the id from /api/v1/exports/{id}<suffix>.
func jobIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	path := r.URL.Path
	if !strings.HasPrefix(path, exportsPrefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}

	jobID := strings.TrimSuffix(path[len(exportsPrefix):], suffix)
	if jobID == "" || strings.Contains(jobID, "/") {
		http.Error(w, "Export ID is required", http.StatusBadRequest)
		return "", false
	}
	return jobID, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
