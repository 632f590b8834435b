// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package api

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/friendrec/internal/jobs"
	"github.com/tomtom215/friendrec/internal/logging"
	"github.com/tomtom215/friendrec/internal/models"
	"github.com/tomtom215/friendrec/internal/validation"
)

// Multipart field names.
const (
	fieldBaseFile     = "base_file"
	fieldSecondary    = "secondary_file"
	fieldUseSecondary = "use_secondary_file"
	fieldN            = "N"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

const jobsPath = "/api/v1/jobs/"

// SubmitJob handles POST /api/v1/jobs.
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.config.MaxUploadBytes {
		respondError(w, r, http.StatusRequestEntityTooLarge, models.CodeTooLarge, "Upload exceeds the size limit", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			respondError(w, r, http.StatusRequestEntityTooLarge, models.CodeTooLarge, "Upload exceeds the size limit", nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, models.CodeBadMultipart, "Request must be multipart/form-data", nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req, verr, err := readSubmitRequest(r.MultipartForm)
	if err != nil {
		if isTooLarge(err) {
			respondError(w, r, http.StatusRequestEntityTooLarge, models.CodeTooLarge, "Upload exceeds the size limit", nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, models.CodeBadMultipart, "Failed to read upload", nil)
		return
	}
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}

	id, err := h.jobs.Submit(r.Context(), req)
	if err != nil {
		var perr *jobs.ParameterError
		switch {
		case errors.As(err, &perr):
			respondValidation(w, r, perr.Validation)
		case errors.Is(err, jobs.ErrQueueFull):
			w.Header().Set("Retry-After", "1")
			respondError(w, r, http.StatusServiceUnavailable, models.CodeQueueFull, "Job queue is full, retry later", nil)
		case errors.Is(err, jobs.ErrStoreUnavailable):
			respondStoreUnavailable(w, r)
		default:
			respondError(w, r, http.StatusInternalServerError, models.CodeInternal, "Failed to submit job", err)
		}
		return
	}

	logging.Ctx(logging.ContextWithJobID(r.Context(), id)).Info().
		Int("n", req.N).
		Bool("use_secondary_file", req.UseSecondary).
		Int("edges_bytes", len(req.Edges)).
		Msg("job submitted")

	w.Header().Set("Location", jobsPath+id)
	respondOK(w, r, http.StatusAccepted, models.SubmitResponse{
		JobID:     id,
		StatusURL: jobsPath + id,
	})
}

// readSubmitRequest converts the form into a SubmitRequest. Malformed
// scalar fields are reported as validation errors.
func readSubmitRequest(form *multipart.Form) (jobs.SubmitRequest, *validation.RequestValidationError, error) {
	var req jobs.SubmitRequest

	edges, err := formBytes(form, fieldBaseFile)
	if err != nil {
		return req, nil, err
	}
	demographics, err := formBytes(form, fieldSecondary)
	if err != nil {
		return req, nil, err
	}
	req.Edges = edges
	req.Demographics = demographics

	if raw := formValue(form, fieldUseSecondary); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return req, validation.NewRequestValidationError(fieldUseSecondary, "boolean", "", raw,
				"use_secondary_file must be true or false"), nil
		}
		req.UseSecondary = b
	}

	req.N = 1
	if raw := formValue(form, fieldN); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, validation.NewRequestValidationError(fieldN, "number", "", raw,
				"N must be an integer"), nil
		}
		req.N = n
	}
	return req, nil, nil
}

// formBytes returns the named upload, or the plain field value when the
// client sent text instead of a file. Missing fields yield nil.
func formBytes(form *multipart.Form, name string) ([]byte, error) {
	if files := form.File[name]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return io.ReadAll(f)
	}
	if v := form.Value[name]; len(v) > 0 && v[0] != "" {
		return []byte(v[0]), nil
	}
	return nil, nil
}

func formValue(form *multipart.Form, name string) string {
	if v := form.Value[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || errors.Is(err, multipart.ErrMessageTooLarge)
}

// ListJobs handles GET /api/v1/jobs. The optional state query parameter
// filters by state.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var filter jobs.State
	if raw := r.URL.Query().Get("state"); raw != "" {
		filter = jobs.State(strings.ToLower(raw))
		if !filter.Valid() {
			respondError(w, r, http.StatusBadRequest, models.CodeBadQuery,
				"state must be one of pending, running, completed, failed", nil)
			return
		}
	}

	snaps := h.jobs.List()
	list := models.JobList{
		Jobs:    make([]models.JobStatus, 0, len(snaps)),
		ByState: make(map[string]int, 4),
	}
	for _, s := range snaps {
		list.ByState[string(s.State)]++
		if filter != "" && s.State != filter {
			continue
		}
		list.Jobs = append(list.Jobs, toJobStatus(s))
	}
	list.Count = len(list.Jobs)

	respondOK(w, r, http.StatusOK, list)
}

// GetJob handles GET /api/v1/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.jobs.Status(id)
	if err != nil {
		h.respondJobError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, toJobStatus(snap))
}

// GetResult handles GET /api/v1/jobs/{id}/result.
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.jobs.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondJobError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, artifact)
}

// DownloadResult handles GET /api/v1/jobs/{id}/download. The body is the
// text form, one "user candidate, score" line per recommendation.
func (h *Handler) DownloadResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	artifact, err := h.jobs.Result(r.Context(), id)
	if err != nil {
		h.respondJobError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := artifact.WriteText(&buf); err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeInternal, "Failed to render result", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="recommendations-`+id+`.txt"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("download interrupted")
	}
}

// respondJobError maps engine errors onto HTTP statuses.
func (h *Handler) respondJobError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Job not found", nil)
	case errors.Is(err, jobs.ErrNotReady):
		respondError(w, r, http.StatusConflict, models.CodeNotReady, err.Error(), nil)
	case errors.Is(err, jobs.ErrStoreUnavailable):
		respondStoreUnavailable(w, r)
	default:
		respondError(w, r, http.StatusInternalServerError, models.CodeInternal, "Failed to load job", err)
	}
}

func respondStoreUnavailable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "30")
	respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "Artifact store is unavailable, retry later", nil)
}

// toJobStatus converts a snapshot into its public form.
func toJobStatus(s jobs.Snapshot) models.JobStatus {
	st := models.JobStatus{
		JobID:        s.ID,
		State:        string(s.State),
		N:            s.N,
		UseSecondary: s.UseSecondary,
		CreatedAt:    s.CreatedAt,
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
	}
	if s.Error != nil {
		st.Error = &models.JobError{Kind: string(s.Error.Kind), Message: s.Error.Message}
	}
	if s.Stats != nil {
		st.Stats = &models.JobStats{
			Users:           s.Stats.Users,
			Edges:           s.Stats.Edges,
			Shards:          s.Stats.Shards,
			Recommendations: s.Stats.Recommendations,
			Weighting:       s.Stats.Weighting,
			DurationMS:      s.Stats.Duration.Milliseconds(),
		}
	}
	if s.State == jobs.StateCompleted {
		st.ResultURL = jobsPath + s.ID + "/result"
		st.DownloadURL = jobsPath + s.ID + "/download"
	}
	return st
}
