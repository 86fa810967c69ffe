package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/api/v1/middleware"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/config"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/billing"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/pipeline"
	"github.com/hbs-1991/XM-Port-Tm-sub002/pkg/httpext"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// HandleMetrics serves the dashboard metric cards.
func HandleMetrics(pipelineService *pipeline.Service, w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)

	metrics, err := pipelineService.GetMetrics(r.Context(), sess.AccessToken)
	if err != nil {
		writeUpstreamError(w, err, "Failed to fetch dashboard metrics")
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// HandleJobs serves one page of the job-history table.
func HandleJobs(pipelineService *pipeline.Service, w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)

	page := parseQueryInt(r, "page", defaultPage)
	limit := parseQueryInt(r, "limit", defaultLimit)
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}

	jobs, err := pipelineService.ListJobs(r.Context(), sess.AccessToken, page, limit)
	if err != nil {
		writeUpstreamError(w, err, "Failed to fetch job history")
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// HandleJob serves a single job with its extracted line items.
func HandleJob(pipelineService *pipeline.Service, w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	jobID := mux.Vars(r)["id"]

	detail, err := pipelineService.GetJob(r.Context(), sess.AccessToken, jobID)
	if err != nil {
		writeUpstreamError(w, err, "Failed to fetch job")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// HandleJobXML streams a completed job's generated XML document to the browser.
func HandleJobXML(pipelineService *pipeline.Service, w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	jobID := mux.Vars(r)["id"]

	body, err := pipelineService.GetJobXML(r.Context(), sess.AccessToken, jobID)
	if err != nil {
		writeUpstreamError(w, err, "Failed to fetch job XML")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+jobID+`.xml"`)
	if _, err := io.Copy(w, body); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to stream job XML")
	}
}

// HandleCredits serves the credit-balance widget.
func HandleCredits(billingService *billing.Service, w http.ResponseWriter, r *http.Request) {
	if billingService == nil {
		httpext.JsonError(w, "Credit balance unavailable", http.StatusServiceUnavailable)
		return
	}

	sess := middleware.GetSession(r)

	balance, err := billingService.GetBalance(r.Context(), sess.AccessToken)
	if err != nil {
		if errors.Is(err, billing.ErrUnauthorized) {
			writeUnauthenticated(w)
			return
		}
		log.Error().Err(err).Msg("Failed to fetch credit balance")
		httpext.JsonError(w, "Credit balance unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

// writeUpstreamError folds pipeline errors into the UI contract: token
// rejections become the binary unauthenticated signal, unknown jobs become a
// 404, everything else a 502. Raw upstream status codes never pass through.
func writeUpstreamError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, pipeline.ErrUnauthorized):
		writeUnauthenticated(w)
	case errors.Is(err, pipeline.ErrJobNotFound):
		httpext.JsonError(w, "Job not found", http.StatusNotFound)
	default:
		log.Error().Err(err).Msg(logMsg)
		httpext.JsonError(w, "Upstream service unavailable", http.StatusBadGateway)
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	httpext.JsonErrorWithDetails(w, http.StatusUnauthorized, httpext.ErrorResponse{
		Error:            "unauthenticated",
		ErrorDescription: "Session is missing or expired",
		RedirectTo:       config.GetLoginRedirect(),
	})
}

func parseQueryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
