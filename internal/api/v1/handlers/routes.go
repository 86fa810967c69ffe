package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	authhandlers "github.com/hbs-1991/XM-Port-Tm-sub002/internal/api/v1/handlers/auth"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/api/v1/handlers/dashboard"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/api/v1/handlers/stream"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/api/v1/middleware"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/connections"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/services"
)

// NewRouter wires every gateway route. Everything under the session guard
// only ever sees an authenticated, refreshed session.
func NewRouter(svcs *services.Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RateLimit("global"))

	sessionService := svcs.GetSessionService()
	pipelineService := svcs.GetPipelineService()
	billingService := svcs.GetBillingService()
	streamManager := connections.NewManager(connections.DefaultTimeouts)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth screens: login is rate limited per IP, logout works with or
	// without a live session.
	api.Handle("/auth/login", middleware.RateLimit("auth_login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authhandlers.HandleLogin(sessionService, w, r)
	}))).Methods(http.MethodPost)

	api.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		authhandlers.HandleLogout(sessionService, w, r)
	}).Methods(http.MethodPost)

	// Everything below requires an authenticated session.
	guarded := api.NewRoute().Subrouter()
	guarded.Use(middleware.RequireSession(sessionService))

	guarded.HandleFunc("/auth/session", authhandlers.HandleSession).Methods(http.MethodGet)

	guarded.HandleFunc("/dashboard/metrics", func(w http.ResponseWriter, r *http.Request) {
		dashboard.HandleMetrics(pipelineService, w, r)
	}).Methods(http.MethodGet)

	guarded.HandleFunc("/processing/jobs", func(w http.ResponseWriter, r *http.Request) {
		dashboard.HandleJobs(pipelineService, w, r)
	}).Methods(http.MethodGet)

	guarded.HandleFunc("/processing/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		dashboard.HandleJob(pipelineService, w, r)
	}).Methods(http.MethodGet)

	guarded.HandleFunc("/processing/jobs/{id}/xml", func(w http.ResponseWriter, r *http.Request) {
		dashboard.HandleJobXML(pipelineService, w, r)
	}).Methods(http.MethodGet)

	guarded.HandleFunc("/credits/balance", func(w http.ResponseWriter, r *http.Request) {
		dashboard.HandleCredits(billingService, w, r)
	}).Methods(http.MethodGet)

	guarded.HandleFunc("/processing/stream", func(w http.ResponseWriter, r *http.Request) {
		stream.HandleJobStream(streamManager, pipelineService, w, r)
	}).Methods(http.MethodGet)

	return r
}
