// Package api exposes the activity directory over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/common/validation"
	"activity-signup/internal/directory"
	"activity-signup/internal/models"
	"activity-signup/internal/notify"
)

const (
	opSignup     = "signup"
	opUnregister = "unregister"
)

// Roster is the directory behaviour the handlers depend on.
type Roster interface {
	ListActivities() *models.Listing
	SignUp(activityName, email string) (*directory.Registration, error)
	Unregister(activityName, email string) (*directory.Registration, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Options configures a Handler.
type Options struct {
	Roster     Roster
	Dispatcher *notify.Dispatcher
	Logger     logger.Logger
	// IndexPath is where GET / redirects.
	IndexPath string
	// StaticDir is served under /static/ when set.
	StaticDir string
	Readiness map[string]ReadinessCheck
}

// Handler coordinates HTTP requests with the directory.
type Handler struct {
	roster     Roster
	dispatcher *notify.Dispatcher
	errors     *apperrors.ErrorHandler
	logger     logger.Logger
	indexPath  string
	staticDir  string
	readiness  map[string]ReadinessCheck
}

// MessageResponse is the body of a successful roster change.
type MessageResponse struct {
	Message string `json:"message"`
}

func NewHandler(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = notify.NewDispatcher(0, log)
	}
	indexPath := opts.IndexPath
	if indexPath == "" {
		indexPath = "/static/index.html"
	}

	h := &Handler{
		roster:     opts.Roster,
		dispatcher: dispatcher,
		errors:     apperrors.NewErrorHandler(log),
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
		indexPath:  indexPath,
		staticDir:  opts.StaticDir,
		readiness:  opts.Readiness,
	}
	h.recordRosterSizes()
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("POST /activities/{activity}/signup", h.signup)
	mux.HandleFunc("DELETE /activities/{activity}/unregister", h.unregister)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /ready", h.ready)

	// Method-less patterns catch what the method-specific ones above do not.
	mux.HandleFunc("/{$}", h.methodNotAllowed(http.MethodGet, http.MethodHead))
	mux.HandleFunc("/activities", h.methodNotAllowed(http.MethodGet, http.MethodHead))
	mux.HandleFunc("/activities/{activity}/signup", h.methodNotAllowed(http.MethodPost))
	mux.HandleFunc("/activities/{activity}/unregister", h.methodNotAllowed(http.MethodDelete))
	mux.HandleFunc("/health", h.methodNotAllowed(http.MethodGet, http.MethodHead))
	mux.HandleFunc("/ready", h.methodNotAllowed(http.MethodGet, http.MethodHead))

	if h.staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir))))
	}
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.indexPath, http.StatusTemporaryRedirect)
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, h.roster.ListActivities())
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	activity := r.PathValue("activity")
	email, ok := validation.RequiredQueryParam(r.URL.Query(), "email")
	if !ok {
		h.fail(w, r, opSignup, apperrors.NewMissingParameterError("email"))
		return
	}

	reg, err := h.roster.SignUp(activity, email)
	if err != nil {
		h.fail(w, r, opSignup, toStandardError(err, activity, email))
		return
	}

	metrics.SignupsTotal.WithLabelValues(activity).Inc()
	metrics.ActivityParticipants.WithLabelValues(activity).Set(float64(reg.ParticipantCount))
	h.logger.Info("Participant signed up", map[string]interface{}{
		"activity":         activity,
		"email":            email,
		"participantCount": reg.ParticipantCount,
		"requestId":        RequestIDFromContext(r.Context()),
	})

	apperrors.WriteJSON(w, http.StatusOK, MessageResponse{Message: reg.Message})
	h.dispatcher.Go(r.Context(), notify.NewEvent(models.RosterEventSignup, activity, email, reg.ParticipantCount))
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	activity := r.PathValue("activity")
	email, ok := validation.RequiredQueryParam(r.URL.Query(), "email")
	if !ok {
		h.fail(w, r, opUnregister, apperrors.NewMissingParameterError("email"))
		return
	}

	reg, err := h.roster.Unregister(activity, email)
	if err != nil {
		h.fail(w, r, opUnregister, toStandardError(err, activity, email))
		return
	}

	metrics.UnregistrationsTotal.WithLabelValues(activity).Inc()
	metrics.ActivityParticipants.WithLabelValues(activity).Set(float64(reg.ParticipantCount))
	h.logger.Info("Participant unregistered", map[string]interface{}{
		"activity":         activity,
		"email":            email,
		"participantCount": reg.ParticipantCount,
		"requestId":        RequestIDFromContext(r.Context()),
	})

	apperrors.WriteJSON(w, http.StatusOK, MessageResponse{Message: reg.Message})
	h.dispatcher.Go(r.Context(), notify.NewEvent(models.RosterEventUnregister, activity, email, reg.ParticipantCount))
}

// health reports liveness for container health checks.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"activities": h.roster.ListActivities().Len(),
	})
}

// ready runs every readiness check; any failure yields 503.
func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.readiness))
	status := http.StatusOK
	for name, check := range h.readiness {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	apperrors.WriteJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}

func (h *Handler) methodNotAllowed(allowed ...string) http.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		h.errors.HandleRequestError(w, r, apperrors.NewMethodNotAllowedError(r.Method, r.URL.Path))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	stdErr := h.errors.HandleRequestError(w, r, err)
	metrics.RosterFailuresTotal.WithLabelValues(operation, string(stdErr.Code)).Inc()
}

func (h *Handler) recordRosterSizes() {
	if h.roster == nil {
		return
	}
	listing := h.roster.ListActivities()
	for _, name := range listing.Names() {
		details, _ := listing.Get(name)
		metrics.ActivityParticipants.WithLabelValues(name).Set(float64(len(details.Participants)))
	}
}

// toStandardError maps directory sentinels onto the client-facing taxonomy.
func toStandardError(err error, activity, email string) error {
	switch {
	case errors.Is(err, directory.ErrActivityNotFound):
		return apperrors.NewActivityNotFoundError(activity)
	case errors.Is(err, directory.ErrAlreadyRegistered):
		return apperrors.NewAlreadyRegisteredError(activity, email)
	case errors.Is(err, directory.ErrNotRegistered):
		return apperrors.NewNotRegisteredError(activity, email)
	default:
		return err
	}
}
