package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"courtline/internal/config"
	"courtline/internal/database"
	"courtline/internal/domain"
	"courtline/internal/export"
	"courtline/internal/metrics"
	"courtline/internal/models"
	"courtline/internal/service"
	"courtline/internal/tenant"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Identity headers set by the edge after credential verification. The
// engine trusts them once the API key checks out.
const (
	headerIdentityID = "X-Identity-Id"
	headerOrgID      = "X-Org-Id"
)

// Server is the JSON HTTP surface of the engine. Every request resolves a
// Caller from the identity headers before touching a service.
type Server struct {
	cfg      config.APIConfig
	resolver *tenant.Resolver

	bookings     domain.BookingService
	availability domain.AvailabilityService
	tracker      domain.TrackerService
	profiles     domain.ProfileService
	exporter     *export.ScheduleExporter

	logger *zerolog.Logger
	server *http.Server
}

func NewServer(
	cfg config.APIConfig,
	resolver *tenant.Resolver,
	bookings domain.BookingService,
	availability domain.AvailabilityService,
	tracker domain.TrackerService,
	profiles domain.ProfileService,
	exporter *export.ScheduleExporter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:          cfg,
		resolver:     resolver,
		bookings:     bookings,
		availability: availability,
		tracker:      tracker,
		profiles:     profiles,
		exporter:     exporter,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/bookings", s.withCaller(s.handleCreateBooking))
	mux.HandleFunc("GET /api/v1/bookings", s.withCaller(s.handleListBookings))
	mux.HandleFunc("GET /api/v1/bookings/{id}", s.withCaller(s.handleGetBooking))
	mux.HandleFunc("POST /api/v1/bookings/{id}/status", s.withCaller(s.handleTransitionBooking))
	mux.HandleFunc("POST /api/v1/bookings/{id}/reschedule", s.withCaller(s.handleRescheduleBooking))
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", s.withCaller(s.handleDeleteBooking))
	mux.HandleFunc("POST /api/v1/bookings/{id}/attendance", s.withCaller(s.handleRecordAttendance))

	mux.HandleFunc("GET /api/v1/attendance", s.withCaller(s.handleListAttendance))

	mux.HandleFunc("POST /api/v1/profiles", s.withCaller(s.handleCreateProfile))
	mux.HandleFunc("GET /api/v1/profiles", s.withCaller(s.handleListProfiles))
	mux.HandleFunc("GET /api/v1/profiles/{id}", s.withCaller(s.handleGetProfile))
	mux.HandleFunc("PUT /api/v1/profiles/{id}", s.withCaller(s.handleUpdateProfile))
	mux.HandleFunc("DELETE /api/v1/profiles/{id}", s.withCaller(s.handleDeleteProfile))

	mux.HandleFunc("PUT /api/v1/profiles/{id}/availability", s.withCaller(s.handleSetAvailability))
	mux.HandleFunc("GET /api/v1/profiles/{id}/availability", s.withCaller(s.handleListAvailability))

	mux.HandleFunc("POST /api/v1/profiles/{id}/progress", s.withCaller(s.handleAddProgress))
	mux.HandleFunc("GET /api/v1/profiles/{id}/progress", s.withCaller(s.handleListProgress))
	mux.HandleFunc("DELETE /api/v1/progress/{id}", s.withCaller(s.handleDeleteProgress))

	mux.HandleFunc("GET /api/v1/schedule/export", s.withCaller(s.handleExportSchedule))

	handler := s.loggingMiddleware(NewAuth(cfg).Wrap(mux))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the assembled handler chain, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCaller resolves the tenant context and hands the Caller to the
// wrapped handler. Requests without a resolvable caller never reach a
// service.
func (s *Server) withCaller(next func(http.ResponseWriter, *http.Request, *models.Caller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := tenant.Identity{
			ID:             r.Header.Get(headerIdentityID),
			OrganizationID: r.Header.Get(headerOrgID),
		}
		caller, err := s.resolver.Resolve(r.Context(), identity)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		metrics.IncHTTP(r.Pattern)
		next(w, r, caller)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// writeServiceError maps the error taxonomy onto HTTP statuses. Not-found
// answers are identical for missing and foreign entities.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenant.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, tenant.ErrNoActiveOrganization),
		errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrCoachConflict),
		errors.Is(err, database.ErrCourtConflict),
		errors.Is(err, database.ErrConcurrentModification),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrBookingNotConfirmed),
		errors.Is(err, service.ErrProfileHasBookings):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrOutsideAvailability),
		errors.Is(err, service.ErrCrossTenantReference):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrDateTooFar),
		errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrOverlappingWindows),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidType):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
