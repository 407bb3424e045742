// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/pkg/logger"
)

const (
	defaultLeaderboardLimit = 100
	defaultMaxLimit         = 1000
	defaultMaxImportBytes   = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AccountDependencies
	RecordDependencies
	LeaderboardDependencies
	TokenValidator
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	authHandler        *AuthHandler
	profileHandler     *ProfileHandler
	recordsHandler     *RecordsHandler
	leaderboardHandler *LeaderboardHandler
	tokens             TokenValidator

	log            logger.Logger
	defaultLimit   int
	maxLimit       int
	maxImportBytes int64
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLimits sets the default and maximum row counts of list endpoints.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Server) {
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
	}
}

// WithMaxImportBytes caps the size of an import upload.
func WithMaxImportBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxImportBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		tokens:         deps,
		defaultLimit:   defaultLeaderboardLimit,
		maxLimit:       defaultMaxLimit,
		maxImportBytes: defaultMaxImportBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	log := s.log.Named("api")
	lim := limits{def: s.defaultLimit, max: s.maxLimit}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.authHandler = NewAuthHandler(deps, log)
	s.profileHandler = NewProfileHandler(deps, log)
	s.recordsHandler = NewRecordsHandler(deps, log, lim, s.maxImportBytes)
	s.leaderboardHandler = NewLeaderboardHandler(deps, log, lim)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/api/", s.Routes())
}

// Routes returns the /api router.
func (s *Server) Routes() http.Handler {
	root := mux.NewRouter()
	r := root.PathPrefix("/api").Subrouter()
	r.Use(LoggingMiddleware(s.log.Named("http")))

	// Public routes
	r.HandleFunc("/auth/register", MetricsMiddleware(s.authHandler.HandleRegister, "auth_register")).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", MetricsMiddleware(s.authHandler.HandleLogin, "auth_login")).Methods(http.MethodPost)
	r.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard")).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/export.xlsx", MetricsMiddleware(s.leaderboardHandler.HandleExport, "leaderboard_export")).Methods(http.MethodGet)
	r.HandleFunc("/records/latest", MetricsMiddleware(s.recordsHandler.HandleLatest, "records_latest")).Methods(http.MethodGet)

	// Member routes
	m := r.NewRoute().Subrouter()
	m.Use(RequireAuth(s.tokens))
	m.HandleFunc("/profile", MetricsMiddleware(s.profileHandler.HandleGetProfile, "profile_get")).Methods(http.MethodGet)
	m.HandleFunc("/profile", MetricsMiddleware(s.profileHandler.HandlePutProfile, "profile_put")).Methods(http.MethodPut)
	m.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleCreate, "records_create")).Methods(http.MethodPost)
	m.HandleFunc("/records/import", MetricsMiddleware(s.recordsHandler.HandleImport, "records_import")).Methods(http.MethodPost)
	m.HandleFunc("/records/mine", MetricsMiddleware(s.recordsHandler.HandleMine, "records_mine")).Methods(http.MethodGet)
	m.HandleFunc("/records/{id}", MetricsMiddleware(s.recordsHandler.HandlePatch, "records_patch")).Methods(http.MethodPatch)
	m.HandleFunc("/records/{id}", MetricsMiddleware(s.recordsHandler.HandleDelete, "records_delete")).Methods(http.MethodDelete)

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	return root
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Fields  []model.FieldError `json:"fields,omitempty"`
}

// writeJSON encodes v before the status line is sent, so a value that
// cannot be encoded becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("encode response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

// fail classifies err, logs it and writes the error response.
func fail(ctx context.Context, log logger.Logger, w http.ResponseWriter, err error) {
	status, code := classify(err)
	fields := []logger.Field{
		logger.Int("status", status),
		logger.String("code", code),
		logger.Error(err),
	}
	if id := MemberID(ctx); id != "" {
		fields = append(fields, logger.String("member_id", id))
	}
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", fields...)
	} else {
		log.Debug(ctx, "request rejected", fields...)
	}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		// Internal details stay in the log.
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
