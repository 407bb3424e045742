package api

import (
	"net/http"

	service "github.com/okian/ekiden/internal/app"
	"github.com/okian/ekiden/pkg/logger"
)

// ProfileHandler serves the caller's profile.
type ProfileHandler struct {
	deps AccountDependencies
	log  logger.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps AccountDependencies, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{deps: deps, log: log}
}

type profileRequest struct {
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	BirthYear int    `json:"birth_year"`
}

// HandleGetProfile handles GET /api/profile requests.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	p, err := h.deps.Profile(r.Context(), MemberID(r.Context()))
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePutProfile handles PUT /api/profile requests.
func (h *ProfileHandler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_profile"
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(r.Context(), h.log, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.UpdateProfile(r.Context(), MemberID(r.Context()), service.ProfileInput{
		Name:      req.Name,
		Gender:    req.Gender,
		BirthYear: req.BirthYear,
	})
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
