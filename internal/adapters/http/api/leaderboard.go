package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/ekiden/internal/adapters/export"
	"github.com/okian/ekiden/internal/domain/duration"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/view"
	"github.com/okian/ekiden/pkg/logger"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, spec view.Spec) ([]model.RaceResult, error)
	ExportLeaderboard(ctx context.Context, spec view.Spec, w io.Writer) error
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps   LeaderboardDependencies
	log    logger.Logger
	limits limits
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, log logger.Logger, lim limits) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, log: log, limits: lim}
}

type leaderboardResponse struct {
	Bucket string           `json:"bucket"`
	Label  string           `json:"label"`
	Mode   string           `json:"mode"`
	Sort   string           `json:"sort"`
	Dir    string           `json:"dir"`
	Rows   []recordResponse `json:"rows"`
}

// HandleGetLeaderboard handles GET /api/leaderboard requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	spec, err := parseSpec(r.URL.Query(), h.limits)
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	rows, err := h.deps.Leaderboard(r.Context(), spec)
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	dir := "asc"
	if spec.Desc {
		dir = "desc"
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Bucket: spec.Bucket.String(),
		Label:  spec.Bucket.Label(),
		Mode:   spec.Mode.String(),
		Sort:   string(spec.SortKey),
		Dir:    dir,
		Rows:   toRecords(rows, duration.Compact, true),
	})
}

// HandleExport handles GET /api/leaderboard/export.xlsx requests.
func (h *LeaderboardHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_leaderboard"
	spec, err := parseSpec(r.URL.Query(), h.limits)
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	var buf bytes.Buffer
	if err := h.deps.ExportLeaderboard(r.Context(), spec, &buf); err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(spec.Bucket.String(), spec.Mode.String()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
