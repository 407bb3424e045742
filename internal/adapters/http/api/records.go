package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	service "github.com/okian/ekiden/internal/app"
	"github.com/okian/ekiden/internal/domain/duration"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/internal/domain/view"
	"github.com/okian/ekiden/pkg/logger"
)

// IdempotencyHeader carries an optional client submission key.
const IdempotencyHeader = "Idempotency-Key"

// RecordDependencies defines the result operations used by handlers.
type RecordDependencies interface {
	SubmitResult(ctx context.Context, memberID, idempotencyKey string, sub service.Submission) (model.RaceResult, bool, error)
	ImportResults(ctx context.Context, memberID string, r io.Reader) (service.ImportReport, error)
	UpdateResult(ctx context.Context, memberID, id string, edit service.Edit) (model.RaceResult, error)
	DeleteResult(ctx context.Context, memberID, id string) error
	MyResults(ctx context.Context, memberID string, spec view.Spec) ([]model.RaceResult, error)
	LatestResults(ctx context.Context, spec view.Spec) ([]model.RaceResult, error)
}

// RecordsHandler handles result submission and editing.
type RecordsHandler struct {
	deps           RecordDependencies
	log            logger.Logger
	limits         limits
	maxImportBytes int64
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies, log logger.Logger, lim limits, maxImportBytes int64) *RecordsHandler {
	return &RecordsHandler{deps: deps, log: log, limits: lim, maxImportBytes: maxImportBytes}
}

// recordRequest mirrors the OpenAPI schema for POST /api/records.
type recordRequest struct {
	Time     string  `json:"time"`
	Distance float64 `json:"distance"`
	RaceName string  `json:"race_name"`
	RaceType string  `json:"race_type"`
	Date     string  `json:"date"`
	Comment  string  `json:"comment"`
}

// patchRequest mirrors the OpenAPI schema for PATCH /api/records/{id}.
type patchRequest struct {
	Time     *string  `json:"time"`
	Distance *float64 `json:"distance"`
	RaceName *string  `json:"race_name"`
	RaceType *string  `json:"race_type"`
	Date     *string  `json:"date"`
	Comment  *string  `json:"comment"`
}

// HandleCreate handles POST /api/records requests.
func (h *RecordsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_record"
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(r.Context(), h.log, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	rec, dup, err := h.deps.SubmitResult(r.Context(), MemberID(r.Context()), key, service.Submission{
		Time:     req.Time,
		Distance: req.Distance,
		RaceName: req.RaceName,
		RaceType: req.RaceType,
		Date:     req.Date,
		Comment:  req.Comment,
	})
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusCreated, toRecord(rec, duration.Full))
}

// HandleImport handles POST /api/records/import requests. The body is the
// plain-text bulk format.
func (h *RecordsHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import_records"
	body := http.MaxBytesReader(w, r.Body, h.maxImportBytes)
	report, err := h.deps.ImportResults(r.Context(), MemberID(r.Context()), body)
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleMine handles GET /api/records/mine requests.
func (h *RecordsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	const op = "api.my_records"
	spec, err := parseSpec(r.URL.Query(), limits{max: h.limits.max})
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	rows, err := h.deps.MyResults(r.Context(), MemberID(r.Context()), spec)
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toRecords(rows, duration.Full, false))
}

// HandleLatest handles GET /api/records/latest requests.
func (h *RecordsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.latest_records"
	spec, err := parseSpec(r.URL.Query(), h.limits)
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	rows, err := h.deps.LatestResults(r.Context(), spec)
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toRecords(rows, duration.Full, false))
}

// HandlePatch handles PATCH /api/records/{id} requests.
func (h *RecordsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_record"
	var req patchRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(r.Context(), h.log, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, err := h.deps.UpdateResult(r.Context(), MemberID(r.Context()), mux.Vars(r)["id"], service.Edit{
		Time:     req.Time,
		Distance: req.Distance,
		RaceName: req.RaceName,
		RaceType: req.RaceType,
		Date:     req.Date,
		Comment:  req.Comment,
	})
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toRecord(rec, duration.Full))
}

// HandleDelete handles DELETE /api/records/{id} requests.
func (h *RecordsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_record"
	if err := h.deps.DeleteResult(r.Context(), MemberID(r.Context()), mux.Vars(r)["id"]); err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
