// Package server wires the card endpoints onto a chi router. Every
// user-facing failure is delivered as HTTP 200 with an error card (or a
// JSON error envelope in JSON mode); status codes never carry errors.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/statscard/statscard/internal/apperr"
	"github.com/statscard/statscard/internal/card"
	"github.com/statscard/statscard/internal/domain"
	"github.com/statscard/statscard/internal/gateway"
	"github.com/statscard/statscard/internal/sl"
)

type statsProvider interface {
	RepoStats(ctx context.Context, rawRepo string) (*domain.RepoStats, error)
	UserStats(ctx context.Context, username string, includeAllCommits bool) (*domain.UserStats, error)
}

type patChecker interface {
	Check(ctx context.Context) (*gateway.PATInfo, error)
}

// ErrorResponse is the JSON error envelope used when format=json.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message          string `json:"message"`
	SecondaryMessage string `json:"secondaryMessage,omitempty"`
}

// Handler holds the dependencies of the card endpoints.
type Handler struct {
	log          *slog.Logger
	service      statsProvider
	pats         patChecker
	defaultCache int
}

// NewHandler creates the endpoint handler set.
func NewHandler(log *slog.Logger, service statsProvider, pats patChecker, defaultCacheSeconds int) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		pats:         pats,
		defaultCache: defaultCacheSeconds,
	}
}

// Pin serves GET /api/pin?repo=owner/name&cache_seconds=&format=.
func (h *Handler) Pin(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.Pin"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	repo := r.URL.Query().Get("repo")
	stats, err := h.service.RepoStats(r.Context(), repo)
	if err != nil {
		h.renderError(log, w, r, err)
		return
	}

	h.setCacheHeader(w, r)
	if jsonRequested(r) {
		render.JSON(w, r, stats)
		return
	}
	writeSVG(w, card.RenderRepoCard(stats))
}

// Stats serves GET /api/stats?username=&include_all_commits=&cache_seconds=&format=.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.Stats"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := r.URL.Query().Get("username")
	includeAllCommits := r.URL.Query().Get("include_all_commits") == "true"

	stats, err := h.service.UserStats(r.Context(), username, includeAllCommits)
	if err != nil {
		h.renderError(log, w, r, err)
		return
	}

	h.setCacheHeader(w, r)
	if jsonRequested(r) {
		render.JSON(w, r, stats)
		return
	}
	writeSVG(w, card.RenderStatsCard(stats))
}

// PATInfo serves GET /api/status/pat-info. Always JSON, never cached.
func (h *Handler) PATInfo(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.PATInfo"

	info, err := h.pats.Check(r.Context())
	if err != nil {
		h.log.Error("pat info check failed", slog.String("op", op), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: ErrorDetail{Message: "failed to check tokens"}})
		return
	}

	w.Header().Set("Cache-Control", noCacheValue)
	render.JSON(w, r, info)
}

// Healthcheck serves GET /health.
func Healthcheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// renderError converts any failure into a 200 response carrying the error
// card, or the JSON envelope when the caller asked for JSON. Errors are
// never cached.
func (h *Handler) renderError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	log.Error("request failed", sl.Err(err))

	w.Header().Set("Cache-Control", noCacheValue)
	if jsonRequested(r) {
		render.JSON(w, r, ErrorResponse{Error: ErrorDetail{
			Message:          appErr.Message,
			SecondaryMessage: appErr.SecondaryMessage,
		}})
		return
	}
	writeSVG(w, card.RenderError(appErr.Message, appErr.SecondaryMessage))
}

func (h *Handler) setCacheHeader(w http.ResponseWriter, r *http.Request) {
	seconds := clampCacheSeconds(r.URL.Query().Get("cache_seconds"), h.defaultCache)
	w.Header().Set("Cache-Control", cacheHeaderValue(seconds))
}

func jsonRequested(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json"
}

func writeSVG(w http.ResponseWriter, svg string) {
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}
