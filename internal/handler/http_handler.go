package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/weiawesome/exa-people-search/internal/domain"
	"github.com/weiawesome/exa-people-search/internal/service"
	"github.com/weiawesome/exa-people-search/internal/sink"
	"github.com/weiawesome/exa-people-search/pkg/log"
	"github.com/weiawesome/exa-people-search/pkg/middleware"
	"github.com/weiawesome/exa-people-search/pkg/pubsub"
	"github.com/weiawesome/exa-people-search/pkg/response"
)

const maxInputBytes = 1 << 20

// RunResult is the body of a successful trigger.
type RunResult struct {
	RunID    string           `json:"runId"`
	Metadata *domain.Metadata `json:"metadata"`
}

// Handler handles HTTP requests for people search runs.
type Handler struct {
	searchService  service.PeopleSearchService
	datasets       sink.DatasetBackend
	keyValues      sink.KeyValueBackend
	publisher      pubsub.Publisher
	channel        string
	authMiddleware *middleware.AuthMiddleware
	newRunID       func() string
}

// NewHandler creates a new HTTP handler. Every run gets its own store id.
func NewHandler(
	searchService service.PeopleSearchService,
	backends *sink.Backends,
	publisher pubsub.Publisher,
	channel string,
	authMiddleware *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		searchService:  searchService,
		datasets:       backends.Dataset,
		keyValues:      backends.KeyValue,
		publisher:      publisher,
		channel:        channel,
		authMiddleware: authMiddleware,
		newRunID:       uuid.NewString,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		runs := api.Group("/people-search", h.authMiddleware.RequireAuth())
		{
			runs.POST("", h.RunSearch)
			runs.GET("/:runId/metadata", h.GetMetadata)
		}
	}
}

// RunSearch executes one people search with the request body as input.
func (h *Handler) RunSearch(c *gin.Context) {
	runID := h.newRunID()
	ctx := withCaller(log.WithRun(c.Request.Context(), runID, runID), c)
	l := log.Ctx(ctx)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInputBytes))
	if err != nil {
		l.Warn().Err(err).Msg("failed to read request body")
		response.BadRequest(c, "failed to read request body")
		return
	}

	var metadata *domain.Metadata
	in, err := domain.ParseInput(body)
	if err == nil {
		metadata, err = h.searchService.Run(ctx, in, h.datasets.Dataset(runID), h.keyValues.Store(runID))
	}

	// Publishing is best effort; the HTTP status carries the outcome.
	_ = service.PublishOutcome(ctx, h.publisher, h.channel, runID, metadata, err)

	if err != nil {
		l.Error().Err(err).Str("kind", domain.KindOf(err).String()).Msg("people search failed")
		writeRunError(c, err)
		return
	}

	response.Success(c, RunResult{RunID: runID, Metadata: metadata})
}

// GetMetadata returns the metadata record stored by a run.
func (h *Handler) GetMetadata(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	runID := c.Param("runId")
	data, err := h.keyValues.Store(runID).GetValue(ctx, domain.MetadataKey)
	if err != nil {
		if errors.Is(err, sink.ErrNotFound) {
			response.NotFound(c, "run metadata not found")
			return
		}
		l.Error().Err(err).Str(log.FieldRunID, runID).Msg("failed to read run metadata")
		response.InternalError(c, "failed to read run metadata")
		return
	}

	response.Success(c, data)
}

// withCaller adds the token subject and scope, when present, to the
// context logger.
func withCaller(ctx context.Context, c *gin.Context) context.Context {
	subject, scope := middleware.GetSubject(c), middleware.GetScope(c)
	if subject == "" && scope == "" {
		return ctx
	}
	l := log.Ctx(ctx)
	lc := l.With()
	if subject != "" {
		lc = lc.Str(log.FieldSubject, subject)
	}
	if scope != "" {
		lc = lc.Str(log.FieldScope, scope)
	}
	return log.WithLogger(ctx, lc.Logger())
}

func writeRunError(c *gin.Context, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		response.InternalError(c, "people search failed")
		return
	}
	switch derr.Kind {
	case domain.KindConfiguration:
		response.Error(c, http.StatusBadRequest, "CONFIGURATION_ERROR", derr.Message)
	case domain.KindUpstream:
		response.BadGateway(c, derr.Message)
	default:
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", derr.Message)
	}
}
