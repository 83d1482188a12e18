package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "tokenrisk/internal/errors"
	"tokenrisk/internal/infrastructure"
	"tokenrisk/internal/middleware"
	"tokenrisk/internal/olrs"
	"tokenrisk/internal/services"
	api "tokenrisk/pkg/contracts/api/v1"
)

// ScoreHandler handles on-demand OLRS scoring
type ScoreHandler struct {
	service      *services.ScoreService
	validator    *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(service *services.ScoreService, validator *middleware.ValidationMiddleware,
	errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "score")),
	}
}

// Score handles POST /api/v1/olrs
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ScoreRequest
	if !h.validator.DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Score(ctx, olrs.Inputs{
		AvgHealth:    *req.AvgHealth,
		Volatility:   *req.Volatility,
		Volume:       *req.Volume,
		MarketCapADA: *req.MarketCapADA,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "Scored request",
		slog.Float64("olrs", result.OLRS))

	render.JSON(w, r, toScoreResponse(result, infrastructure.GetTraceID(ctx)))
}

func toScoreResponse(result services.ScoreResult, traceID string) api.ScoreResponse {
	return api.ScoreResponse{
		OLRS: result.OLRS,
		Components: api.ScoreComponents{
			Health:     result.Components.Health,
			Volatility: result.Components.Volatility,
			Liquidity:  result.Components.Liquidity,
			MarketCap:  result.Components.MarketCap,
		},
		Weights: api.ScoreWeights{
			Health:     result.Weights.Health,
			Volatility: result.Weights.Volatility,
			Liquidity:  result.Weights.Liquidity,
			MarketCap:  result.Weights.MarketCap,
		},
		TraceID: traceID,
	}
}
