package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tokenrisk/internal/config"
	apierrors "tokenrisk/internal/errors"
	"tokenrisk/internal/middleware"
	api "tokenrisk/pkg/contracts/api/v1"
)

// TokenHandler exposes the configured token table
type TokenHandler struct {
	tokens       config.TokenTable
	validator    *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokens config.TokenTable, validator *middleware.ValidationMiddleware,
	errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokens:       tokens,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "tokens")),
	}
}

// Routes sets up the token routes
func (h *TokenHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{symbol}", h.Get)
	return r
}

// List handles GET /api/v1/tokens
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	symbols := h.tokens.Symbols()
	resp := api.TokenListResponse{
		Tokens: make([]api.TokenResponse, 0, len(symbols)),
		Count:  len(symbols),
	}
	for _, symbol := range symbols {
		unit, err := h.tokens.Lookup(symbol)
		if err != nil {
			continue
		}
		resp.Tokens = append(resp.Tokens, api.TokenResponse{Symbol: symbol, Unit: unit})
	}
	resp.Count = len(resp.Tokens)
	render.JSON(w, r, resp)
}

// Get handles GET /api/v1/tokens/{symbol}
func (h *TokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	req := api.TokenRequest{Symbol: strings.ToUpper(chi.URLParam(r, "symbol"))}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	unit, err := h.tokens.Lookup(req.Symbol)
	if errors.Is(err, config.ErrUnknownToken) {
		h.logger.DebugContext(r.Context(), "Unknown token requested",
			slog.String("symbol", req.Symbol))
		h.errorHandler.HandleError(w, r, apierrors.UnknownTokenError(req.Symbol))
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.TokenResponse{Symbol: req.Symbol, Unit: unit})
}
