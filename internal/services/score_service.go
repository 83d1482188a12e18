package services

import (
	"context"
	"log/slog"

	"tokenrisk/internal/olrs"
)

// ScoreResult is an OLRS score with the components and weights it was built from
type ScoreResult struct {
	OLRS       float64         `json:"olrs"`
	Components olrs.Components `json:"components"`
	Weights    olrs.Weights    `json:"weights"`
}

// ScoreService computes OLRS scores on demand
type ScoreService struct {
	weights olrs.Weights
	logger  *slog.Logger
}

// NewScoreService creates a score service using the default weights
func NewScoreService(logger *slog.Logger) *ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{
		weights: olrs.DefaultWeights(),
		logger:  logger.With("component", "score"),
	}
}

// Score validates in and returns its score breakdown.
// A non-finite input yields an *olrs.ValidationError.
func (s *ScoreService) Score(ctx context.Context, in olrs.Inputs) (ScoreResult, error) {
	if err := olrs.Validate(in); err != nil {
		s.logger.DebugContext(ctx, "Rejected score inputs", slog.String("error", err.Error()))
		return ScoreResult{}, err
	}

	components := olrs.Breakdown(in)
	result := ScoreResult{
		OLRS:       olrs.Round(s.weights.Blend(components)),
		Components: components,
		Weights:    s.weights,
	}

	s.logger.DebugContext(ctx, "Computed score",
		slog.Float64("avg_health", in.AvgHealth),
		slog.Float64("olrs", result.OLRS))
	return result, nil
}
