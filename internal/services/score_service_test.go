package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenrisk/internal/olrs"
)

func TestScoreService(t *testing.T) {
	svc := NewScoreService(nil)

	t.Run("end to end inputs", func(t *testing.T) {
		result, err := svc.Score(context.Background(), olrs.Inputs{
			AvgHealth:    3,
			Volatility:   (2.0 - 1.8) / 1.8 * 100,
			Volume:       500000,
			MarketCapADA: 2e6,
		})
		require.NoError(t, err)
		assert.Equal(t, 74.34, result.OLRS)
		assert.Equal(t, 100.0, result.Components.Health)
		assert.Equal(t, 0.0, result.Components.Liquidity)
		assert.InDelta(t, 92.47, result.Components.MarketCap, 0.01)
		assert.Equal(t, olrs.DefaultWeights(), result.Weights)
	})

	t.Run("non-finite input", func(t *testing.T) {
		_, err := svc.Score(context.Background(), olrs.Inputs{AvgHealth: 1, Volatility: math.Inf(1)})
		var ve *olrs.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "volatility", ve.Field)
	})
}
