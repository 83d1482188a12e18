package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", "", "/api/v1/olrs").
		WithExtension("trace_id", "t-1").
		WithExtension("status", 999)

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "t-1", got["trace_id"])
	assert.Equal(t, float64(http.StatusBadRequest), got["status"])
	assert.NotContains(t, got, "detail")
}

func TestProblemDetails_WithExtensionOnZeroValue(t *testing.T) {
	pd := &ProblemDetails{Status: http.StatusNotFound}
	pd.WithExtension("k", "v")
	assert.Equal(t, "v", pd.Extensions["k"])
}

func TestProblemDetails_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, NewProblemDetails(http.StatusTeapot, TypeInternal, "Teapot", "short and stout", "").Write(rec))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, ProblemContentType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"type":"/errors/internal","title":"Teapot","status":418,"detail":"short and stout"}`, rec.Body.String())
}
