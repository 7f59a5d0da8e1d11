package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/crewlinkhq/crewlink/pkg/errors"
)

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"id": "p-1"})
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Nil(t, payload.Error)
}

func TestErrorEnvelopeCarriesDetails(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, appErrors.NewState("job", "completed", "confirmed"))
	})

	require.Equal(t, http.StatusConflict, w.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.NotNil(t, payload.Error)
	require.Equal(t, appErrors.CodeState, payload.Error.Code)
	require.Equal(t, "completed", payload.Error.Details["current"])
}

func TestErrorEnvelopeDefaultsToInternal(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, nil)
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, appErrors.ErrInternalServer.Code, payload.Error.Code)
}
