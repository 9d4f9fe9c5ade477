package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"n": 1}) })
	r.GET("/fail", func(c *gin.Context) { Fail(c, http.StatusConflict, ErrInvalidTransition) })
	return r
}

func TestRequestID_ReusesWellFormedHeader(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "trace-123.a_b")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123.a_b", rec.Header().Get("X-Request-ID"))
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "trace-123.a_b", body.Metadata.RequestID)
	assert.Nil(t, body.Error)
}

func TestRequestID_ReplacesMalformedHeader(t *testing.T) {
	r := newEngine()

	for _, bad := range []string{"has space", "semi;colon", strings.Repeat("x", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("X-Request-ID", bad)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		got := rec.Header().Get("X-Request-ID")
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 36)
	}
}

func TestFail_Envelope(t *testing.T) {
	r := newEngine()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrInvalidTransition, body.Error.Code)
	assert.Equal(t, GetMessage(ErrInvalidTransition), body.Error.Message)
	assert.NotEmpty(t, body.Metadata.Timestamp)
}
