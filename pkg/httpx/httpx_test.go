package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/jobportal/pkg/errorx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail"`
}

func serve(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { Error(c, err) }, func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestErrorMapsCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errorx.Validation("bad", nil), http.StatusBadRequest},
		{errorx.Unauthorized("who"), http.StatusUnauthorized},
		{errorx.Forbidden("no"), http.StatusForbidden},
		{errorx.NotFound("gone"), http.StatusNotFound},
		{errorx.Conflict("dup"), http.StatusConflict},
		{errorx.New(errorx.CodeRateLimited, "slow down"), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		code, body := serve(t, tt.err)
		assert.Equal(t, tt.want, code)
		assert.Equal(t, tt.want, body.Code)
	}
}

func TestErrorWritesFieldDetail(t *testing.T) {
	code, body := serve(t, errorx.Validation("invalid interview", map[string]string{
		"start_time":     "expected HH:MM",
		"scheduled_date": "expected YYYY-MM-DD",
	}))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid interview", body.Msg)
	assert.Equal(t, "scheduled_date: expected YYYY-MM-DD; start_time: expected HH:MM", body.Detail)
}

func TestErrorHidesInternalCause(t *testing.T) {
	code, body := serve(t, errorx.Internal("failed to load user", errors.New("dial tcp 10.0.0.1:3306")))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body.Msg)
	assert.NotContains(t, body.Detail, "10.0.0.1")

	code, body = serve(t, errors.New("plain failure"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, body.Msg, "plain failure")
}
