package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/jobportal/internal/notification/application"
	"github.com/wyfcoding/jobportal/internal/notification/domain"
	"github.com/wyfcoding/jobportal/internal/notification/infrastructure/persistence/mysql"
	"github.com/wyfcoding/jobportal/pkg/contextx"
	"github.com/wyfcoding/jobportal/pkg/db/dbtest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func asUser(c *gin.Context) {
	if v := c.GetHeader("X-User"); v != "" {
		id, _ := strconv.Atoi(v)
		c.Request = c.Request.WithContext(contextx.WithIdentity(c.Request.Context(), contextx.Identity{UserID: uint(id), Role: "applicant"}))
	}
	c.Next()
}

func setup(t *testing.T) (*gin.Engine, domain.NotificationRepository, *application.NotificationService) {
	t.Helper()
	d := dbtest.Open(t, &mysql.NotificationModel{})
	repo := mysql.NewNotificationRepository(d.DB)
	svc := application.NewNotificationService(repo, nil, nil)

	r := gin.New()
	authed := r.Group("/api/v1", asUser)
	NewHandler(svc).RegisterRoutes(authed)
	return r, repo, svc
}

func call(r http.Handler, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNotificationEndpoints(t *testing.T) {
	r, repo, svc := setup(t)
	ctx := context.Background()
	require.NoError(t, svc.Notify(ctx, application.NotifyCommand{UserID: 4, Subject: "Application received"}))
	require.NoError(t, svc.Notify(ctx, application.NotifyCommand{UserID: 5, Subject: "other"}))

	rec := call(r, http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(r, http.MethodGet, "/api/v1/notifications", "4")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data struct {
			List []domain.Notification `json:"list"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data.List, 1)
	assert.Equal(t, "Application received", list.Data.List[0].Subject)
	id := list.Data.List[0].NotificationID

	rec = call(r, http.MethodPost, "/api/v1/notifications/"+id+"/read", "5")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(r, http.MethodPost, "/api/v1/notifications/"+id+"/read", "4")
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := repo.GetByNotificationID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	rec = call(r, http.MethodGet, "/api/v1/notifications/unread-count", "4")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":0,"msg":"success","data":{"unread":0}}`, rec.Body.String())
}
