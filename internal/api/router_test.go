package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/database"
	"github.com/atkinsj/dumpbin/internal/models"
	"github.com/atkinsj/dumpbin/internal/publicid"
	"github.com/atkinsj/dumpbin/internal/services"
)

func newTestRouter(t *testing.T) (http.Handler, *auth.Codec) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	codec := auth.NewCodec([]byte("router-test-secret"))
	eventService := services.NewEventService(db, nil)
	userService := services.NewUserService(db, auth.BcryptVerifier{}, eventService)
	dumpService := services.NewDumpService(db, publicid.New(), eventService)
	gate := auth.NewGate(codec, userService)

	router := NewRouter(RouterDeps{
		Gate:         gate,
		Codec:        codec,
		DumpService:  dumpService,
		UserService:  userService,
		EventService: eventService,
		CORSOrigin:   "http://localhost:4200",
		SessionDays:  3,
		RememberDays: 365,
	})
	return router, codec
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginMyProfile(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users/add", map[string]string{
		"username": "josh",
		"email":    "josh@example.com",
		"password": "hunter2hunter2",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/users/login", map[string]interface{}{
		"username": "josh",
		"password": "hunter2hunter2",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loginResp struct {
		JWT  string      `json:"jwt"`
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.JWT)
	assert.Equal(t, "josh", loginResp.User.Username)

	rec = doJSON(t, router, http.MethodGet, "/api/users/myprofile", nil, loginResp.JWT)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "josh", me.Username)
	assert.NotContains(t, rec.Body.String(), "password", "credential must never serialize")
}

func TestLogin_BadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users/login", map[string]string{
		"username": "nobody",
		"password": "whatever",
	}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMyProfile_ExpiredSessionIsDistinct(t *testing.T) {
	router, codec := newTestRouter(t)

	expired, err := codec.Issue("1", "josh", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/users/myprofile", nil, expired)
	assert.Equal(t, http.StatusTeapot, rec.Code, "expired sessions must not look like a plain denial")

	rec = doJSON(t, router, http.MethodGet, "/api/users/myprofile", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAnonymousDumpLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/dumps/add", models.Dump{
		Title:    "hello",
		Contents: "anonymous paste",
		Exposure: models.ExposurePublic,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		PublicID string `json:"publicId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.PublicID, publicid.Length)

	rec = doJSON(t, router, http.MethodGet, "/api/dumps/view/"+created.PublicID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var dump models.Dump
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dump))
	assert.Equal(t, "anonymous paste", dump.Contents)
	assert.Equal(t, int64(1), dump.Views)

	rec = doJSON(t, router, http.MethodGet, "/api/dumps/view/"+created.PublicID+"?download=true", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "anonymous paste", rec.Body.String())
}

func TestOwnedDump_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/dumps/add", models.Dump{
		Username: "josh",
		Contents: "needs a login",
	}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDumpView_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/dumps/view/ZZZZZZ", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
