package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/firdaus0729/shoplive/internal/domain"
	"github.com/firdaus0729/shoplive/internal/repository"
	"github.com/firdaus0729/shoplive/internal/room"
	"github.com/firdaus0729/shoplive/internal/service"
	"github.com/firdaus0729/shoplive/pkg/jwt"
	"github.com/firdaus0729/shoplive/pkg/middleware"
	"github.com/firdaus0729/shoplive/pkg/pubsub"
)

type httpFixture struct {
	engine *gin.Engine
	jwt    *jwt.Manager
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.StreamModel{}))

	manager := jwt.NewManager("test-secret", "shoplive")
	svc := service.NewStreamService(
		repository.NewGormStreamRepository(db),
		room.NewMemoryStore(),
		pubsub.NewMemoryPubSub(),
		nil, nil, time.Minute,
	)

	engine := gin.New()
	NewHTTPHandler(svc, middleware.NewAuthMiddleware(manager)).RegisterRoutes(engine)
	return &httpFixture{engine: engine, jwt: manager}
}

func (f *httpFixture) tokenFor(t *testing.T, userID, username string) string {
	t.Helper()
	token, err := f.jwt.Sign(userID, username, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *httpFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeStream(t *testing.T, w *httptest.ResponseRecorder) domain.StreamResponse {
	t.Helper()
	var envelope struct {
		Success bool                  `json:"success"`
		Data    domain.StreamResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestCreateStreamRequiresAuth(t *testing.T) {
	f := newHTTPFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/streams", "", &domain.CreateStreamRequest{
		Title: "Friday drop", StoreID: "store-1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateStreamValidatesBody(t *testing.T) {
	f := newHTTPFixture(t)
	token := f.tokenFor(t, "seller-1", "Sam")

	w := f.do(t, http.MethodPost, "/api/v1/streams", token, map[string]string{"title": "no store"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamLifecycleOverHTTP(t *testing.T) {
	f := newHTTPFixture(t)
	token := f.tokenFor(t, "seller-1", "Sam")

	w := f.do(t, http.MethodPost, "/api/v1/streams", token, &domain.CreateStreamRequest{
		Title: "Friday drop", StoreID: "store-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeStream(t, w)
	assert.Equal(t, domain.StreamStatusScheduled, created.Status)

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%s/start", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StreamStatusLive, decodeStream(t, w).Status)

	// Starting again conflicts.
	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%s/start", created.ID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%s/stop", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StreamStatusEnded, decodeStream(t, w).Status)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/streams/%s", created.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StreamStatusEnded, decodeStream(t, w).Status)
}

func TestStartStreamRejectsNonBroadcaster(t *testing.T) {
	f := newHTTPFixture(t)
	owner := f.tokenFor(t, "seller-1", "Sam")
	other := f.tokenFor(t, "seller-2", "Alex")

	w := f.do(t, http.MethodPost, "/api/v1/streams", owner, &domain.CreateStreamRequest{
		Title: "Friday drop", StoreID: "store-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeStream(t, w)

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%s/start", created.ID), other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStopBeforeStartConflicts(t *testing.T) {
	f := newHTTPFixture(t)
	token := f.tokenFor(t, "seller-1", "Sam")

	w := f.do(t, http.MethodPost, "/api/v1/streams", token, &domain.CreateStreamRequest{
		Title: "Friday drop", StoreID: "store-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeStream(t, w)

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/streams/%s/stop", created.ID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetStreamNotFound(t *testing.T) {
	f := newHTTPFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/streams/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListStreams(t *testing.T) {
	f := newHTTPFixture(t)
	token := f.tokenFor(t, "seller-1", "Sam")

	for i := 0; i < 3; i++ {
		w := f.do(t, http.MethodPost, "/api/v1/streams", token, &domain.CreateStreamRequest{
			Title: "Friday drop", StoreID: "store-1",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/v1/streams?page=1&page_size=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool                       `json:"success"`
		Data    domain.ListStreamsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Total)
	assert.Len(t, envelope.Data.Streams, 2)
	assert.Equal(t, 2, envelope.Data.TotalPages)
}
