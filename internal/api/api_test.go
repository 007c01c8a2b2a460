package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carriee-liuu/anomia-go/internal/api"
	"github.com/carriee-liuu/anomia-go/internal/api/response"
	"github.com/carriee-liuu/anomia-go/internal/factory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		RoomController: app.RoomController,
		GameHandler:    app.GameHandler,
	})

	return &testServer{handler: router}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCreateRoom(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/rooms", map[string]string{"hostName": "Alice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Len(t, resp.Room.Code, 6)
	assert.Equal(t, "waiting", resp.Room.Status)
	require.Len(t, resp.Room.Players, 1)
	assert.Equal(t, "Alice", resp.Room.Players[0].Name)
	assert.True(t, resp.Room.Players[0].IsHost)
	assert.Equal(t, resp.Player.ID, resp.Room.Players[0].ID)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateRoomRequiresHostName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/rooms", map[string]string{"hostName": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rr))
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/rooms", map[string]string{"hostName": "Alice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = ts.request(http.MethodGet, "/api/rooms/"+created.Room.Code, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got response.GetRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, created.Room.Code, got.Room.Code)
	assert.Len(t, got.Room.Players, 1)
}

func TestGetRoomIsCaseInsensitive(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/rooms", map[string]string{"hostName": "Alice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = ts.request(http.MethodGet, "/api/rooms/"+strings.ToLower(created.Room.Code), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/rooms/ZZZZ99", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "ROOM_NOT_FOUND", decodeError(t, rr))
}

func TestRoomResponseHidesSecrets(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/rooms", map[string]string{"hostName": "Alice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.CreateRoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = ts.request(http.MethodGet, "/api/rooms/"+created.Room.Code, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Session tokens stay server-side; snapshots only carry pile sizes
	assert.NotContains(t, rr.Body.String(), created.SessionToken)
	assert.NotContains(t, rr.Body.String(), "sessionToken")
}
