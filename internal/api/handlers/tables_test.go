package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/turntable/internal/game"
	"github.com/playmatatu/turntable/internal/models"
	"github.com/playmatatu/turntable/internal/pool"
)

type mockTables struct {
	lastPIN string
	joinErr error
	results []models.GameResult
}

func (m *mockTables) CreateTable(pin string) (*game.SeatGrant, error) {
	m.lastPIN = pin
	return &game.SeatGrant{TableID: "TABC234", Seat: 1, Token: "tok1"}, nil
}

func (m *mockTables) JoinTable(id, pin string) (*game.SeatGrant, error) {
	m.lastPIN = pin
	if m.joinErr != nil {
		return nil, m.joinErr
	}
	return &game.SeatGrant{TableID: id, Seat: 2, Token: "tok2"}, nil
}

func (m *mockTables) Snapshot(ctx context.Context, id string) (pool.Snapshot, error) {
	if id != "TABC234" {
		return pool.Snapshot{}, game.ErrTableNotFound
	}
	return pool.Snapshot{CurrentPlayer: 1, Phase: pool.PhaseIdle, Status: "Player 1's Turn - Aim and shoot!"}, nil
}

func (m *mockTables) RecentResults(ctx context.Context, id string, limit int) ([]models.GameResult, error) {
	return m.results, nil
}

func (m *mockTables) TableCount() int { return 3 }

func newRouter(svc TableService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", HealthCheck(svc))
	r.POST("/tables", CreateTable(svc))
	r.POST("/tables/:id/join", JoinTable(svc))
	r.GET("/tables/:id", GetTableState(svc))
	r.GET("/tables/:id/results", GetTableResults(svc))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := do(newRouter(&mockTables{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["tables"])
}

func TestCreateTable(t *testing.T) {
	svc := &mockTables{}
	r := newRouter(svc)

	w := do(r, http.MethodPost, "/tables", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var grant game.SeatGrant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grant))
	assert.Equal(t, "TABC234", grant.TableID)
	assert.Equal(t, 1, grant.Seat)
	assert.Equal(t, "tok1", grant.Token)
	assert.Empty(t, svc.lastPIN)

	w = do(r, http.MethodPost, "/tables", `{"pin":" 1234 "}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1234", svc.lastPIN)
}

func TestCreateTableRejectsBadPIN(t *testing.T) {
	r := newRouter(&mockTables{})
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tables", `{"pin":"12a4"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tables", `{"pin":"123"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tables", `not json`).Code)
}

func TestJoinTableErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{game.ErrTableNotFound, http.StatusNotFound},
		{game.ErrTableFull, http.StatusConflict},
		{game.ErrWrongPIN, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := newRouter(&mockTables{joinErr: tc.err})
		w := do(r, http.MethodPost, "/tables/TABC234/join", `{"pin":"4321"}`)
		assert.Equal(t, tc.code, w.Code, "err=%v", tc.err)
	}
}

func TestGetTableState(t *testing.T) {
	r := newRouter(&mockTables{})

	w := do(r, http.MethodGet, "/tables/TABC234", "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap pool.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.CurrentPlayer)
	assert.Equal(t, pool.PhaseIdle, snap.Phase)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/tables/TNOPE", "").Code)
}

func TestGetTableResults(t *testing.T) {
	svc := &mockTables{}
	r := newRouter(svc)

	w := do(r, http.MethodGet, "/tables/TABC234/results", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())

	svc.results = []models.GameResult{{TableID: "TABC234", Winner: 2, Shots: 14}}
	w = do(r, http.MethodGet, "/tables/TABC234/results?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"winner":2`)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/tables/TABC234/results?limit=0", "").Code)
}
