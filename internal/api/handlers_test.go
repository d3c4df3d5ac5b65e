package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lexicon/internal/api"
	"lexicon/internal/domain"
	"lexicon/internal/testutil"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() (*api.Server, *testutil.MockStatisticsReader, *testutil.MockPinger) {
	stats := new(testutil.MockStatisticsReader)
	db := new(testutil.MockPinger)
	return api.New(stats, db, 5, testutil.NewTestLogger()), stats, db
}

func do(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetLeaderboard(t *testing.T) {
	srv, stats, _ := newServer()
	board := &domain.Leaderboard{
		MostEntries:    []domain.UserStatistics{{UserID: 1, Username: "alice", TotalEntries: 12}},
		MostExamples:   []domain.UserStatistics{},
		WeeklyEntries:  []domain.UserStatistics{},
		WeeklyExamples: []domain.UserStatistics{},
		TopStreaks:     []domain.UserStatistics{{UserID: 1, Username: "alice", MaxStreak: 4}},
	}
	stats.On("GetLeaderboard", 5).Return(board, nil)

	rec := do(t, srv, "/api/v1/leaderboard")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	for _, key := range []string{"most_entries", "most_examples", "weekly_entries", "weekly_examples", "top_streaks"} {
		assert.Contains(t, body, key)
	}
	assert.EqualValues(t, 5, body["limit"])

	top := body["most_entries"].([]any)
	require.Len(t, top, 1)
	assert.Equal(t, "alice", top[0].(map[string]any)["username"])
	assert.EqualValues(t, 12, top[0].(map[string]any)["total_entries"])
	stats.AssertExpectations(t)
}

func TestGetLeaderboard_Limit(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		expectedCode int
		serviceLimit int
	}{
		{name: "custom limit", query: "?limit=10", expectedCode: http.StatusOK, serviceLimit: 10},
		{name: "not a number", query: "?limit=ten", expectedCode: http.StatusBadRequest},
		{name: "zero", query: "?limit=0", expectedCode: http.StatusBadRequest},
		{name: "negative", query: "?limit=-3", expectedCode: http.StatusBadRequest},
		{name: "too large", query: "?limit=1000", expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, stats, _ := newServer()
			if tt.serviceLimit > 0 {
				stats.On("GetLeaderboard", tt.serviceLimit).Return(&domain.Leaderboard{}, nil)
			}

			rec := do(t, srv, "/api/v1/leaderboard"+tt.query)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedCode == http.StatusBadRequest {
				resp := decodeError(t, rec)
				assert.Equal(t, http.StatusBadRequest, resp.Code)
				assert.Equal(t, "invalid limit", resp.Message)
				stats.AssertNotCalled(t, "GetLeaderboard", tt.serviceLimit)
			}
		})
	}
}

func TestGetLeaderboard_ServiceError(t *testing.T) {
	srv, stats, _ := newServer()
	stats.On("GetLeaderboard", 5).Return(nil, errors.New("db down"))

	rec := do(t, srv, "/api/v1/leaderboard")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Empty(t, resp.Details, "internal errors are not exposed")
}

func TestGetTopUsers(t *testing.T) {
	srv, stats, _ := newServer()
	users := []domain.UserStatistics{
		{UserID: 2, Username: "bob", MaxStreak: 9},
		{UserID: 1, Username: "alice", MaxStreak: 3},
	}
	stats.On("GetTopUsers", domain.MetricMaxStreak, 2).Return(users, nil)

	rec := do(t, srv, "/api/v1/leaderboard/max_streak?limit=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var body api.GetTopUsersResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.MetricMaxStreak, body.Metric)
	assert.Equal(t, 2, body.Limit)
	assert.Equal(t, users, body.Users)
}

func TestGetTopUsers_UnknownMetric(t *testing.T) {
	srv, stats, _ := newServer()

	rec := do(t, srv, "/api/v1/leaderboard/password")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "unknown metric", resp.Message)
	assert.Contains(t, resp.Details, "password")
	stats.AssertNotCalled(t, "GetTopUsers")
}

func TestGetUserStatistics(t *testing.T) {
	srv, stats, _ := newServer()
	stats.On("GetUserStatistics", int64(42)).Return(&domain.UserStatistics{
		UserID: 42, Username: "alice", TotalEntries: 3, CurrentStreak: 2, MaxStreak: 2,
	}, nil)

	rec := do(t, srv, "/api/v1/users/42/statistics")

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.UserStatistics
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.UserID)
	assert.Equal(t, 3, body.TotalEntries)
	assert.Nil(t, body.LastEntryDate)
}

func TestGetUserStatistics_InvalidID(t *testing.T) {
	srv, stats, _ := newServer()

	rec := do(t, srv, "/api/v1/users/abc/statistics")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stats.AssertNotCalled(t, "GetUserStatistics")
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv, _, db := newServer()
		db.On("PingContext").Return(nil)

		rec := do(t, srv, "/healthz")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		srv, _, db := newServer()
		db.On("PingContext").Return(errors.New("connection refused"))

		rec := do(t, srv, "/healthz")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestUnknownRoute(t *testing.T) {
	srv, _, _ := newServer()

	rec := do(t, srv, "/api/v1/nothing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
