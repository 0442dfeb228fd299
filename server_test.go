package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func routeBody(t *testing.T, req PlanRequest) string {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return string(data)
}

func TestServer_Route(t *testing.T) {
	f := newRidgeFixture(t)
	srv := NewServer(f.planner(t), nil)

	rec := doRequest(t, srv, http.MethodPost, "/route", routeBody(t, PlanRequest{Destination: f.target, Strategy: StrategyFastest}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, "B", resp.Plan.Site.Name)
	assert.Equal(t, f.goal, resp.Plan.Route[len(resp.Plan.Route)-1])
	assert.Greater(t, resp.Plan.Summary.TotalEnergy, 0.0)
	require.NotNil(t, resp.GeoJSON)
	assert.Len(t, resp.GeoJSON.Features, 3)
}

func TestServer_RouteErrors(t *testing.T) {
	f := newRidgeFixture(t)
	srv := NewServer(f.planner(t), nil)

	rec := doRequest(t, srv, http.MethodPost, "/route", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/route", routeBody(t, PlanRequest{Destination: Coordinate{Lat: 50, Lon: 13.1}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "outside elevation grid")

	rec = doRequest(t, srv, http.MethodGet, "/route", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Preflight(t *testing.T) {
	f := newRidgeFixture(t)
	rec := doRequest(t, NewServer(f.planner(t), nil), http.MethodOptions, "/route", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "POST, GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, rec.Body.String())
}

func TestServer_Health(t *testing.T) {
	f := newRidgeFixture(t)
	rec := doRequest(t, NewServer(f.planner(t), nil), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, 20.0, body["rows"])
	assert.Equal(t, 2.0, body["launchSites"])
}

func TestServer_LaunchSites(t *testing.T) {
	f := newRidgeFixture(t)
	rec := doRequest(t, NewServer(f.planner(t), nil), http.MethodGet, "/launchSites", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "A", fc.Features[0].Properties["name"])
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", ErrInvalidInput), http.StatusBadRequest},
		{ErrOutOfBounds, http.StatusBadRequest},
		{ErrUnreachable, http.StatusOK},
		{ErrNoLaunchSites, http.StatusOK},
		{ErrSearchLimit, http.StatusGatewayTimeout},
		{fmt.Errorf("search from A: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusForError(tc.err), tc.err.Error())
	}
}
