package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(serverURL, "http")+"/ws", nil)
	require.NoError(t, err)
	// registration happens on the hub goroutine after the handshake
	time.Sleep(100 * time.Millisecond)
	return conn
}

func readHubMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PublishReachesClients(t *testing.T) {
	f := newRidgeFixture(t)
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	srv := httptest.NewServer(NewServer(f.planner(t), hub))
	defer srv.Close()

	first := dialHub(t, srv.URL)
	defer first.Close()
	second := dialHub(t, srv.URL)
	defer second.Close()

	hub.Publish("notice", map[string]string{"text": "hello"})
	for _, conn := range []*websocket.Conn{first, second} {
		msg := readHubMessage(t, conn)
		assert.Equal(t, "notice", msg["event"])
		assert.Equal(t, map[string]interface{}{"text": "hello"}, msg["data"])
	}
}

func TestHub_RouteRequestsArePublished(t *testing.T) {
	f := newRidgeFixture(t)
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	srv := httptest.NewServer(NewServer(f.planner(t), hub))
	defer srv.Close()

	conn := dialHub(t, srv.URL)
	defer conn.Close()

	resp, err := http.Post(srv.URL+"/route", "application/json",
		strings.NewReader(routeBody(t, PlanRequest{Destination: f.target, Strategy: StrategyFastest})))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg := readHubMessage(t, conn)
	assert.Equal(t, "plan_ready", msg["event"])
	data, ok := msg["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "FeatureCollection", data["type"])
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	f := newRidgeFixture(t)
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(NewServer(f.planner(t), hub))
	defer srv.Close()

	conn := dialHub(t, srv.URL)
	defer conn.Close()

	hub.Stop()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish("tick", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}
