package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/notify"
)

// ---- GET /trips/{tripId}/events --------------------------------------------

// readUntil returns the first line starting with prefix.
func readUntil(t *testing.T, r *bufio.Reader, prefix string) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
}

func TestStreamEvents_DeliversDayEvents(t *testing.T) {
	bus := notify.NewLocal()
	srv := httptest.NewServer(newHTTPHandlerWithEvents(&mockPlanner{}, bus))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/trips/"+tripID.String()+"/events?day=2", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	readUntil(t, r, ": connected")

	require.NoError(t, bus.Publish(ctx, notify.Event{TripID: tripID, DayNumber: 1, Reason: notify.ReasonDrop}))
	require.NoError(t, bus.Publish(ctx, notify.Event{TripID: tripID, DayNumber: 2, Reason: notify.ReasonMarker}))

	data := readUntil(t, r, "data: ")
	var e notify.Event
	require.NoError(t, json.Unmarshal([]byte(data), &e))
	assert.Equal(t, 2, e.DayNumber, "day 1 is filtered out")
	assert.Equal(t, notify.ReasonMarker, e.Reason)
}

func TestStreamEvents_503_WithoutBus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/trips/"+tripID.String()+"/events", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(&mockPlanner{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamEvents_400_BadDay(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/trips/"+tripID.String()+"/events?day=two", nil)
	rec := httptest.NewRecorder()
	newHTTPHandlerWithEvents(&mockPlanner{}, notify.NewLocal()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
