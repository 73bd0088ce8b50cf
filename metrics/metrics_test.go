package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_HandlerExposesRecordedValues(t *testing.T) {
	r := New()
	r.CommandsFlushed(3)
	r.BytesFlushed(128)
	r.SidechannelBytes(4096)
	r.TileAccumulated()
	r.SetFrameProgress(0.5)
	r.SetBalancerQueueDepth(7)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "offlayer_commands_flushed_total 3")
	require.Contains(t, body, "offlayer_bytes_flushed_total 128")
	require.Contains(t, body, "offlayer_frame_progress_ratio 0.5")
	require.Contains(t, body, "offlayer_balancer_queue_depth 7")
}

func TestRegistry_TwoInstancesDoNotCollide(t *testing.T) {
	a := New()
	b := New()
	a.CommandsFlushed(1)
	b.CommandsFlushed(2)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	require.Contains(t, rec.Body.String(), "offlayer_commands_flushed_total 1")
}
