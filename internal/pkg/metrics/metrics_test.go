package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()

	r.ConnectionOpened()
	r.ConnectionOpened()
	r.ConnectionClosed()
	r.Joined(3)
	r.Departed(2)
	r.Rejected("join", 2103)
	r.Rejected("join", 2103)
	r.Delivered(KindChat)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.connections))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.roomUsers))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.joins))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rejections.WithLabelValues("join", "2103")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.messages.WithLabelValues(KindChat)))
	assert.Zero(t, testutil.ToFloat64(r.messages.WithLabelValues(KindLocation)))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.ConnectionOpened()
		r.ConnectionClosed()
		r.Joined(1)
		r.Departed(0)
		r.Rejected("join", 2101)
		r.Delivered(KindNotice)
	})
	assert.Nil(t, r.Registry())

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.Joined(1)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "geochat_joins_total 1"), body)
	assert.Contains(t, body, "go_goroutines")
}

func TestRecordersDoNotShareRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRecorder()
		NewRecorder()
	})
}
