package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/2beens/gymsessions/internal/telemetry/metrics"
)

func TestPanicRecovery(t *testing.T) {
	testCases := []struct {
		name           string
		panics         bool
		expectedPanics float64
		expectedStatus int
	}{
		{name: "no panic", panics: false, expectedPanics: 0, expectedStatus: http.StatusOK},
		{name: "panic", panics: true, expectedPanics: 1, expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			metricsManager := metrics.NewTestManager()

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if tc.panics {
					panic("store exploded")
				}
			})

			rr := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/sessions/A/exercises", nil)
			PanicRecovery(metricsManager)(next).ServeHTTP(rr, req)

			assert.True(t, called)
			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedPanics, testutil.ToFloat64(metricsManager.CounterHandleRequestPanic))
		})
	}
}

func TestPanicRecovery_NilMetrics(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("no metrics")
	})

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		PanicRecovery(nil)(next).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
