package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounters(t *testing.T) {
	m := New()

	m.RedemptionFinished("redeemed")
	m.RedemptionFinished("redeemed")
	m.RedemptionFinished("already_redeemed")
	m.CommitConflict()
	m.PointsAwarded(30)
	m.PointsAwarded(20)
	m.NotificationSent(true)
	m.NotificationSent(false)
	m.FeedReconnected()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.redemptions.WithLabelValues("redeemed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redemptions.WithLabelValues("already_redeemed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commitConflicts))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.pointsAwarded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.awards))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedReconnects))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RedemptionFinished("redeemed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cafeloyalty_rewards_redemptions_total{result="redeemed"} 1`)
}
