package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ArtifactsTotal.WithLabelValues("logs_and_errors", "crime_scene"))
	ArtifactsTotal.WithLabelValues("logs_and_errors", "crime_scene").Inc()
	after := testutil.ToFloat64(ArtifactsTotal.WithLabelValues("logs_and_errors", "crime_scene"))
	assert.Equal(t, before+1, after)
}

func TestHandlerExposesMetrics(t *testing.T) {
	ClassificationFailures.Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "sift_classification_failures_total")
}
