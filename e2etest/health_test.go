package e2etest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/status-im/token-aggregator/api"
)

func healthOf(t *testing.T, env *TestEnv) api.HealthResponse {
	t.Helper()

	var health api.HealthResponse
	resp := getJSON(t, env.ServerBaseURL+"/health", &health)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return health
}

// TestHealthEndpoint tests the functionality of the /health endpoint
func TestHealthEndpoint(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	health := healthOf(t, env)
	assert.Equal(t, "ok", health.Status, "Health status should be 'ok'")
	assert.Equal(t, "fallback", health.Cache, "redis is disabled in tests")

	// Every configured source is listed even before the first fan-out
	assert.Contains(t, health.Services, UpstreamDexScreener)
	assert.Contains(t, health.Services, UpstreamGeckoTerminal)
	assert.Contains(t, health.Services, UpstreamJupiter)

	waitForTokens(t, env, 3)

	health = healthOf(t, env)
	for name, status := range health.Services {
		assert.Equal(t, "up", status, "source %s", name)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := SetupTest(t)
	defer env.TearDown()

	waitForTokens(t, env, 3)

	resp, err := http.Get(env.ServerBaseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}
