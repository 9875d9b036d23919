package e2etest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/status-im/token-aggregator/api"
)

// getJSON performs a GET request and decodes the body into out
func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err, "GET %s", url)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if out != nil && len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, out), "decode %s: %s", url, body)
	}
	return resp
}

// postJSON performs a POST request with an optional API key
func postJSON(t *testing.T, url, apiKey string, payload any, out any) *http.Response {
	t.Helper()

	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "POST %s", url)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if out != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, out), "decode %s: %s", url, data)
	}
	return resp
}

// waitForTokens polls /api/tokens until at least want tokens are served
func waitForTokens(t *testing.T, env *TestEnv, want int) api.TokensResponse {
	t.Helper()

	var last api.TokensResponse
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		last = api.TokensResponse{}
		resp := getJSON(t, env.ServerBaseURL+"/api/tokens?limit=100", &last)
		if resp.StatusCode == http.StatusOK && len(last.Data) >= want {
			return last
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("token list never reached %d entries, last had %d", want, len(last.Data))
	return last
}
