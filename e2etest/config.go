package e2etest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/status-im/token-aggregator/config"
)

// TestAPIKey is accepted by the mutating endpoints of the test server
const TestAPIKey = "e2e-secret"

// createTestConfig writes a configuration pointing every source at mockURL
// and returns the path to the file
func createTestConfig(mockURL, port string) (string, error) {
	tempDir, err := os.MkdirTemp("", "token-aggregator-test")
	if err != nil {
		return "", err
	}

	configContent := fmt.Sprintf(`
server:
  port: "%[2]s"

auth:
  api_keys:
    - %[3]s

logging:
  level: warn

cache:
  ttl: 200ms               # merged result lives 2x this
  redis:
    enabled: false         # in-process cache only
  go_cache:
    default_expiration: 1m
    cleanup_interval: 1m

aggregator:
  deadline: 3s
  source_timeout: 2s

broadcast:
  interval: 300ms          # fast cycle for tests
  price_change_threshold: 0.01
  volume_spike_ratio: 1.5
  snapshot_ttl: 1m

limits: &fast
  rate_limit_per_minute: 6000
  burst: 50
  concurrency: 4

sources:
  retry:
    max_attempts: 2
    base_delay: 10ms
    max_delay: 50ms

  dexscreener:
    enabled: true
    base_url: "%[1]s"
    ttl: 100ms             # adapter entries expire between broadcast ticks
    request_timeout: 1s
    trending_query: solana
    rate_limit: *fast

  geckoterminal:
    enabled: true
    base_url: "%[1]s"
    ttl: 100ms
    request_timeout: 1s
    network: solana
    rate_limit: *fast

  jupiter:
    enabled: true
    base_url: "%[1]s"
    ttl: 100ms
    request_timeout: 1s
    interval: 24h
    rate_limit: *fast
`, mockURL, port, TestAPIKey)

	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		os.RemoveAll(tempDir)
		return "", err
	}

	return configPath, nil
}

// loadTestConfig creates and loads the test configuration
func loadTestConfig(mockURL, port string) (*config.Config, string, error) {
	configPath, err := createTestConfig(mockURL, port)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create test config: %w", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		cleanupTestConfig(configPath)
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, configPath, nil
}

// cleanupTestConfig removes the temporary configuration directory
func cleanupTestConfig(configPath string) {
	if configPath != "" {
		os.RemoveAll(filepath.Dir(configPath))
	}
}
