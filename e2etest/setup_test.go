package e2etest

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/status-im/token-aggregator/core"
)

// testPort is the port the aggregator listens on during tests
const testPort = "18081"

// TestEnv represents a test environment
type TestEnv struct {
	Registry      *core.Registry
	MockServer    *MockServer
	Context       context.Context
	CancelFunc    context.CancelFunc
	ConfigPath    string
	ServerBaseURL string
	WSURL         string
}

// SetupTest starts the whole service against the fake upstreams. Options
// prepare the fake before any service talks to it.
func SetupTest(t *testing.T, options ...func(*MockServer)) *TestEnv {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())

	mockServer := NewMockServer()
	for _, option := range options {
		option(mockServer)
	}

	cfg, configPath, err := loadTestConfig(mockServer.GetURL(), testPort)
	if err != nil {
		mockServer.Close()
		cancel()
		t.Fatalf("Failed to load test config: %v", err)
	}

	registry, err := core.Setup(ctx, cfg)
	if err != nil {
		cleanupTestConfig(configPath)
		mockServer.Close()
		cancel()
		t.Fatalf("Failed to setup services: %v", err)
	}

	if err := registry.StartAll(ctx); err != nil {
		cleanupTestConfig(configPath)
		mockServer.Close()
		cancel()
		t.Fatalf("Failed to start services: %v", err)
	}

	env := &TestEnv{
		Registry:      registry,
		MockServer:    mockServer,
		Context:       ctx,
		CancelFunc:    cancel,
		ConfigPath:    configPath,
		ServerBaseURL: fmt.Sprintf("http://localhost:%s", testPort),
		WSURL:         fmt.Sprintf("ws://localhost:%s/ws", testPort),
	}

	// Wait until the listener accepts connections
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(env.ServerBaseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			env.TearDown()
			if err != nil {
				t.Fatalf("Server not responding: %v", err)
			}
			t.Fatalf("Server returned unexpected status: %d", resp.StatusCode)
		}
		time.Sleep(50 * time.Millisecond)
	}

	return env
}

// TearDown releases test environment resources
func (env *TestEnv) TearDown() {
	if env.Registry != nil {
		env.Registry.StopAll()
	}
	if env.MockServer != nil {
		env.MockServer.Close()
	}
	if env.CancelFunc != nil {
		env.CancelFunc()
	}
	if env.ConfigPath != "" {
		cleanupTestConfig(env.ConfigPath)
	}
}
