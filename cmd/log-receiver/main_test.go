package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"log-receiver/internal/config"
	"log-receiver/internal/sink/console"
	"log-receiver/internal/sink/kafka"
	"log-receiver/internal/sink/opensearch"
)

func TestBuildSinks_Default(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	out, err := buildSinks(&cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.IsType(t, &console.ConsoleSink{}, out[0])
}

func TestBuildSinks_Forwarding(t *testing.T) {
	cfg := config.Default()
	cfg.Sinks.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Sinks.OpenSearch.Addresses = []string{"https://localhost:9200"}
	require.NoError(t, cfg.Validate())

	out, err := buildSinks(&cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer out.Close()

	require.Len(t, out, 3)
	assert.IsType(t, &kafka.Sink{}, out[1])
	assert.IsType(t, &opensearch.Sink{}, out[2])
}

func TestRun_BindFailureReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := config.Default()
	cfg.Server.ListenAddr = ln.Addr().String()
	require.NoError(t, cfg.Validate())

	err = run(context.Background(), &cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server failed")
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ListenAddr = "127.0.0.1:0"
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, &cfg, zaptest.NewLogger(t)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
