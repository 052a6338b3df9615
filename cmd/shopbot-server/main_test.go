package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot-backend/internal/config"
	"shopbot-backend/internal/store"
)

type closeRecorder struct {
	store.Store
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.Store.Close()
}

func testConfig(port string) config.Config {
	return config.Config{
		Port:          port,
		AllowedOrigin: "*",
		CatalogSource: "embedded",
		SessionTTL:    time.Minute,
	}
}

func TestRunClosesStoreWhenListenFails(t *testing.T) {
	rec := &closeRecorder{Store: store.NewMemoryStore(time.Minute)}
	open := func(context.Context, config.Config) (store.Store, error) { return rec, nil }

	err := run(context.Background(), testConfig("-1"), zerolog.Nop(), open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
	assert.True(t, rec.closed)
}

func TestRunClosesStoreOnShutdown(t *testing.T) {
	rec := &closeRecorder{Store: store.NewMemoryStore(time.Minute)}
	open := func(context.Context, config.Config) (store.Store, error) { return rec, nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig("0"), zerolog.Nop(), open) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.True(t, rec.closed)
}

func TestRunReportsStoreErrors(t *testing.T) {
	open := func(context.Context, config.Config) (store.Store, error) {
		return nil, errors.New("redis down")
	}
	err := run(context.Background(), testConfig("0"), zerolog.Nop(), open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}
