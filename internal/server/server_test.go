package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/InQaaaaGit/userpet_api.git/internal/config"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestHTTPServer_GracefulShutdown(t *testing.T) {
	addr := freeAddr(t)
	cfg := config.Default()
	cfg.ServerAddress = addr

	srv := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		ReadHeaderTimeout: time.Second,
	}
	s := NewHTTPServer(srv, cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + addr)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not stop after context cancellation")
	}
}

func TestHTTPServer_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	cfg := config.Default()
	srv := &http.Server{Addr: l.Addr().String(), ReadHeaderTimeout: time.Second}
	s := NewHTTPServer(srv, cfg, zap.NewNop())

	err = s.Start(context.Background())
	assert.Error(t, err, "занятый адрес должен приводить к ошибке")
}

func TestHTTPServer_HTTPSMissingCertificate(t *testing.T) {
	cfg := config.Default()
	cfg.EnableHTTPS = "true"
	cfg.TLSCertFile = "/nonexistent/server.crt"
	cfg.TLSKeyFile = "/nonexistent/server.key"

	srv := &http.Server{Addr: freeAddr(t), ReadHeaderTimeout: time.Second}
	s := NewHTTPServer(srv, cfg, zap.NewNop())

	assert.Error(t, s.Start(context.Background()))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		expectError bool
		enabled     zapcore.Level
		disabled    zapcore.Level
	}{
		{name: "Debug", level: "debug", enabled: zapcore.DebugLevel},
		{name: "Info", level: "info", enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel},
		{name: "Warn with spaces", level: " warn ", enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel},
		{name: "Error", level: "ERROR", enabled: zapcore.ErrorLevel, disabled: zapcore.WarnLevel},
		{name: "Invalid", level: "verbose", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			if tt.enabled != zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.disabled))
			}
		})
	}
}

func TestInitLogger(t *testing.T) {
	logger, cleanup := InitLogger("info")
	require.NotNil(t, logger)
	assert.NotPanics(t, cleanup)
}
