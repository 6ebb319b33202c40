package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["serve"])
	require.True(t, names["migrate"])

	serveCmd, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	for _, f := range []string{"addr", "store", "mongo-url", "dsn", "cookie-key", "login-max-fails"} {
		require.NotNil(t, serveCmd.Flags().Lookup(f), f)
	}

	migrateCmd, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	require.NotNil(t, migrateCmd.Flags().Lookup("dsn"))
	require.Nil(t, migrateCmd.Flags().Lookup("addr"))
}

func TestServeCmd_RejectsBadConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve", "--store", "redis"})
	require.ErrorContains(t, root.Execute(), "unknown store")
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, lis, h, zaptest.NewLogger(t)) }()

	client := &http.Client{Timeout: 2 * time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + lis.Addr().String())
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusTeapot
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
