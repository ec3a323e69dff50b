package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/gopherauth/internal/testutil"
)

func Test_run(t *testing.T) {
	// Environment of the machine must not leak into the test
	noenv := func(string) string { return "" }
	getwd := func() (string, error) { return t.TempDir(), nil }

	port, err := testutil.RandomPort()
	require.NoError(t, err, "failed to get random port to start server")
	listenAddr := fmt.Sprintf("localhost:%d", port)

	args := func(extra ...string) []string {
		return append([]string{
			"--address", listenAddr,
			"--log-level", "debug",
			"--environment", "development",
			"--database", "sqlite://" + filepath.Join(t.TempDir(), "auth.db"),
		}, extra...)
	}

	t.Run("serve and stop on context done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		t.Cleanup(cancel)

		errCh := make(chan error, 1)
		go func() {
			errCh <- run(ctx, noenv, getwd, args("--access-secret", "access", "--refresh-secret", "refresh"))
		}()

		require.Eventually(t, func() bool {
			resp, err := http.Get("http://" + listenAddr + "/healthz")
			if err != nil {
				return false
			}
			_ = resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 5*time.Second, 50*time.Millisecond, "server should become healthy")

		cancel()

		select {
		case err := <-errCh:
			require.NoError(t, err, "on correct stop should not return error")
		case <-time.After(10 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("fail without secrets", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 500*time.Millisecond)
		t.Cleanup(cancel)

		err := run(ctx, noenv, getwd, args())

		require.Error(t, err, "secrets are required")
	})

	t.Run("fail with unknown log level", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 500*time.Millisecond)
		t.Cleanup(cancel)

		err := run(ctx, noenv, getwd, args("--access-secret", "a", "--refresh-secret", "r", "--log-level", "verbose"))

		require.Error(t, err)
	})

	t.Run("fail with unsupported database", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 500*time.Millisecond)
		t.Cleanup(cancel)

		err := run(ctx, noenv, getwd, args("--access-secret", "a", "--refresh-secret", "r", "--database", "mysql://localhost"))

		require.Error(t, err)
	})
}
